package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/af-corp/llm-cost-calculator/internal/catalog"
	"github.com/af-corp/llm-cost-calculator/internal/models"
	"github.com/af-corp/llm-cost-calculator/internal/telemetry"
	"github.com/fsnotify/fsnotify"
)

const (
	SourceFile     = "file"
	SourceFallback = "fallback"
)

// Catalog holds the catalog served to clients. A file that fails to parse
// never replaces a good one; with no good file the curated fallback is
// served.
type Catalog struct {
	path    string
	metrics *telemetry.Metrics
	logger  *slog.Logger

	mu       sync.RWMutex
	data     []byte
	records  []catalog.PriceRecord
	fromFile bool
}

func NewCatalog(path string, metrics *telemetry.Metrics, logger *slog.Logger) *Catalog {
	c := &Catalog{path: path, metrics: metrics, logger: logger}
	if err := c.Reload(); err != nil {
		logger.Warn("catalog file unavailable, serving fallback", "path", path, "error", err)
	}
	return c
}

// Reload re-reads the catalog file.
func (c *Catalog) Reload() error {
	err := c.reload()
	if c.metrics != nil {
		c.metrics.RecordCatalogReload(err)
	}
	return err
}

func (c *Catalog) reload() error {
	data, err := os.ReadFile(c.path)
	if err == nil {
		var records []catalog.PriceRecord
		if records, err = catalog.Decode(data); err == nil {
			c.mu.Lock()
			c.data, c.records, c.fromFile = data, records, true
			c.mu.Unlock()
			return nil
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.data == nil {
		fallback := models.FallbackCatalog()
		encoded, encErr := catalog.Encode(fallback)
		if encErr != nil {
			return fmt.Errorf("encode fallback catalog: %w", encErr)
		}
		c.data, c.records, c.fromFile = encoded, fallback, false
	}
	return fmt.Errorf("load catalog %s: %w", c.path, err)
}

// Snapshot returns the current bytes, decoded records and source label.
// Callers must not modify the returned slices.
func (c *Catalog) Snapshot() ([]byte, []catalog.PriceRecord, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	source := SourceFallback
	if c.fromFile {
		source = SourceFile
	}
	return c.data, c.records, source
}

// Watch reloads the catalog whenever the file is written or renamed into
// place. It returns once the watcher is running; ctx stops it.
func (c *Catalog) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	dir := filepath.Dir(c.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watch catalog dir %s: %w", dir, err)
	}
	target := filepath.Clean(c.path)

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					c.logger.Info("catalog file changed, reloading", "file", event.Name)
					if err := c.Reload(); err != nil {
						c.logger.Error("failed to reload catalog", "error", err)
					}
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				c.logger.Error("fsnotify error", "error", err)
			}
		}
	}()
	return nil
}
