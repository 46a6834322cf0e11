package catalog

import (
	"context"
	"fmt"
	"net/http"
	"os"
)

// Source yields the normalized catalog. Implementations never fall back;
// callers decide what an error means.
type Source interface {
	Load(ctx context.Context) ([]PriceRecord, error)
}

// FileSource reads a published catalog from disk.
type FileSource struct {
	Path string
}

func (s FileSource) Load(_ context.Context) ([]PriceRecord, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", s.Path, err)
	}
	return Decode(data)
}

// HTTPSource fetches a published catalog, typically from the pricing server.
type HTTPSource struct {
	URL    string
	Client *http.Client
}

func (s HTTPSource) Load(ctx context.Context) ([]PriceRecord, error) {
	data, err := FetchFeed(ctx, s.Client, s.URL)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// StaticSource serves a fixed record set. Useful for tests and for wiring
// an in-memory fallback through the same interface.
type StaticSource []PriceRecord

func (s StaticSource) Load(_ context.Context) ([]PriceRecord, error) {
	out := make([]PriceRecord, len(s))
	copy(out, s)
	return out, nil
}
