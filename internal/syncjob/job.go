// Package syncjob runs one fetch, normalize and publish cycle of the vendor
// pricing feed.
package syncjob

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/af-corp/llm-cost-calculator/internal/catalog"
	"github.com/af-corp/llm-cost-calculator/internal/config"
	"github.com/af-corp/llm-cost-calculator/internal/telemetry"
)

var ErrEmptyCatalog = errors.New("normalization produced no records")

type Job struct {
	Sync       config.SyncConfig
	Parsing    config.ParsingConfig
	Publisher  catalog.Publisher
	HTTPClient *http.Client
	Metrics    *telemetry.Metrics
	Logger     *slog.Logger
}

type Result struct {
	Stats       catalog.Stats
	Destination string
	Bytes       int
	Duration    time.Duration
}

// Run fetches the feed, normalizes it and publishes the result. An empty
// result is not published so a broken feed cannot wipe the catalog.
func (j *Job) Run(ctx context.Context) (Result, error) {
	start := time.Now()
	var res Result
	defer func() {
		if j.Metrics != nil && res.Stats.Scanned > 0 {
			j.Metrics.RecordSync(res.Stats, time.Since(start))
		}
	}()

	normalizer, err := catalog.NewNormalizer(j.Sync.ServiceCode, j.Parsing)
	if err != nil {
		return res, fmt.Errorf("build normalizer: %w", err)
	}

	fetchCtx := ctx
	if j.Sync.FetchTimeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, j.Sync.FetchTimeout)
		defer cancel()
	}
	j.Logger.Info("fetching pricing feed", "url", j.Sync.FeedURL)
	raw, err := catalog.FetchFeed(fetchCtx, j.HTTPClient, j.Sync.FeedURL)
	if err != nil {
		return res, err
	}

	records, stats, err := normalizer.Normalize(raw)
	res.Stats = stats
	if err != nil {
		return res, fmt.Errorf("normalize feed: %w", err)
	}
	j.Logger.Info("normalized pricing feed",
		"scanned", stats.Scanned,
		"emitted", stats.Emitted,
		"dropped_partial", stats.DroppedPartial,
	)
	for reason, n := range stats.Rejected {
		j.Logger.Debug("rejected line items", "reason", reason, "count", n)
	}
	if len(records) == 0 {
		return res, ErrEmptyCatalog
	}

	data, err := catalog.Encode(records)
	if err != nil {
		return res, err
	}
	if err := j.Publisher.Publish(ctx, data); err != nil {
		return res, err
	}

	res.Destination = j.Publisher.Destination()
	res.Bytes = len(data)
	res.Duration = time.Since(start)
	if j.Metrics != nil {
		j.Metrics.RecordSyncSuccess(time.Now())
	}
	j.Logger.Info("catalog published", "entries", len(records), "destination", res.Destination, "bytes", res.Bytes)
	return res, nil
}

// NewPublisher picks S3 when a bucket is configured, else the local file.
func NewPublisher(ctx context.Context, cfg config.SyncConfig) (catalog.Publisher, error) {
	if cfg.OutputBucket != "" {
		return catalog.NewS3Publisher(ctx, cfg.AWSRegion, cfg.OutputBucket, cfg.OutputKey)
	}
	return catalog.FilePublisher{Path: cfg.OutputPath}, nil
}
