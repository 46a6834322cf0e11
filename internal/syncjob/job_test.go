package syncjob

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/af-corp/llm-cost-calculator/internal/catalog"
	"github.com/af-corp/llm-cost-calculator/internal/config"
	"github.com/af-corp/llm-cost-calculator/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feed = `{
  "products": {
    "S1": {"sku": "S1", "attributes": {"servicecode": "AmazonBedrock", "usagetype": "USE1-Claude3Haiku-input-tokens", "regionCode": "us-east-1", "providerName": "Anthropic"}},
    "S2": {"sku": "S2", "attributes": {"servicecode": "AmazonBedrock", "usagetype": "USE1-Claude3Haiku-output-tokens", "regionCode": "us-east-1", "providerName": "Anthropic"}},
    "S3": {"sku": "S3", "attributes": {"servicecode": "AmazonBedrock", "usagetype": "USE1-TitanEmbedding-input-tokens", "regionCode": "us-east-1"}}
  },
  "terms": {"OnDemand": {
    "S1": {"S1.T": {"priceDimensions": {"S1.T.D": {"pricePerUnit": {"USD": "0.00025"}}}}},
    "S2": {"S2.T": {"priceDimensions": {"S2.T.D": {"pricePerUnit": {"USD": "0.00125"}}}}},
    "S3": {"S3.T": {"priceDimensions": {"S3.T.D": {"pricePerUnit": {"USD": "0.0001"}}}}}
  }}
}`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newJob(t *testing.T, body string, status int) (*Job, string, *telemetry.Metrics) {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(ts.Close)

	cfg := config.DefaultConfig()
	cfg.Sync.FeedURL = ts.URL
	out := filepath.Join(t.TempDir(), "pricing", "normalized-pricing.json")
	metrics := telemetry.NewMetrics(prometheus.NewRegistry())
	return &Job{
		Sync:       cfg.Sync,
		Parsing:    cfg.Parsing,
		Publisher:  catalog.FilePublisher{Path: out},
		HTTPClient: ts.Client(),
		Metrics:    metrics,
		Logger:     discardLogger(),
	}, out, metrics
}

func TestRun_Publishes(t *testing.T) {
	job, out, metrics := newJob(t, feed, http.StatusOK)

	res, err := job.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, out, res.Destination)
	assert.Equal(t, 3, res.Stats.Scanned)
	assert.Equal(t, 1, res.Stats.Emitted)
	assert.Equal(t, 1, res.Stats.Rejected[catalog.ReasonExcludedUsage])

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, res.Bytes, len(data))
	records, err := catalog.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, []catalog.PriceRecord{{
		Provider: "Anthropic", ModelID: "claude3haiku", Region: "us-east-1",
		InputCostPerK: 0.00025, OutputCostPerK: 0.00125,
	}}, records)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.SyncSKUTotal.WithLabelValues("accepted")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.SyncRecordsEmitted))
	assert.Greater(t, testutil.ToFloat64(metrics.SyncLastSuccess), 0.0)
}

func TestRun_EmptyResultNotPublished(t *testing.T) {
	job, out, metrics := newJob(t, `{"products":{"X":{"attributes":{"servicecode":"AmazonEC2"}}}}`, http.StatusOK)

	_, err := job.Run(context.Background())
	assert.ErrorIs(t, err, ErrEmptyCatalog)
	_, statErr := os.Stat(out)
	assert.True(t, os.IsNotExist(statErr))
	assert.Zero(t, testutil.ToFloat64(metrics.SyncLastSuccess))
}

func TestRun_Errors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		want   error
	}{
		{"upstream error", "nope", http.StatusBadGateway, nil},
		{"not json", "<html>", http.StatusOK, catalog.ErrInvalidFeed},
		{"no products", `{"terms":{}}`, http.StatusOK, catalog.ErrNoProducts},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			job, out, _ := newJob(t, tt.body, tt.status)
			_, err := job.Run(context.Background())
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
			_, statErr := os.Stat(out)
			assert.True(t, os.IsNotExist(statErr))
		})
	}
}

func TestRun_BadPattern(t *testing.T) {
	job, _, _ := newJob(t, feed, http.StatusOK)
	job.Parsing.ModifierPattern = "("
	_, err := job.Run(context.Background())
	assert.Error(t, err)
}

func TestNewPublisher(t *testing.T) {
	cfg := config.DefaultConfig().Sync
	cfg.OutputPath = "out.json"
	p, err := NewPublisher(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, "out.json", p.Destination())
}
