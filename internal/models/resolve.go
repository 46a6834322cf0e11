package models

import (
	"context"
	"log/slog"

	"github.com/af-corp/llm-cost-calculator/internal/catalog"
)

// Resolve substitutes catalog costs into defaults whose name and region
// match a catalog record exactly. Unmatched defaults keep their costs.
// The input slice is not modified.
func Resolve(records []catalog.PriceRecord, defaults []Model) []Model {
	out := make([]Model, len(defaults))
	copy(out, defaults)
	if len(records) == 0 {
		return out
	}

	type key struct{ name, region string }
	index := make(map[key]catalog.PriceRecord, len(records))
	for _, r := range records {
		k := key{r.ModelID, r.Region}
		if _, seen := index[k]; !seen {
			index[k] = r
		}
	}

	for i, m := range out {
		r, ok := index[key{m.Name, m.Region}]
		if !ok {
			continue
		}
		// A missing cost decodes as 0; keep the curated one.
		if r.InputCostPerK > 0 {
			out[i].InputCost = r.InputCostPerK
		}
		if r.OutputCostPerK > 0 {
			out[i].OutputCost = r.OutputCostPerK
		}
	}
	return out
}

// LoadDefaults loads the catalog from src and resolves the curated defaults
// against it. Any failure, or an empty catalog, falls back to the curated
// list; the returned catalog is then nil. Errors are logged, never returned.
func LoadDefaults(ctx context.Context, src catalog.Source, logger *slog.Logger) ([]Model, []catalog.PriceRecord) {
	if src == nil {
		return CuratedDefaults(), nil
	}
	records, err := src.Load(ctx)
	if err != nil {
		logger.Warn("catalog unavailable, using curated defaults", "error", err)
		return CuratedDefaults(), nil
	}
	if len(records) == 0 {
		logger.Warn("catalog is empty, using curated defaults")
		return CuratedDefaults(), nil
	}
	logger.Info("catalog loaded", "records", len(records))
	return Resolve(records, CuratedDefaults()), records
}
