package models

import (
	"fmt"

	"github.com/af-corp/llm-cost-calculator/internal/catalog"
)

type curatedEntry struct {
	provider   string
	name       string
	region     string
	inputCost  float64
	outputCost float64
}

// curated is the baseline shown when no catalog is reachable. The static
// fallback catalog is rendered from the same table.
var curated = [...]curatedEntry{
	{"AWS", "Claude 3 Haiku", "us-east-1", 0.00025, 0.00125},
	{"AWS", "Claude 3 Sonnet", "us-east-1", 0.003, 0.015},
	{"AWS", "Claude 3 Opus", "us-east-1", 0.015, 0.075},
	{"AWS", "Titan Text G1", "us-east-1", 0.0005, 0.0065},
	{"AWS", "Llama 3 Instruct (70B)", "mumbai", 0.00265, 0.0035},
}

// CuratedDefaults returns a fresh copy of the curated default models.
// Default ids are positional in the curated table, so they are stable
// across loads.
func CuratedDefaults() []Model {
	out := make([]Model, len(curated))
	for i, c := range curated {
		out[i] = Model{
			ID:         fmt.Sprintf("default-%d", i+1),
			Provider:   c.provider,
			Name:       c.name,
			Region:     c.region,
			InputCost:  c.inputCost,
			OutputCost: c.outputCost,
			Tier:       TierDefault,
		}
	}
	return out
}

// FallbackCatalog renders the curated defaults as catalog records, for
// serving when no normalized catalog file exists.
func FallbackCatalog() []catalog.PriceRecord {
	out := make([]catalog.PriceRecord, len(curated))
	for i, c := range curated {
		out[i] = catalog.PriceRecord{
			Provider:       c.provider,
			ModelID:        c.name,
			Region:         c.region,
			InputCostPerK:  c.inputCost,
			OutputCostPerK: c.outputCost,
		}
	}
	return out
}
