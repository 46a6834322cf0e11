// Package catalog turns the raw vendor pricing feed into the normalized
// per-(model, region) price table, and loads and publishes that table.
package catalog

import (
	"encoding/json"
	"fmt"
)

// PriceRecord is one normalized catalog entry. Costs are USD per 1K tokens.
// The JSON field names are the ones the browser front end reads.
type PriceRecord struct {
	Provider       string  `json:"provider"`
	ModelID        string  `json:"name" jsonschema_description:"Model identifier derived from the vendor usage type"`
	Region         string  `json:"region" jsonschema_description:"Vendor region code, e.g. us-east-1"`
	InputCostPerK  float64 `json:"inputCost" jsonschema:"exclusiveMinimum=0"`
	OutputCostPerK float64 `json:"outputCost" jsonschema:"exclusiveMinimum=0"`
}

// UnmarshalJSON also accepts the legacy field names older catalog files used.
func (r *PriceRecord) UnmarshalJSON(data []byte) error {
	type Alias PriceRecord
	aux := struct {
		*Alias
		ModelName     string   `json:"modelName"`
		InputCostAlt  *float64 `json:"input_cost"`
		OutputCostAlt *float64 `json:"output_cost"`
	}{Alias: (*Alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if r.ModelID == "" {
		r.ModelID = aux.ModelName
	}
	if r.InputCostPerK == 0 && aux.InputCostAlt != nil {
		r.InputCostPerK = *aux.InputCostAlt
	}
	if r.OutputCostPerK == 0 && aux.OutputCostAlt != nil {
		r.OutputCostPerK = *aux.OutputCostAlt
	}
	return nil
}

// recordKey identifies a catalog entry.
type recordKey struct {
	ModelID string
	Region  string
}

// partialRecord accumulates the two halves of a record while the feed is
// scanned. A nil cost means the matching SKU has not been seen yet.
type partialRecord struct {
	provider   string
	key        recordKey
	inputCost  *float64
	outputCost *float64
}

func (p *partialRecord) complete() bool {
	return p.inputCost != nil && p.outputCost != nil
}

func (p *partialRecord) record() PriceRecord {
	return PriceRecord{
		Provider:       p.provider,
		ModelID:        p.key.ModelID,
		Region:         p.key.Region,
		InputCostPerK:  *p.inputCost,
		OutputCostPerK: *p.outputCost,
	}
}

// Encode renders records the way the published catalog file is laid out.
func Encode(records []PriceRecord) ([]byte, error) {
	if records == nil {
		records = []PriceRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode catalog: %w", err)
	}
	return data, nil
}

// Decode parses a normalized catalog file.
func Decode(data []byte) ([]PriceRecord, error) {
	var records []PriceRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return records, nil
}
