package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

var schemaReflector = jsonschema.Reflector{
	DoNotReference:            true,
	AllowAdditionalProperties: true,
}

// Schema returns the JSON Schema of a published catalog file: an array of
// PriceRecord objects.
func Schema() ([]byte, error) {
	item := schemaReflector.Reflect(&PriceRecord{})
	item.Version = ""
	doc := map[string]any{
		"$schema":     jsonschema.Version,
		"title":       "Normalized LLM pricing catalog",
		"description": "One entry per (model, region) pair. Costs are USD per 1K tokens.",
		"type":        "array",
		"items":       item,
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal catalog schema: %w", err)
	}
	return data, nil
}
