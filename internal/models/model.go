// Package models holds the two-tier model store: curated defaults enriched
// from the normalized catalog, and user-added custom models persisted
// through a CustomRepository.
package models

import (
	"fmt"

	"github.com/oklog/ulid/v2"
)

// Tier records where a model came from. It is serialized as "source" to
// stay compatible with previously stored custom models.
type Tier string

const (
	TierDefault Tier = "default"
	TierCustom  Tier = "custom"
)

func ParseTier(s string) (Tier, error) {
	switch Tier(s) {
	case TierDefault, TierCustom:
		return Tier(s), nil
	default:
		return "", fmt.Errorf("unknown tier %q", s)
	}
}

// Model is one priced model. Costs are USD per 1K tokens.
type Model struct {
	ID         string  `json:"id"`
	Provider   string  `json:"provider"`
	Name       string  `json:"name"`
	Region     string  `json:"region"`
	InputCost  float64 `json:"inputCost"`
	OutputCost float64 `json:"outputCost"`
	Tier       Tier    `json:"source"`
}

// NewID returns a fresh opaque model identifier.
func NewID() string {
	return ulid.Make().String()
}
