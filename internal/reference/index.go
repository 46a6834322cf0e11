// Package reference finds catalog prices comparable to a provider the user
// is adding a custom model for.
package reference

import (
	"sort"
	"strings"

	"github.com/af-corp/llm-cost-calculator/internal/config"
)

const DefaultVendorPricingURL = "https://aws.amazon.com/bedrock/pricing/"

// Index maps provider display names to the lowercase substrings that
// identify their models in catalog identifiers.
type Index struct {
	Keywords          map[string][]string
	WithoutAPIPricing map[string]bool
	VendorPricingURL  string
}

func DefaultIndex() Index {
	return Index{
		Keywords: map[string][]string{
			"Amazon":       {"titan", "nova"},
			"Anthropic":    {"claude"},
			"Google":       {"gemma"},
			"Meta":         {"llama"},
			"Mistral AI":   {"mistral", "mixtral", "ministral", "magistral"},
			"OpenAI":       {"gpt"},
			"Cohere":       {"command"},
			"AI21 Labs":    {"jamba"},
			"DeepSeek":     {"deepseek"},
			"Moonshot AI":  {"kimi"},
			"MiniMax AI":   {"minimax"},
			"NVIDIA":       {"nemotron"},
			"Qwen":         {"qwen"},
			"Stability AI": {"sdxl", "stable"},
			"TwelveLabs":   {"voxtral"},
			"Writer":       {"palmyra"},
		},
		WithoutAPIPricing: setOf("Anthropic", "Stability AI", "Writer", "Cohere", "AI21 Labs"),
		VendorPricingURL:  DefaultVendorPricingURL,
	}
}

// IndexFromConfig overlays cfg onto the default index. Configured providers
// replace their default keyword lists; a non-empty WithoutAPIPricing list
// replaces the default set.
func IndexFromConfig(cfg *config.ReferencesConfig) Index {
	idx := DefaultIndex()
	if cfg == nil {
		return idx
	}
	for provider, keywords := range cfg.Providers {
		lower := make([]string, 0, len(keywords))
		for _, k := range keywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				lower = append(lower, k)
			}
		}
		idx.Keywords[provider] = lower
	}
	if len(cfg.WithoutAPIPricing) > 0 {
		idx.WithoutAPIPricing = setOf(cfg.WithoutAPIPricing...)
	}
	if cfg.VendorPricingURL != "" {
		idx.VendorPricingURL = cfg.VendorPricingURL
	}
	return idx
}

// Providers returns the indexed provider names, sorted.
func (idx Index) Providers() []string {
	out := make([]string, 0, len(idx.Keywords))
	for p := range idx.Keywords {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// KnownRegions is the region list offered when adding a custom model.
func KnownRegions() []string {
	return []string{
		"us-east-1", "us-east-2", "us-west-1", "us-west-2",
		"eu-west-1", "eu-west-2", "eu-central-1",
		"ap-southeast-1", "ap-southeast-2", "ap-northeast-1", "ap-south-1",
		"ca-central-1", "sa-east-1", "mumbai",
	}
}

func setOf(items ...string) map[string]bool {
	m := make(map[string]bool, len(items))
	for _, it := range items {
		m[it] = true
	}
	return m
}
