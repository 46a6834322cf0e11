package catalog

import (
	"testing"

	"github.com/af-corp/llm-cost-calculator/internal/config"
)

func TestUsageTypeParser_ModelID(t *testing.T) {
	cfg := config.DefaultConfig().Parsing
	p, err := NewUsageTypeParser(cfg.RegionPrefixPattern, cfg.ModifierPattern)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		usagetype string
		want      string
	}{
		{"usw2-titantextg1-lite-input-tokens", "titantextg1-lite"},
		{"use1-claude-3-haiku-output-tokens", "claude-3-haiku"},
		{"aps3-llama3-70b-input-tokens", "llama3-70b"},
		{"euc1-mistral-large-output-tokens", "mistral-large"},
		{"can1-nova-pro-input-tokens-batch", "nova-pro"},
		{"apn1-nova-lite-input-tokens-cross-region-global", "nova-lite"},
		{"mistral-7b-input-tokens-flex-batch", "mistral-7b"},
		{"llama3-input-tokens", "llama3"},
		// Only a leading prefix is stripped.
		{"model-use1-input-tokens", "model-use1"},
	}

	for _, tt := range tests {
		t.Run(tt.usagetype, func(t *testing.T) {
			if got := p.ModelID(tt.usagetype); got != tt.want {
				t.Errorf("ModelID(%q) = %q, want %q", tt.usagetype, got, tt.want)
			}
		})
	}
}

func TestIsInputOutput(t *testing.T) {
	tests := []struct {
		usagetype string
		input     bool
		output    bool
	}{
		{"use1-claude-input-tokens", true, false},
		{"use1-claude-output-tokens-batch", false, true},
		{"use1-claude-hours", false, false},
	}
	for _, tt := range tests {
		if got := IsInput(tt.usagetype); got != tt.input {
			t.Errorf("IsInput(%q) = %v, want %v", tt.usagetype, got, tt.input)
		}
		if got := IsOutput(tt.usagetype); got != tt.output {
			t.Errorf("IsOutput(%q) = %v, want %v", tt.usagetype, got, tt.output)
		}
	}
}
