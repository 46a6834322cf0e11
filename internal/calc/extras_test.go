package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimateEmbedding(t *testing.T) {
	titan, ok := LookupEmbeddingModel(DefaultEmbeddingModel)
	require.True(t, ok)

	tests := []struct {
		name   string
		input  EmbeddingInput
		value  float64
		tokens float64
		cost   float64
	}{
		{"one gigabyte", InputDataSize, 1, 161_000_000, 3.864},
		{"tokens", InputTokenCount, 1_000_000, 1_000_000, 0.024},
		{"characters", InputCharCount, 400, 100, 0.0000024},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est, err := EstimateEmbedding(tt.input, tt.value, titan.PricePerK)
			require.NoError(t, err)
			assert.InDelta(t, tt.tokens, est.Tokens, 1e-6)
			assert.InDelta(t, tt.cost, est.TotalCost, 1e-9)
		})
	}
}

func TestEstimateEmbedding_Invalid(t *testing.T) {
	_, err := EstimateEmbedding(InputTokenCount, 0, 0.0001)
	assert.ErrorIs(t, err, ErrInvalidValue)
	_, err = EstimateEmbedding(InputTokenCount, 10, 0)
	assert.ErrorIs(t, err, ErrInvalidPrice)
	_, err = EstimateEmbedding("pages", 10, 0.0001)
	assert.ErrorContains(t, err, "unknown input type")
}

func TestEmbeddingModels(t *testing.T) {
	all := EmbeddingModels()
	require.Len(t, all, 4)
	assert.Equal(t, "cohere-embed", all[0].ID)
	_, ok := LookupEmbeddingModel("nope")
	assert.False(t, ok)
}

func TestCountTokens(t *testing.T) {
	text := "  Hello world. How are you?  "

	stats, err := CountTokens(text, "")
	require.NoError(t, err)
	assert.Equal(t, 25, stats.Characters)
	assert.Equal(t, 5, stats.Words)
	assert.Equal(t, 2, stats.Sentences)
	assert.Equal(t, 7, stats.EstimatedTokens)
	assert.Equal(t, "simple", stats.Tokenizer.ID)

	stats, err = CountTokens(text, "claude")
	require.NoError(t, err)
	assert.Equal(t, 6, stats.EstimatedTokens)
	assert.Equal(t, "Anthropic Claude", stats.Tokenizer.Name)
}

func TestCountTokens_Empty(t *testing.T) {
	_, err := CountTokens(" \n\t", "gpt")
	assert.ErrorIs(t, err, ErrEmptyText)
}
