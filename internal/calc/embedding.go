package calc

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrInvalidValue = errors.New("enter a valid value")
	ErrInvalidPrice = errors.New("enter a valid model price")
)

// EmbeddingInput says how the volume to embed is measured.
type EmbeddingInput string

const (
	InputDataSize   EmbeddingInput = "data-size"       // gigabytes
	InputTokenCount EmbeddingInput = "token-count"     // tokens
	InputCharCount  EmbeddingInput = "character-count" // characters
)

const (
	tokensPerGB   = 161_000_000
	charsPerToken = 4
)

type EmbeddingModel struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	PricePerK float64 `json:"pricePerK"`
}

var embeddingModels = map[string]EmbeddingModel{
	"titan-v1":                  {ID: "titan-v1", Name: "Amazon Titan Text Embedding V1", PricePerK: 0.0001},
	"titan-v2":                  {ID: "titan-v2", Name: "Amazon Titan Text Embedding V2", PricePerK: 0.000024},
	"cohere-embed":              {ID: "cohere-embed", Name: "Cohere Embed English", PricePerK: 0.0001},
	"cohere-embed-multilingual": {ID: "cohere-embed-multilingual", Name: "Cohere Embed Multilingual", PricePerK: 0.0001},
}

// DefaultEmbeddingModel is preselected when the caller names none.
const DefaultEmbeddingModel = "titan-v2"

func EmbeddingModels() []EmbeddingModel {
	out := make([]EmbeddingModel, 0, len(embeddingModels))
	for _, m := range embeddingModels {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func LookupEmbeddingModel(id string) (EmbeddingModel, bool) {
	m, ok := embeddingModels[id]
	return m, ok
}

type EmbeddingEstimate struct {
	Input     EmbeddingInput `json:"inputType"`
	Value     float64        `json:"value"`
	Tokens    float64        `json:"tokens"`
	PricePerK float64        `json:"pricePerK"`
	TotalCost float64        `json:"totalCost"`
}

// EstimateEmbedding converts value into tokens and prices them at
// pricePerK USD per 1K tokens.
func EstimateEmbedding(input EmbeddingInput, value, pricePerK float64) (EmbeddingEstimate, error) {
	if value <= 0 {
		return EmbeddingEstimate{}, ErrInvalidValue
	}
	if pricePerK <= 0 {
		return EmbeddingEstimate{}, ErrInvalidPrice
	}

	var tokens float64
	switch input {
	case InputDataSize:
		tokens = value * tokensPerGB
	case InputTokenCount:
		tokens = value
	case InputCharCount:
		tokens = value / charsPerToken
	default:
		return EmbeddingEstimate{}, fmt.Errorf("unknown input type %q", input)
	}

	return EmbeddingEstimate{
		Input:     input,
		Value:     value,
		Tokens:    tokens,
		PricePerK: pricePerK,
		TotalCost: pricePerK / 1000 * tokens,
	}, nil
}
