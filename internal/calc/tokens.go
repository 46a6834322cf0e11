package calc

import (
	"errors"
	"math"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Tokenizer approximates a model family's tokenizer by its average
// characters per token.
type Tokenizer struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	CharsPerToken float64 `json:"charsPerToken"`
	Method        string  `json:"method"`
}

var tokenizers = map[string]Tokenizer{
	"gpt":    {ID: "gpt", Name: "OpenAI GPT", CharsPerToken: 3.8, Method: "tiktoken-based"},
	"claude": {ID: "claude", Name: "Anthropic Claude", CharsPerToken: 4.2, Method: "Claude tokenizer"},
	"llama":  {ID: "llama", Name: "Meta Llama", CharsPerToken: 4.0, Method: "SentencePiece"},
	"gemma":  {ID: "gemma", Name: "Google Gemma", CharsPerToken: 3.9, Method: "SentencePiece"},
}

var simpleTokenizer = Tokenizer{ID: "simple", Name: "Generic", CharsPerToken: 4, Method: "character-based estimation"}

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

var ErrEmptyText = errors.New("enter some text to count tokens")

type TextStats struct {
	Characters      int       `json:"characters"`
	Words           int       `json:"words"`
	Sentences       int       `json:"sentences"`
	EstimatedTokens int       `json:"estimatedTokens"`
	Tokenizer       Tokenizer `json:"tokenizer"`
}

func LookupTokenizer(id string) (Tokenizer, bool) {
	t, ok := tokenizers[id]
	return t, ok
}

// CountTokens estimates the token count of text. An empty or unknown
// tokenizer id uses the generic four-characters-per-token rule.
func CountTokens(text, tokenizerID string) (TextStats, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return TextStats{}, ErrEmptyText
	}

	tok, ok := tokenizers[tokenizerID]
	if !ok {
		tok = simpleTokenizer
	}

	chars := utf8.RuneCountInString(text)
	sentences := 0
	for _, s := range sentenceSplit.Split(text, -1) {
		if strings.TrimSpace(s) != "" {
			sentences++
		}
	}

	return TextStats{
		Characters:      chars,
		Words:           len(strings.Fields(text)),
		Sentences:       sentences,
		EstimatedTokens: int(math.Ceil(float64(chars) / tok.CharsPerToken)),
		Tokenizer:       tok,
	}, nil
}
