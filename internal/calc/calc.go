// Package calc turns per-1K-token rates and usage volumes into monthly cost
// breakdowns and comparisons. Everything here is pure.
package calc

import (
	"errors"
	"fmt"
	"math"

	"github.com/af-corp/llm-cost-calculator/internal/models"
)

var (
	ErrNoModels      = errors.New("no models available for the selection")
	ErrTooFewModels  = errors.New("select at least 2 models to compare")
	ErrRegionMissing = errors.New("select a region")
	ErrNegativeUsage = errors.New("token counts and requests must not be negative")
	ErrInvalidUsage  = errors.New("enter valid token counts and requests per month")
)

// Rates are USD per 1K tokens.
type Rates struct {
	InputCost  float64 `json:"inputCost"`
	OutputCost float64 `json:"outputCost"`
}

func RatesOf(m models.Model) Rates {
	return Rates{InputCost: m.InputCost, OutputCost: m.OutputCost}
}

// Usage describes one month of traffic.
type Usage struct {
	InputTokens  int64 `json:"inputTokens"`
	OutputTokens int64 `json:"outputTokens"`
	Requests     int64 `json:"requestsPerMonth"`
}

func (u Usage) Validate() error {
	if u.InputTokens < 0 || u.OutputTokens < 0 || u.Requests < 0 {
		return ErrNegativeUsage
	}
	return nil
}

// validatePositive is the stricter check the comparison flows apply.
func (u Usage) validatePositive() error {
	if u.InputTokens <= 0 || u.OutputTokens <= 0 || u.Requests <= 0 {
		return ErrInvalidUsage
	}
	return nil
}

type Breakdown struct {
	TotalInputTokens  int64   `json:"totalInputTokens"`
	TotalOutputTokens int64   `json:"totalOutputTokens"`
	MonthlyInputCost  float64 `json:"monthlyInputCost"`
	MonthlyOutputCost float64 `json:"monthlyOutputCost"`
	TotalCost         float64 `json:"totalCost"`
}

func Compute(rates Rates, usage Usage) Breakdown {
	totalIn := usage.InputTokens * usage.Requests
	totalOut := usage.OutputTokens * usage.Requests
	inCost := rates.InputCost / 1000 * float64(totalIn)
	outCost := rates.OutputCost / 1000 * float64(totalOut)
	return Breakdown{
		TotalInputTokens:  totalIn,
		TotalOutputTokens: totalOut,
		MonthlyInputCost:  inCost,
		MonthlyOutputCost: outCost,
		TotalCost:         inCost + outCost,
	}
}

// FormatDiff renders a cost difference against the baseline.
func FormatDiff(diff float64) string {
	switch {
	case diff > 0:
		return fmt.Sprintf("+$%.4f", diff)
	case diff < 0:
		return fmt.Sprintf("-$%.4f", math.Abs(diff))
	default:
		return "Base"
	}
}
