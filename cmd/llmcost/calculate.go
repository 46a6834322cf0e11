package main

import (
	"errors"
	"fmt"

	"github.com/af-corp/llm-cost-calculator/internal/calc"
	"github.com/af-corp/llm-cost-calculator/internal/models"
	"github.com/spf13/cobra"
)

var (
	errNegativeRates  = errors.New("rates must not be negative")
	errNothingToPrice = errors.New("pass a model id or --input-cost/--output-cost")
)

func usageFlags(cmd *cobra.Command, u *calc.Usage) {
	cmd.Flags().Int64Var(&u.InputTokens, "input-tokens", 0, "input tokens per request")
	cmd.Flags().Int64Var(&u.OutputTokens, "output-tokens", 0, "output tokens per request")
	cmd.Flags().Int64Var(&u.Requests, "requests", 0, "requests per month")
}

func calculateCmd(a *app) *cobra.Command {
	var (
		usage calc.Usage
		rates calc.Rates
	)
	cmd := &cobra.Command{
		Use:     "calculate [model-id]",
		Aliases: []string{"calc"},
		Short:   "Estimate the monthly cost of one model",
		Long: `Estimate the monthly cost of one model.

Pass a model id from 'llmcost models list', or give the rates directly
with --input-cost and --output-cost.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := usage.Validate(); err != nil {
				return err
			}

			var model *models.Model
			switch {
			case len(args) == 1:
				m, err := a.store.Get(args[0])
				if err != nil {
					return fmt.Errorf("%s: %w", args[0], err)
				}
				model = &m
				rates = calc.RatesOf(m)
			case cmd.Flags().Changed("input-cost") || cmd.Flags().Changed("output-cost"):
				if rates.InputCost < 0 || rates.OutputCost < 0 {
					return errNegativeRates
				}
			default:
				return errNothingToPrice
			}

			b := calc.Compute(rates, usage)
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"model": model, "rates": rates, "breakdown": b})
			}
			return renderBreakdown(cmd.OutOrStdout(), model, rates, b)
		},
	}
	usageFlags(cmd, &usage)
	cmd.Flags().Float64Var(&rates.InputCost, "input-cost", 0, "input cost, USD per 1K tokens")
	cmd.Flags().Float64Var(&rates.OutputCost, "output-cost", 0, "output cost, USD per 1K tokens")
	return cmd
}

func compareCmd(a *app) *cobra.Command {
	var (
		usage    calc.Usage
		region   string
		selected string
	)
	cmd := &cobra.Command{
		Use:   "compare [model-id...]",
		Short: "Compare monthly costs across models",
		Long: `Compare monthly costs across models.

With --region, every model in that region is compared, cheapest first; the
baseline is --selected when it is in the region, else the cheapest model.

With two or more model ids, only those models are compared. The baseline is
--selected when given, else the cheapest of the set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				cmp calc.Comparison
				err error
			)
			if len(args) > 0 {
				subset := make([]models.Model, 0, len(args))
				for _, id := range args {
					m, err := a.store.Get(id)
					if err != nil {
						return fmt.Errorf("%s: %w", id, err)
					}
					subset = append(subset, m)
				}
				var sel *models.Model
				if selected != "" {
					m, err := a.store.Get(selected)
					if err != nil {
						return fmt.Errorf("%s: %w", selected, err)
					}
					sel = &m
				}
				cmp, err = calc.CompareSelected(subset, usage, sel)
			} else {
				cmp, err = calc.CompareRegion(a.store.Merged(), region, usage, selected)
			}
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), cmp)
			}
			return renderComparison(cmd.OutOrStdout(), cmp)
		},
	}
	usageFlags(cmd, &usage)
	cmd.Flags().StringVar(&region, "region", "", "compare every model in this region")
	cmd.Flags().StringVar(&selected, "selected", "", "model id to use as the baseline")
	return cmd
}

func embedCmd(a *app) *cobra.Command {
	var (
		modelID   string
		inputType string
		value     float64
		price     float64
	)
	cmd := &cobra.Command{
		Use:   "embed",
		Short: "Estimate the cost of embedding a corpus",
		Long: `Estimate the cost of embedding a corpus.

--type is one of data-size (GB), token-count or character-count.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			model, ok := calc.LookupEmbeddingModel(modelID)
			if !ok {
				return fmt.Errorf("unknown embedding model %q", modelID)
			}
			if !cmd.Flags().Changed("price") {
				price = model.PricePerK
			}
			est, err := calc.EstimateEmbedding(calc.EmbeddingInput(inputType), value, price)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"model": model, "estimate": est})
			}
			return renderEmbedding(cmd.OutOrStdout(), model, est)
		},
	}
	cmd.Flags().StringVar(&modelID, "model", calc.DefaultEmbeddingModel, "embedding model id")
	cmd.Flags().StringVar(&inputType, "type", string(calc.InputDataSize), "how --value is measured")
	cmd.Flags().Float64Var(&value, "value", 0, "volume to embed")
	cmd.Flags().Float64Var(&price, "price", 0, "override the model price, USD per 1K tokens")
	return cmd
}

func tokensCmd(a *app) *cobra.Command {
	var tokenizer string
	cmd := &cobra.Command{
		Use:   "tokens [text]",
		Short: "Estimate the token count of text",
		Long: `Estimate the token count of text. Without an argument the text is read
from stdin. Tokenizers: gpt, claude, llama, gemma; anything else uses four
characters per token.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readText(cmd, args)
			if err != nil {
				return err
			}
			stats, err := calc.CountTokens(text, tokenizer)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), stats)
			}
			return renderTextStats(cmd.OutOrStdout(), stats)
		},
	}
	cmd.Flags().StringVar(&tokenizer, "tokenizer", "simple", "tokenizer family")
	return cmd
}
