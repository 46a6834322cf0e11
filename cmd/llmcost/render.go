package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/af-corp/llm-cost-calculator/internal/calc"
	"github.com/af-corp/llm-cost-calculator/internal/models"
	"github.com/af-corp/llm-cost-calculator/internal/reference"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	success = color.New(color.FgGreen).SprintFunc()
	warning = color.New(color.FgYellow).SprintFunc()
	muted   = color.New(color.FgHiBlack).SprintFunc()
	header  = color.New(color.Bold).SprintFunc()
	cheaper = color.New(color.FgGreen).SprintFunc()
	pricier = color.New(color.FgRed).SprintFunc()
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeLines(w io.Writer, asJSON bool, lines []string) error {
	if asJSON {
		if lines == nil {
			lines = []string{}
		}
		return writeJSON(w, lines)
	}
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
	return nil
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func formatCost(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func money(v float64) string {
	return fmt.Sprintf("$%.4f", v)
}

func renderModels(w io.Writer, list []models.Model) error {
	if len(list) == 0 {
		fmt.Fprintln(w, muted("No models found"))
		return nil
	}
	tw := newTable(w)
	fmt.Fprintln(tw, header("ID\tPROVIDER\tNAME\tREGION\tINPUT/1K\tOUTPUT/1K\tSOURCE"))
	for _, m := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			m.ID, m.Provider, m.Name, m.Region, formatCost(m.InputCost), formatCost(m.OutputCost), m.Tier)
	}
	return tw.Flush()
}

func renderBreakdown(w io.Writer, m *models.Model, rates calc.Rates, b calc.Breakdown) error {
	if m != nil {
		fmt.Fprintf(w, "%s %s (%s, %s)\n", header("Model:"), m.Name, m.Provider, m.Region)
	}
	tw := newTable(w)
	fmt.Fprintf(tw, "Input tokens / month\t%d\t@ %s / 1K\n", b.TotalInputTokens, formatCost(rates.InputCost))
	fmt.Fprintf(tw, "Output tokens / month\t%d\t@ %s / 1K\n", b.TotalOutputTokens, formatCost(rates.OutputCost))
	fmt.Fprintf(tw, "Input cost\t%s\t\n", money(b.MonthlyInputCost))
	fmt.Fprintf(tw, "Output cost\t%s\t\n", money(b.MonthlyOutputCost))
	fmt.Fprintf(tw, "%s\t%s\t\n", header("Total / month"), header(money(b.TotalCost)))
	return tw.Flush()
}

func renderComparison(w io.Writer, cmp calc.Comparison) error {
	tw := newTable(w)
	fmt.Fprintln(tw, header("MODEL\tPROVIDER\tREGION\tINPUT\tOUTPUT\tTOTAL\tVS BASE"))
	for _, r := range cmp.Rows {
		name := r.Model.Name
		if r.Selected {
			name = "* " + name
		}
		diff := calc.FormatDiff(r.Diff)
		switch {
		case r.Diff > 0:
			diff = pricier(diff)
		case r.Diff < 0:
			diff = cheaper(diff)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			name, r.Model.Provider, r.Model.Region,
			money(r.Breakdown.MonthlyInputCost), money(r.Breakdown.MonthlyOutputCost),
			money(r.Breakdown.TotalCost), diff)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s %s\n", muted("Baseline:"), money(cmp.BaselineCost))
	return nil
}

func renderReferences(w io.Writer, res reference.Result) error {
	fmt.Fprintf(w, "%s %d reference price(s) for %s\n", header("Found"), len(res.Records), res.Provider)
	tw := newTable(w)
	fmt.Fprintln(tw, header("MODEL\tREGION\tINPUT/1K\tOUTPUT/1K"))
	for _, r := range res.Records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.ModelID, r.Region, formatCost(r.InputCostPerK), formatCost(r.OutputCostPerK))
	}
	return tw.Flush()
}

func renderEmbedding(w io.Writer, m calc.EmbeddingModel, est calc.EmbeddingEstimate) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "Model\t%s\n", m.Name)
	fmt.Fprintf(tw, "Input\t%s %s\n", formatCost(est.Value), est.Input)
	fmt.Fprintf(tw, "Tokens\t%.0f\n", est.Tokens)
	fmt.Fprintf(tw, "Price / 1K\t%s\n", formatCost(est.PricePerK))
	fmt.Fprintf(tw, "%s\t%s\n", header("Total"), header(money(est.TotalCost)))
	return tw.Flush()
}

func renderTextStats(w io.Writer, s calc.TextStats) error {
	tw := newTable(w)
	fmt.Fprintf(tw, "Characters\t%d\n", s.Characters)
	fmt.Fprintf(tw, "Words\t%d\n", s.Words)
	fmt.Fprintf(tw, "Sentences\t%d\n", s.Sentences)
	fmt.Fprintf(tw, "%s\t%s\n", header("Estimated tokens"), header(strconv.Itoa(s.EstimatedTokens)))
	fmt.Fprintf(tw, "Tokenizer\t%s (%s)\n", s.Tokenizer.Name, s.Tokenizer.Method)
	return tw.Flush()
}

// readText takes the text argument, or all of stdin when there is none.
func readText(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
