package calc

import (
	"sort"

	"github.com/af-corp/llm-cost-calculator/internal/models"
)

type Row struct {
	Model     models.Model `json:"model"`
	Breakdown Breakdown    `json:"breakdown"`
	Diff      float64      `json:"diff"`
	Selected  bool         `json:"selected"`
}

type Comparison struct {
	Usage        Usage   `json:"usage"`
	BaselineCost float64 `json:"baselineCost"`
	Rows         []Row   `json:"rows"`
}

// CompareRegion prices every model in region, cheapest first. The baseline
// is the model with selectedID when it is in the region, else the
// cheapest.
func CompareRegion(all []models.Model, region string, usage Usage, selectedID string) (Comparison, error) {
	if region == "" {
		return Comparison{}, ErrRegionMissing
	}
	if err := usage.validatePositive(); err != nil {
		return Comparison{}, err
	}

	var rows []Row
	for _, m := range all {
		if m.Region == region {
			rows = append(rows, Row{
				Model:     m,
				Breakdown: Compute(RatesOf(m), usage),
				Selected:  selectedID != "" && m.ID == selectedID,
			})
		}
	}
	if len(rows) == 0 {
		return Comparison{}, ErrNoModels
	}
	sortByTotal(rows)

	base := rows[0].Breakdown.TotalCost
	for _, r := range rows {
		if r.Selected {
			base = r.Breakdown.TotalCost
			break
		}
	}
	return finish(usage, base, rows), nil
}

// CompareSelected prices a caller-chosen subset. With a selected model the
// baseline is that model's cost, even when it is not in the subset, and
// rows keep the subset order. Without one the rows are sorted and the
// cheapest is the baseline.
func CompareSelected(subset []models.Model, usage Usage, selected *models.Model) (Comparison, error) {
	if len(subset) < 2 {
		return Comparison{}, ErrTooFewModels
	}
	if err := usage.Validate(); err != nil {
		return Comparison{}, err
	}

	rows := make([]Row, len(subset))
	for i, m := range subset {
		rows[i] = Row{
			Model:     m,
			Breakdown: Compute(RatesOf(m), usage),
			Selected:  selected != nil && m.ID == selected.ID,
		}
	}

	var base float64
	if selected != nil {
		base = Compute(RatesOf(*selected), usage).TotalCost
	} else {
		sortByTotal(rows)
		base = rows[0].Breakdown.TotalCost
	}
	return finish(usage, base, rows), nil
}

func sortByTotal(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Breakdown.TotalCost < rows[j].Breakdown.TotalCost
	})
}

func finish(usage Usage, base float64, rows []Row) Comparison {
	for i := range rows {
		rows[i].Diff = rows[i].Breakdown.TotalCost - base
	}
	return Comparison{Usage: usage, BaselineCost: base, Rows: rows}
}
