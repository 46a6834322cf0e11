package reference

import (
	"fmt"
	"sort"
	"strings"

	"github.com/af-corp/llm-cost-calculator/internal/catalog"
)

type Kind int

const (
	KindMatches Kind = iota
	KindReferVendor
	KindNoMatchesInRegions
	KindNoReferencePricing
)

func (k Kind) String() string {
	switch k {
	case KindMatches:
		return "matches"
	case KindReferVendor:
		return "refer_vendor"
	case KindNoMatchesInRegions:
		return "no_matches_in_regions"
	case KindNoReferencePricing:
		return "no_reference_pricing"
	default:
		return "unknown"
	}
}

// Result is the outcome of a reference lookup. Records is set only for
// KindMatches; VendorURL only for KindReferVendor.
type Result struct {
	Kind      Kind
	Provider  string
	Records   []catalog.PriceRecord
	VendorURL string
}

// Message is the text shown to the user when there is nothing to list.
func (r Result) Message() string {
	switch r.Kind {
	case KindReferVendor:
		return fmt.Sprintf("Refer to AWS Bedrock Pricing (%s) for the latest pricing details.", r.VendorURL)
	case KindNoMatchesInRegions:
		return fmt.Sprintf("No models available for %s in the selected regions", r.Provider)
	case KindNoReferencePricing:
		return fmt.Sprintf("No reference pricing available for %s", r.Provider)
	default:
		return ""
	}
}

// Matcher searches the full normalized catalog, not the resolved defaults.
type Matcher struct {
	catalog []catalog.PriceRecord
	index   Index
}

func NewMatcher(records []catalog.PriceRecord, index Index) *Matcher {
	return &Matcher{catalog: records, index: index}
}

// FindReferences returns every catalog record whose lowercased identifier
// contains one of the provider's keywords. Unknown providers get nil.
func (m *Matcher) FindReferences(provider string) []catalog.PriceRecord {
	keywords := m.index.Keywords[provider]
	if len(keywords) == 0 {
		return nil
	}
	var out []catalog.PriceRecord
	for _, r := range m.catalog {
		id := strings.ToLower(r.ModelID)
		for _, k := range keywords {
			if strings.Contains(id, k) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}

// Find runs FindReferences and narrows the result to regions when the list
// is non-empty.
func (m *Matcher) Find(provider string, regions []string) Result {
	records := m.FindReferences(provider)
	if len(regions) > 0 {
		allowed := setOf(regions...)
		filtered := records[:0:0]
		for _, r := range records {
			if allowed[r.Region] {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}

	switch {
	case len(records) > 0:
		return Result{Kind: KindMatches, Provider: provider, Records: records}
	case m.index.WithoutAPIPricing[provider]:
		return Result{Kind: KindReferVendor, Provider: provider, VendorURL: m.index.VendorPricingURL}
	case len(regions) > 0:
		return Result{Kind: KindNoMatchesInRegions, Provider: provider}
	default:
		return Result{Kind: KindNoReferencePricing, Provider: provider}
	}
}

// RegionsFor lists the sorted distinct regions the provider's references
// appear in.
func (m *Matcher) RegionsFor(provider string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range m.FindReferences(provider) {
		if !seen[r.Region] {
			seen[r.Region] = true
			out = append(out, r.Region)
		}
	}
	sort.Strings(out)
	return out
}
