package catalog

import "strings"

// Rejection reasons, also used as metric label values.
const (
	ReasonServiceCode       = "service_code"
	ReasonMissingAttributes = "missing_attributes"
	ReasonNotTokenUsage     = "not_token_usage"
	ReasonExcludedUsage     = "excluded_usage"
	ReasonNoPrice           = "no_price"
)

// lineItem is the subset of a feed product the rules look at.
// UsageType is already lowercased.
type lineItem struct {
	SKU         string
	ServiceCode string
	UsageType   string
	RegionCode  string
	Provider    string
}

// Rule decides whether a line item stays in the pipeline.
type Rule interface {
	Name() string
	Accept(item lineItem) bool
}

// ruleChain runs rules in order, stopping on the first rejection.
type ruleChain struct {
	rules []Rule
}

func newRuleChain(rules ...Rule) ruleChain {
	return ruleChain{rules: rules}
}

// Run returns the name of the rejecting rule, or "" if every rule accepted.
func (c ruleChain) Run(item lineItem) string {
	for _, r := range c.rules {
		if !r.Accept(item) {
			return r.Name()
		}
	}
	return ""
}

type serviceCodeRule struct{ code string }

func (r serviceCodeRule) Name() string { return ReasonServiceCode }
func (r serviceCodeRule) Accept(item lineItem) bool {
	return item.ServiceCode == r.code
}

type requiredAttributesRule struct{}

func (requiredAttributesRule) Name() string { return ReasonMissingAttributes }
func (requiredAttributesRule) Accept(item lineItem) bool {
	return item.UsageType != "" && item.RegionCode != ""
}

type tokenUsageRule struct{}

func (tokenUsageRule) Name() string { return ReasonNotTokenUsage }
func (tokenUsageRule) Accept(item lineItem) bool {
	return IsInput(item.UsageType) || IsOutput(item.UsageType)
}

// exclusionRule drops non-text modalities and charges that are not per-token usage.
type exclusionRule struct{ keywords []string }

func (r exclusionRule) Name() string { return ReasonExcludedUsage }
func (r exclusionRule) Accept(item lineItem) bool {
	for _, k := range r.keywords {
		if strings.Contains(item.UsageType, k) {
			return false
		}
	}
	return true
}
