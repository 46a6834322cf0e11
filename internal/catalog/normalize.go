package catalog

import (
	"errors"
	"strconv"
	"strings"

	"github.com/af-corp/llm-cost-calculator/internal/config"
	"github.com/tidwall/gjson"
)

var (
	ErrInvalidFeed = errors.New("feed is not valid json")
	ErrNoProducts  = errors.New("feed has no products")
)

// Stats summarizes one normalization run.
type Stats struct {
	Scanned        int
	Rejected       map[string]int
	Emitted        int
	DroppedPartial int
}

// Normalizer converts a raw vendor pricing feed into PriceRecords.
type Normalizer struct {
	chain           ruleChain
	parser          *UsageTypeParser
	defaultProvider string
}

func NewNormalizer(serviceCode string, cfg config.ParsingConfig) (*Normalizer, error) {
	parser, err := NewUsageTypeParser(cfg.RegionPrefixPattern, cfg.ModifierPattern)
	if err != nil {
		return nil, err
	}
	keywords := make([]string, 0, len(cfg.ExcludedKeywords))
	for _, k := range cfg.ExcludedKeywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			keywords = append(keywords, k)
		}
	}
	return &Normalizer{
		chain: newRuleChain(
			serviceCodeRule{code: serviceCode},
			requiredAttributesRule{},
			tokenUsageRule{},
			exclusionRule{keywords: keywords},
		),
		parser:          parser,
		defaultProvider: cfg.DefaultProvider,
	}, nil
}

// Normalize scans products in feed order and returns one record per
// (model, region) pair that has both an input and an output price.
// Pairs missing either side are dropped and only counted in Stats.
func (n *Normalizer) Normalize(raw []byte) ([]PriceRecord, Stats, error) {
	stats := Stats{Rejected: make(map[string]int)}

	if !gjson.ValidBytes(raw) {
		return nil, stats, ErrInvalidFeed
	}
	products := gjson.GetBytes(raw, "products")
	if !products.IsObject() {
		return nil, stats, ErrNoProducts
	}
	terms := indexTerms(gjson.GetBytes(raw, "terms.OnDemand"))

	entries := make(map[recordKey]*partialRecord)
	var order []recordKey

	products.ForEach(func(sku, product gjson.Result) bool {
		stats.Scanned++
		attrs := product.Get("attributes")
		item := lineItem{
			SKU:         sku.String(),
			ServiceCode: attrs.Get("servicecode").String(),
			UsageType:   strings.ToLower(attrs.Get("usagetype").String()),
			RegionCode:  attrs.Get("regionCode").String(),
			Provider:    attrs.Get("providerName").String(),
		}
		if reason := n.chain.Run(item); reason != "" {
			stats.Rejected[reason]++
			return true
		}

		price, ok := firstUSDPrice(terms[item.SKU])
		if !ok {
			stats.Rejected[ReasonNoPrice]++
			return true
		}

		key := recordKey{ModelID: n.parser.ModelID(item.UsageType), Region: item.RegionCode}
		entry, ok := entries[key]
		if !ok {
			provider := item.Provider
			if provider == "" {
				provider = n.defaultProvider
			}
			entry = &partialRecord{provider: provider, key: key}
			entries[key] = entry
			order = append(order, key)
		}
		if IsInput(item.UsageType) {
			p := price
			entry.inputCost = &p
		}
		if IsOutput(item.UsageType) {
			p := price
			entry.outputCost = &p
		}
		return true
	})

	records := make([]PriceRecord, 0, len(order))
	for _, key := range order {
		entry := entries[key]
		if !entry.complete() {
			stats.DroppedPartial++
			continue
		}
		records = append(records, entry.record())
	}
	stats.Emitted = len(records)
	return records, stats, nil
}

// indexTerms maps sku -> on-demand terms so each product lookup is O(1).
func indexTerms(onDemand gjson.Result) map[string]gjson.Result {
	index := make(map[string]gjson.Result)
	onDemand.ForEach(func(sku, terms gjson.Result) bool {
		index[sku.String()] = terms
		return true
	})
	return index
}

// firstUSDPrice reads the USD unit price of the first price dimension of the
// first term, in feed order. Missing, unparsable and zero prices are rejected.
func firstUSDPrice(terms gjson.Result) (float64, bool) {
	term, ok := first(terms)
	if !ok {
		return 0, false
	}
	dim, ok := first(term.Get("priceDimensions"))
	if !ok {
		return 0, false
	}
	usd := dim.Get("pricePerUnit.USD")
	if !usd.Exists() {
		return 0, false
	}
	price, err := strconv.ParseFloat(strings.TrimSpace(usd.String()), 64)
	if err != nil || price == 0 {
		return 0, false
	}
	return price, true
}

func first(obj gjson.Result) (gjson.Result, bool) {
	if !obj.IsObject() {
		return gjson.Result{}, false
	}
	var out gjson.Result
	found := false
	obj.ForEach(func(_, value gjson.Result) bool {
		out = value
		found = true
		return false
	})
	return out, found
}
