package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	inputTokensSuffix  = "-input-tokens"
	outputTokensSuffix = "-output-tokens"
)

// UsageTypeParser extracts model identifiers from Bedrock usagetype strings
// such as "usw2-titantextg1-lite-input-tokens". The region prefix and
// modifier patterns are vendor conventions and come from configuration.
type UsageTypeParser struct {
	regionPrefix *regexp.Regexp
	modifier     *regexp.Regexp
}

func NewUsageTypeParser(regionPrefixPattern, modifierPattern string) (*UsageTypeParser, error) {
	regionPrefix, err := regexp.Compile(regionPrefixPattern)
	if err != nil {
		return nil, fmt.Errorf("compile region prefix pattern: %w", err)
	}
	modifier, err := regexp.Compile(modifierPattern)
	if err != nil {
		return nil, fmt.Errorf("compile modifier pattern: %w", err)
	}
	return &UsageTypeParser{regionPrefix: regionPrefix, modifier: modifier}, nil
}

// IsInput reports whether a lowercased usagetype prices input tokens.
func IsInput(usagetype string) bool {
	return strings.Contains(usagetype, inputTokensSuffix)
}

// IsOutput reports whether a lowercased usagetype prices output tokens.
func IsOutput(usagetype string) bool {
	return strings.Contains(usagetype, outputTokensSuffix)
}

// ModelID strips the region prefix, the token direction and any modifier
// suffixes from a lowercased usagetype.
func (p *UsageTypeParser) ModelID(usagetype string) string {
	id := p.regionPrefix.ReplaceAllString(usagetype, "")
	id = strings.Replace(id, inputTokensSuffix, "", 1)
	id = strings.Replace(id, outputTokensSuffix, "", 1)
	return p.modifier.ReplaceAllString(id, "")
}
