package config

// ReferencesConfig overrides the built-in reference pricing index.
// An empty section keeps the built-in tables.
type ReferencesConfig struct {
	Providers         map[string][]string `yaml:"providers"`
	WithoutAPIPricing []string            `yaml:"without_api_pricing"`
	VendorPricingURL  string              `yaml:"vendor_pricing_url"`
}
