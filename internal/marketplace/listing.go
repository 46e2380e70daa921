// ABOUTME: Marketplace listing metadata authored as TOML files
// ABOUTME: Loads with ${VAR} expansion so image URLs and prices can come from env

package marketplace

import (
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// Pricing models a listing may declare.
const (
	PricingFree         = "free"
	PricingOneTime      = "one_time"
	PricingSubscription = "subscription"
)

var pricingModels = []string{PricingFree, PricingOneTime, PricingSubscription}

// Listing is the free-text marketplace metadata that accompanies an agent
// blueprint. None of it affects how the agent runs; it exists to describe the
// agent to people browsing a catalog.
type Listing struct {
	Category         string   `toml:"category"`
	Tags             []string `toml:"tags"`
	PricingModel     string   `toml:"pricing_model"`
	PriceAmount      float64  `toml:"price_amount"`
	Currency         string   `toml:"currency"`
	FeaturedImageURL string   `toml:"featured_image_url"`
	Documentation    string   `toml:"documentation"`
	ExampleUsage     string   `toml:"example_usage"`
}

// LoadListing reads a listing from a TOML file, expanding ${VAR} references
// against the environment before decoding.
func LoadListing(path string) (*Listing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading listing file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	var listing Listing
	if _, err := toml.Decode(expanded, &listing); err != nil {
		return nil, fmt.Errorf("parsing listing: %w", err)
	}

	if listing.PricingModel == "" {
		listing.PricingModel = PricingFree
	}

	if err := listing.Validate(); err != nil {
		return nil, fmt.Errorf("validating listing: %w", err)
	}

	return &listing, nil
}

// expandEnvVars replaces ${VAR} with environment variable values.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)
	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		return os.Getenv(varName)
	})
}

// Validate checks that the listing is internally consistent.
func (l *Listing) Validate() error {
	if l.Category == "" {
		return fmt.Errorf("category is required")
	}
	if !slices.Contains(pricingModels, l.PricingModel) {
		return fmt.Errorf("unknown pricing_model %q (want one of %s)", l.PricingModel, strings.Join(pricingModels, ", "))
	}
	if l.PriceAmount < 0 {
		return fmt.Errorf("price_amount must not be negative")
	}
	if l.PricingModel == PricingFree && l.PriceAmount != 0 {
		return fmt.Errorf("free listings must have price_amount 0")
	}
	if l.PricingModel != PricingFree && l.Currency == "" {
		return fmt.Errorf("currency is required for paid listings")
	}
	for _, tag := range l.Tags {
		if strings.TrimSpace(tag) == "" {
			return fmt.Errorf("tags must not be blank")
		}
	}
	return nil
}
