// ABOUTME: Assembles a marketplace record from identity, blueprint, and listing
// ABOUTME: Submission is an explicit not-yet-available boundary, never a fake success

package marketplace

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yuin/goldmark"

	"github.com/2389/sigil/internal/blueprint"
	"github.com/2389/sigil/internal/hub"
)

// ErrNotAvailable is returned by Submit: the hub exposes no marketplace
// endpoint yet, and pretending otherwise would hide a missing integration.
var ErrNotAvailable = errors.New("marketplace submission not available")

// Record is a fully assembled marketplace listing for one agent, ready to
// hand to a catalog once one exists. DocumentationHTML is a rendered preview
// of the markdown documentation.
type Record struct {
	AgentID     string `json:"agent_id"`
	DisplayName string `json:"display_name"`
	Description string `json:"description"`

	Category         string   `json:"category"`
	Tags             []string `json:"tags"`
	PricingModel     string   `json:"pricing_model"`
	PriceAmount      float64  `json:"price_amount"`
	Currency         string   `json:"currency"`
	FeaturedImageURL string   `json:"featured_image_url"`

	Documentation     string `json:"documentation"`
	DocumentationHTML string `json:"documentation_html"`
	ExampleUsage      string `json:"example_usage"`

	ToolNames    []string `json:"tool_names"`
	ToolCount    int      `json:"tool_count"`
	StrategyName string   `json:"strategy_name"`
	TriggerType  string   `json:"trigger_type"`

	PackagedAt time.Time `json:"packaged_at"`
}

// Package assembles a marketplace record. The blueprint supplies the
// technical summary (tools, strategy, trigger) and the listing supplies the
// human-facing metadata. Neither input is mutated.
func Package(identity hub.AgentIdentity, bp blueprint.AgentBlueprint, listing Listing) (*Record, error) {
	if identity.ID == "" {
		return nil, fmt.Errorf("packaging listing: agent id is required")
	}
	if err := bp.Validate(); err != nil {
		return nil, fmt.Errorf("packaging listing: %w", err)
	}
	if err := listing.Validate(); err != nil {
		return nil, fmt.Errorf("packaging listing: %w", err)
	}

	var htmlBuf bytes.Buffer
	if err := goldmark.Convert([]byte(listing.Documentation), &htmlBuf); err != nil {
		return nil, fmt.Errorf("rendering documentation: %w", err)
	}

	return &Record{
		AgentID:     identity.ID,
		DisplayName: identity.DisplayName,
		Description: identity.Description,

		Category:         listing.Category,
		Tags:             append([]string(nil), listing.Tags...),
		PricingModel:     listing.PricingModel,
		PriceAmount:      listing.PriceAmount,
		Currency:         listing.Currency,
		FeaturedImageURL: listing.FeaturedImageURL,

		Documentation:     listing.Documentation,
		DocumentationHTML: htmlBuf.String(),
		ExampleUsage:      listing.ExampleUsage,

		ToolNames:    bp.ToolNames(),
		ToolCount:    len(bp.Tools),
		StrategyName: bp.Strategy.Name,
		TriggerType:  string(bp.Trigger.Type),

		PackagedAt: time.Now().UTC(),
	}, nil
}

// Submit would push a record to the hub's marketplace. No such endpoint
// exists yet, so this always fails with ErrNotAvailable. The connection
// argument pins the eventual call shape.
func Submit(ctx context.Context, conn *hub.Connection, record *Record) error {
	if record == nil {
		return fmt.Errorf("submitting listing: record is nil")
	}
	return fmt.Errorf("submitting listing for %q: %w", record.AgentID, ErrNotAvailable)
}
