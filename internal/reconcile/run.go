// ABOUTME: One-shot publish entry point that owns the connection lifecycle
// ABOUTME: Config carries everything a publish needs; no package-level state

package reconcile

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/2389/sigil/internal/blueprint"
	"github.com/2389/sigil/internal/hub"
)

// Config is the complete input to one publish run. Every field is explicit —
// there are no package-level defaults to mutate.
type Config struct {
	// Endpoint is the hub base URL, e.g. "http://localhost:8420".
	Endpoint string

	// Identity names the agent being published. ID is the idempotency key.
	Identity hub.AgentIdentity

	// Blueprint is the desired agent configuration.
	Blueprint blueprint.AgentBlueprint

	// Timeout bounds each hub request. Zero means hub.DefaultTimeout.
	Timeout time.Duration
}

// Validate reports the first problem that would make a run pointless.
func (c Config) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("hub endpoint is required")
	}
	if c.Identity.ID == "" {
		return fmt.Errorf("agent id is required")
	}
	return c.Blueprint.Validate()
}

// Run opens a connection to the hub, publishes the configured agent, and
// closes the connection on every path. It is the programmatic equivalent of
// `sigil publish`.
func Run(ctx context.Context, cfg Config, logger *slog.Logger) (*hub.AgentInfo, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid publish config: %w", err)
	}

	var opts []hub.Option
	if cfg.Timeout > 0 {
		opts = append(opts, hub.WithTimeout(cfg.Timeout))
	}

	conn, err := hub.Open(ctx, cfg.Endpoint, opts...)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	return New(conn, logger).Publish(ctx, cfg.Identity, cfg.Blueprint)
}
