// ABOUTME: Idempotent publish workflow: load, delete stale, create, start, describe
// ABOUTME: Recovers only absence of a prior agent; every other failure surfaces

package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/2389/sigil/internal/blueprint"
	"github.com/2389/sigil/internal/hub"
)

// Reconciler drives one agent identity toward a desired blueprint on an open
// hub connection. It is a linear, blocking workflow: each step waits for the
// hub before the next runs, and nothing is shared across goroutines.
type Reconciler struct {
	conn   *hub.Connection
	logger *slog.Logger
}

// New creates a Reconciler over an established connection.
func New(conn *hub.Connection, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{
		conn:   conn,
		logger: logger.With("component", "reconcile"),
	}
}

// Publish makes the hub's resource set match the blueprint under the given
// identity: exactly one agent exists under identity.ID afterwards, RUNNING,
// configured from this blueprint alone. Any prior agent under the id is
// deleted first — there is no in-place update, so repeated publishes converge
// by replacement, at the cost of a transient window with no resource.
//
// Only the absence of a prior agent is recovered (on the initial load, and on
// the cleanup delete if the agent vanished in between). Every other failure
// returns to the caller with the resource left in the last state a successful
// step produced: a create failure leaves nothing behind, a start failure
// leaves the new agent in CREATED.
func (r *Reconciler) Publish(ctx context.Context, identity hub.AgentIdentity, bp blueprint.AgentBlueprint) (*hub.AgentInfo, error) {
	if identity.ID == "" {
		return nil, fmt.Errorf("publish: agent id is required")
	}
	if err := bp.Validate(); err != nil {
		return nil, fmt.Errorf("publish: %w", err)
	}

	logger := r.logger.With("agent_id", identity.ID)
	logger.Info("publishing agent",
		"display_name", identity.DisplayName,
		"tools", len(bp.Tools),
		"strategy", bp.Strategy.Name,
		"trigger", bp.Trigger.Type)

	// Step 1: clear any stale agent under this id.
	existing, err := hub.LoadAgent(ctx, r.conn, identity.ID)
	switch {
	case err == nil:
		logger.Info("replacing existing agent", "state", existing.State())
		if err := existing.Delete(ctx); err != nil && !errors.Is(err, hub.ErrNotFound) {
			return nil, fmt.Errorf("removing stale agent: %w", err)
		}
	case errors.Is(err, hub.ErrNotFound):
		logger.Debug("no existing agent, nothing to clean up")
	default:
		return nil, fmt.Errorf("checking for existing agent: %w", err)
	}

	// Step 2: create from the blueprint. A conflict here means a concurrent
	// writer claimed the id after our delete; that is the caller's call to
	// make, never silently resolved here.
	agent, err := hub.CreateAgent(ctx, r.conn, bp, identity.ID, identity.DisplayName, identity.Description)
	if err != nil {
		return nil, err
	}
	logger.Info("agent created", "state", agent.State())

	// Step 3: start it. On failure the agent stays CREATED; no rollback.
	if err := agent.SetState(ctx, hub.StateRunning); err != nil {
		return nil, fmt.Errorf("starting agent: %w", err)
	}

	// Step 4: report what the hub actually holds, not what we assume.
	info, err := agent.GetInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading published agent: %w", err)
	}

	logger.Info("publish complete",
		"state", info.State,
		"tool_count", info.ToolCount,
		"strategy", info.StrategyName)
	return info, nil
}

// ListAgents returns the hub's current agent set. Read-only companion to
// Publish for callers that want to inspect the result.
func (r *Reconciler) ListAgents(ctx context.Context) ([]hub.AgentSummary, error) {
	return r.conn.ListAgents(ctx)
}
