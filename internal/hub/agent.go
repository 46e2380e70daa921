// ABOUTME: Agent handle over a remote hub resource: load, create, delete, state, info
// ABOUTME: A handle is bound to one publish attempt and is poisoned after Delete

package hub

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/2389/sigil/internal/blueprint"
)

// Agent is a local handle over a remote agent resource. It caches the last
// observed state for convenience, but the hub's copy is authoritative — use
// GetInfo for a fresh read. A handle is created either by CreateAgent (after
// a successful remote create) or LoadAgent (over an existing resource), and
// becomes permanently invalid after a successful Delete. A failed create
// leaves no handle behind.
type Agent struct {
	conn      *Connection
	identity  AgentIdentity
	blueprint *blueprint.AgentBlueprint // nil for loaded handles
	state     AgentState
	deleted   bool
}

// createAgentRequest is the JSON body for POST /api/v1/agents.
type createAgentRequest struct {
	ID          string                   `json:"id"`
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	Blueprint   blueprint.AgentBlueprint `json:"blueprint"`
}

// setStateRequest is the JSON body for PUT /api/v1/agents/{id}/state.
type setStateRequest struct {
	State AgentState `json:"state"`
}

// LoadAgent fetches an existing agent by id and wraps it in a handle.
// It fails with ErrNotFound when no resource with that id exists, and is
// otherwise read-only.
func LoadAgent(ctx context.Context, conn *Connection, id string) (*Agent, error) {
	var info AgentInfo
	if err := conn.doJSON(ctx, http.MethodGet, agentPath(id), nil, &info); err != nil {
		return nil, fmt.Errorf("loading agent %q: %w", id, err)
	}

	return &Agent{
		conn: conn,
		identity: AgentIdentity{
			ID:          info.ID,
			DisplayName: info.Name,
			Description: info.Description,
		},
		state: info.State,
	}, nil
}

// CreateAgent allocates a new remote agent from a blueprint. The hub enforces
// id uniqueness (ErrConflict) and resolves every tool, strategy, and trigger
// name in the blueprint (ErrValidation). The blueprint is deep-copied so the
// handle never aliases caller-owned maps.
func CreateAgent(ctx context.Context, conn *Connection, bp blueprint.AgentBlueprint, id, displayName, description string) (*Agent, error) {
	owned := bp.Clone()

	req := createAgentRequest{
		ID:          id,
		Name:        displayName,
		Description: description,
		Blueprint:   owned,
	}

	var summary AgentSummary
	if err := conn.doJSON(ctx, http.MethodPost, "/api/v1/agents", req, &summary); err != nil {
		return nil, fmt.Errorf("creating agent %q: %w", id, err)
	}

	return &Agent{
		conn: conn,
		identity: AgentIdentity{
			ID:          summary.ID,
			DisplayName: summary.Name,
			Description: summary.Description,
		},
		blueprint: &owned,
		state:     summary.State,
	}, nil
}

// ID returns the agent's stable identifier.
func (a *Agent) ID() string {
	return a.identity.ID
}

// Identity returns the identity the handle was created or loaded with.
func (a *Agent) Identity() AgentIdentity {
	return a.identity
}

// State returns the last state this handle observed. It may be stale; the
// hub's copy is authoritative.
func (a *Agent) State() AgentState {
	if a.deleted {
		return StateDeleted
	}
	return a.state
}

// Delete destroys the remote resource and all of its state. On success the
// handle is invalidated and must not be reused. Fails with ErrNotFound when
// the resource is already gone remotely; callers running a clean-slate
// workflow tolerate that outcome.
func (a *Agent) Delete(ctx context.Context) error {
	if a.deleted {
		return fmt.Errorf("deleting agent %q: %w", a.identity.ID, ErrInvalidHandle)
	}

	if err := a.conn.doJSON(ctx, http.MethodDelete, agentPath(a.identity.ID), nil, nil); err != nil {
		return fmt.Errorf("deleting agent %q: %w", a.identity.ID, err)
	}

	a.deleted = true
	return nil
}

// SetState asks the hub to move the agent to the target state. Valid moves
// are CREATED→RUNNING, RUNNING→PAUSED, and PAUSED→RUNNING; everything else —
// including any transition out of DELETED — fails with ErrInvalidTransition.
// The hub enforces the machine against its authoritative state; only the
// deleted-through-this-handle case is rejected locally.
func (a *Agent) SetState(ctx context.Context, target AgentState) error {
	if a.deleted {
		return fmt.Errorf("setting state of agent %q: %w: agent is deleted", a.identity.ID, ErrInvalidTransition)
	}
	if !target.IsValid() || target == StateDeleted {
		return fmt.Errorf("setting state of agent %q to %q: %w", a.identity.ID, target, ErrInvalidTransition)
	}

	var out struct {
		ID    string     `json:"id"`
		State AgentState `json:"state"`
	}
	if err := a.conn.doJSON(ctx, http.MethodPut, agentPath(a.identity.ID)+"/state", setStateRequest{State: target}, &out); err != nil {
		return fmt.Errorf("setting state of agent %q to %q: %w", a.identity.ID, target, err)
	}

	a.state = out.State
	return nil
}

// GetInfo reads a fresh snapshot of the agent from the hub. The cached state
// on the handle is refreshed as a side effect of the read.
func (a *Agent) GetInfo(ctx context.Context) (*AgentInfo, error) {
	if a.deleted {
		return nil, fmt.Errorf("describing agent %q: %w", a.identity.ID, ErrInvalidHandle)
	}

	var info AgentInfo
	if err := a.conn.doJSON(ctx, http.MethodGet, agentPath(a.identity.ID), nil, &info); err != nil {
		return nil, fmt.Errorf("describing agent %q: %w", a.identity.ID, err)
	}

	a.state = info.State
	return &info, nil
}

// Logs returns the agent's execution log entries, oldest first.
func (a *Agent) Logs(ctx context.Context) ([]LogEntry, error) {
	if a.deleted {
		return nil, fmt.Errorf("fetching logs of agent %q: %w", a.identity.ID, ErrInvalidHandle)
	}

	var out struct {
		AgentID string     `json:"agent_id"`
		Logs    []LogEntry `json:"logs"`
	}
	if err := a.conn.doJSON(ctx, http.MethodGet, agentPath(a.identity.ID)+"/logs", nil, &out); err != nil {
		return nil, fmt.Errorf("fetching logs of agent %q: %w", a.identity.ID, err)
	}
	return out.Logs, nil
}

// Webhook invokes the agent's webhook trigger with an arbitrary JSON payload
// and returns the hub's result envelope. The hub rejects the call unless the
// agent has a webhook trigger and is RUNNING.
func (a *Agent) Webhook(ctx context.Context, payload map[string]any) (map[string]any, error) {
	if a.deleted {
		return nil, fmt.Errorf("invoking webhook of agent %q: %w", a.identity.ID, ErrInvalidHandle)
	}

	var out map[string]any
	if err := a.conn.doJSON(ctx, http.MethodPost, agentPath(a.identity.ID)+"/webhook", payload, &out); err != nil {
		return nil, fmt.Errorf("invoking webhook of agent %q: %w", a.identity.ID, err)
	}
	return out, nil
}

// agentPath builds the API path for one agent, escaping the id.
func agentPath(id string) string {
	return "/api/v1/agents/" + url.PathEscape(id)
}
