// Package hub is the client SDK for the sigil hub's HTTP API.
//
// # Overview
//
// The hub package wraps the hub's REST surface (mounted under /api/v1) in two
// types: Connection, a validated session against one hub endpoint, and Agent,
// a handle over one remote agent resource. All calls take a context and
// return explicit errors; nothing retries internally.
//
// # Connection
//
// Open performs a handshake against the hub before returning, so a
// Connection in hand means the endpoint was reachable and answered:
//
//	conn, err := hub.Open(ctx, "http://localhost:8420")
//	if err != nil {
//	    return fmt.Errorf("hub unreachable: %w", err)
//	}
//	defer conn.Close()
//
// Connection also carries the catalog reads (ListAgents, ListTools,
// ListStrategies) that are not scoped to a single agent.
//
// # Agent Handles
//
// A handle is obtained one of two ways:
//
//   - hub.LoadAgent(ctx, conn, id) wraps an existing remote agent, failing
//     with ErrNotFound when the id is unknown.
//   - hub.CreateAgent(ctx, conn, bp, id, name, description) allocates a new
//     remote agent from a blueprint, failing with ErrConflict when the id is
//     taken and ErrValidation when the blueprint names unknown components.
//
// The handle's methods (Delete, SetState, GetInfo, Logs, Webhook) operate on
// that one resource. After a successful Delete the handle is poisoned:
// SetState reports ErrInvalidTransition and every other method reports
// ErrInvalidHandle.
//
// # State Machine
//
// Agents move through CREATED → RUNNING ⇄ PAUSED, with DELETED as the
// terminal state reachable only through Delete. The hub is authoritative;
// the cached State() on a handle is a convenience and may be stale.
//
// # Errors
//
// Remote failures surface as *APIError values that unwrap to the package
// sentinels, so callers branch with errors.Is:
//
//	if err := agent.SetState(ctx, hub.StateRunning); err != nil {
//	    if errors.Is(err, hub.ErrInvalidTransition) {
//	        // illegal move, resource unchanged
//	    }
//	}
//
// Transport-level failures (dial errors, timeouts) wrap ErrConnection
// instead, since no HTTP status ever arrived.
package hub
