// Package hubserver implements a self-contained hub an agent publisher can
// target: the same HTTP API a production hub exposes, backed by SQLite and
// the builtin tool/strategy catalog.
//
// # Overview
//
// The server exposes the agent lifecycle under /api/v1:
//
//	GET    /api/v1/ping                 handshake probe
//	GET    /api/v1/agents               list agents
//	POST   /api/v1/agents               create an agent from a blueprint
//	GET    /api/v1/agents/{id}          read one agent
//	DELETE /api/v1/agents/{id}          hard-delete an agent and its logs
//	PUT    /api/v1/agents/{id}/state    drive the state machine
//	GET    /api/v1/agents/{id}/logs     read execution logs
//	POST   /api/v1/agents/{id}/webhook  invoke a webhook-triggered agent
//	GET    /api/v1/tools                list the tool catalog
//	GET    /api/v1/strategies           list the strategy catalog
//	GET    /health                      liveness probe
//
// # Validation
//
// Creation validates the blueprint twice: structurally (unique tool names,
// one strategy, a recognized trigger) and against the catalog (every tool
// and strategy must resolve, and each config must satisfy its JSON schema).
// Rejections carry code "validation" with the first failure's message.
//
// # State machine
//
// Agents are created in CREATED and move RUNNING <-> PAUSED via the state
// endpoint. DELETED is never a legal target there; it is only reachable via
// DELETE, which removes the row outright. Illegal moves get a 409 with code
// "invalid_transition" and leave the stored state untouched.
//
// # Errors
//
// Non-2xx responses carry a JSON envelope {"error": ..., "code": ...} whose
// code the hub client maps back onto its sentinel errors.
package hubserver
