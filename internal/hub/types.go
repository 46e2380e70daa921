// ABOUTME: Identity and read-model types exchanged with the hub API
// ABOUTME: JSON shapes here must stay in sync with the hub server handlers

package hub

import "time"

// AgentIdentity is the stable identity of an agent within the hub namespace.
// The ID is the sole idempotency key joining local intent to the remote
// resource; display name and description are presentation fields.
type AgentIdentity struct {
	ID          string `json:"id" yaml:"id"`
	DisplayName string `json:"display_name" yaml:"display_name"`
	Description string `json:"description" yaml:"description"`
}

// AgentSummary is one row of a hub agent listing.
type AgentSummary struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	State       AgentState `json:"state"`
}

// AgentInfo is a point-in-time snapshot of a remote agent, read fresh from
// the hub rather than from any local cache.
type AgentInfo struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	State        AgentState `json:"state"`
	ToolCount    int        `json:"tool_count"`
	StrategyName string     `json:"strategy_name"`
	TriggerType  string     `json:"trigger_type"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// LogEntry is one line of an agent's execution log.
type LogEntry struct {
	ID        string    `json:"id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// ToolDescriptor describes a tool the hub can resolve.
type ToolDescriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// StrategyDescriptor describes a strategy the hub can resolve.
type StrategyDescriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
