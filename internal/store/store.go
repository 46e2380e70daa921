// ABOUTME: Store interface and data types for sigil-hub persistence
// ABOUTME: Defines Agent, AgentLog structs and the Store interface for database operations

package store

import (
	"context"
	"errors"
	"time"

	"github.com/2389/sigil/internal/hub"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrDuplicateAgent is returned when trying to create an agent under an id
// that already exists
var ErrDuplicateAgent = errors.New("agent already exists")

// Agent is one registered agent resource as the hub persists it. Blueprint
// holds the JSON-serialized blueprint the agent was created from; the
// denormalized summary columns exist so listings never re-parse it.
type Agent struct {
	ID          string
	Name        string
	Description string
	State       hub.AgentState

	Blueprint    []byte
	ToolCount    int
	StrategyName string
	TriggerType  string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// AgentLog is one line of an agent's execution log.
type AgentLog struct {
	ID        string
	AgentID   string
	Message   string
	CreatedAt time.Time
}

// Store defines the persistence operations the hub needs.
type Store interface {
	// CreateAgent inserts a new agent. Returns ErrDuplicateAgent if the id
	// is already taken.
	CreateAgent(ctx context.Context, agent *Agent) error

	// GetAgent retrieves an agent by id. Returns ErrNotFound if absent.
	GetAgent(ctx context.Context, id string) (*Agent, error)

	// ListAgents returns all agents ordered by creation time.
	ListAgents(ctx context.Context) ([]*Agent, error)

	// UpdateAgentState moves an agent to a new state and bumps updated_at.
	// Returns ErrNotFound if the agent doesn't exist.
	UpdateAgentState(ctx context.Context, id string, state hub.AgentState) error

	// DeleteAgent removes an agent and its logs. Returns ErrNotFound if the
	// agent doesn't exist.
	DeleteAgent(ctx context.Context, id string) error

	// AppendLog records one log line for an agent.
	AppendLog(ctx context.Context, entry *AgentLog) error

	// GetAgentLogs returns an agent's log entries, oldest first, up to limit
	// (0 means no limit). Returns ErrNotFound if the agent doesn't exist.
	GetAgentLogs(ctx context.Context, agentID string, limit int) ([]*AgentLog, error)

	// Close releases the underlying database.
	Close() error
}
