// ABOUTME: Agent lifecycle states and the transition rules between them
// ABOUTME: The authoritative copy of a state lives in the hub; handles only cache it

package hub

// AgentState is the lifecycle state of a remote agent. The hub owns the
// authoritative value; a handle's cached copy must not be trusted stale.
type AgentState string

const (
	StateCreated AgentState = "CREATED"
	StateRunning AgentState = "RUNNING"
	StatePaused  AgentState = "PAUSED"
	StateDeleted AgentState = "DELETED"
)

// IsValid returns true if the state is a recognized lifecycle state.
func (s AgentState) IsValid() bool {
	switch s {
	case StateCreated, StateRunning, StatePaused, StateDeleted:
		return true
	default:
		return false
	}
}

// IsTerminal returns true for DELETED, which no transition leaves.
func (s AgentState) IsTerminal() bool {
	return s == StateDeleted
}

// CanTransition reports whether SetState may move an agent from s to target.
// DELETED is reachable only through Delete, never through SetState.
func (s AgentState) CanTransition(target AgentState) bool {
	switch s {
	case StateCreated:
		return target == StateRunning
	case StateRunning:
		return target == StatePaused
	case StatePaused:
		return target == StateRunning
	default:
		return false
	}
}

// String returns the string representation of the state.
func (s AgentState) String() string {
	return string(s)
}
