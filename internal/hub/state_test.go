// ABOUTME: Tests for the agent state machine transition rules
// ABOUTME: Exhaustive over the state pairs the lifecycle permits and forbids

package hub

import "testing"

func TestAgentState_IsValid(t *testing.T) {
	for _, s := range []AgentState{StateCreated, StateRunning, StatePaused, StateDeleted} {
		if !s.IsValid() {
			t.Errorf("%s should be valid", s)
		}
	}
	for _, s := range []AgentState{"", "created", "SLEEPING", "RUNNING "} {
		if s.IsValid() {
			t.Errorf("%q should not be valid", s)
		}
	}
}

func TestAgentState_CanTransition(t *testing.T) {
	allowed := map[AgentState]AgentState{
		StateCreated: StateRunning,
		StateRunning: StatePaused,
		StatePaused:  StateRunning,
	}

	states := []AgentState{StateCreated, StateRunning, StatePaused, StateDeleted}
	for _, from := range states {
		for _, to := range states {
			want := allowed[from] == to
			if got := from.CanTransition(to); got != want {
				t.Errorf("CanTransition(%s -> %s) = %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestAgentState_DeletedIsTerminal(t *testing.T) {
	if !StateDeleted.IsTerminal() {
		t.Error("DELETED should be terminal")
	}
	for _, s := range []AgentState{StateCreated, StateRunning, StatePaused} {
		if s.IsTerminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
	for _, to := range []AgentState{StateCreated, StateRunning, StatePaused, StateDeleted} {
		if StateDeleted.CanTransition(to) {
			t.Errorf("DELETED must not transition to %s", to)
		}
	}
}
