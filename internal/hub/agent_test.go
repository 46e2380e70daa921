// ABOUTME: Tests for the Agent handle: load, create, delete, state, info, logs
// ABOUTME: Covers poisoned-handle behavior after delete and error pass-through

package hub

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/sigil/internal/blueprint"
)

// testBlueprint returns a small valid blueprint for handle tests.
func testBlueprint() blueprint.AgentBlueprint {
	return blueprint.AgentBlueprint{
		Tools: []blueprint.ToolSpec{
			{Name: "ping", Config: map[string]any{}},
			{Name: "llm_chat", Config: map[string]any{"temperature": 0.2}},
		},
		Strategy: blueprint.StrategySpec{Name: "plan_execute", Config: map[string]any{}},
		Trigger:  blueprint.TriggerSpec{Type: blueprint.TriggerWebhook, Params: map[string]any{}},
	}
}

// writeWireError writes the hub's JSON error envelope.
func writeWireError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg, "code": code})
}

// --- LoadAgent Tests ---

func TestLoadAgent_Success(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/agents/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "juliaxbt-investigator", r.PathValue("id"))
		json.NewEncoder(w).Encode(AgentInfo{
			ID:          "juliaxbt-investigator",
			Name:        "JuliaXBT Investigator",
			Description: "On-chain investigation agent",
			State:       StatePaused,
			ToolCount:   3,
		})
	})
	srv := newTestHub(t, mux)
	conn := openTestConnection(t, srv)

	agent, err := LoadAgent(context.Background(), conn, "juliaxbt-investigator")
	require.NoError(t, err)

	assert.Equal(t, "juliaxbt-investigator", agent.ID())
	assert.Equal(t, "JuliaXBT Investigator", agent.Identity().DisplayName)
	assert.Equal(t, StatePaused, agent.State())
}

func TestLoadAgent_NotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/agents/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeWireError(w, http.StatusNotFound, CodeNotFound, "agent not found")
	})
	srv := newTestHub(t, mux)
	conn := openTestConnection(t, srv)

	agent, err := LoadAgent(context.Background(), conn, "ghost")
	require.Error(t, err)
	assert.Nil(t, agent)
	assert.True(t, errors.Is(err, ErrNotFound))
}

// --- CreateAgent Tests ---

func TestCreateAgent_Success(t *testing.T) {
	var got createAgentRequest
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/agents", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(AgentSummary{
			ID:          got.ID,
			Name:        got.Name,
			Description: got.Description,
			State:       StateCreated,
		})
	})
	srv := newTestHub(t, mux)
	conn := openTestConnection(t, srv)

	agent, err := CreateAgent(context.Background(), conn, testBlueprint(), "inv-1", "Investigator", "Traces funds")
	require.NoError(t, err)

	// The wire request carries identity plus the full blueprint.
	assert.Equal(t, "inv-1", got.ID)
	assert.Equal(t, "Investigator", got.Name)
	assert.Equal(t, "Traces funds", got.Description)
	assert.Len(t, got.Blueprint.Tools, 2)
	assert.Equal(t, "plan_execute", got.Blueprint.Strategy.Name)

	// A fresh handle starts in the hub-assigned state.
	assert.Equal(t, StateCreated, agent.State())
	assert.Equal(t, "inv-1", agent.ID())
}

func TestCreateAgent_Conflict(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/agents", func(w http.ResponseWriter, r *http.Request) {
		writeWireError(w, http.StatusConflict, CodeAgentExists, "agent id already in use")
	})
	srv := newTestHub(t, mux)
	conn := openTestConnection(t, srv)

	agent, err := CreateAgent(context.Background(), conn, testBlueprint(), "inv-1", "Investigator", "")
	require.Error(t, err)
	assert.Nil(t, agent, "failed create must not produce a handle")
	assert.True(t, errors.Is(err, ErrConflict))
}

func TestCreateAgent_ValidationRejected(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/agents", func(w http.ResponseWriter, r *http.Request) {
		writeWireError(w, http.StatusUnprocessableEntity, CodeValidation, "unknown tool: warp_drive")
	})
	srv := newTestHub(t, mux)
	conn := openTestConnection(t, srv)

	agent, err := CreateAgent(context.Background(), conn, testBlueprint(), "inv-1", "Investigator", "")
	require.Error(t, err)
	assert.Nil(t, agent)
	assert.True(t, errors.Is(err, ErrValidation))
	assert.Contains(t, err.Error(), "warp_drive")
}

func TestCreateAgent_ClonesBlueprint(t *testing.T) {
	var got createAgentRequest
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/agents", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(AgentSummary{ID: got.ID, Name: got.Name, State: StateCreated})
	})
	srv := newTestHub(t, mux)
	conn := openTestConnection(t, srv)

	bp := testBlueprint()
	_, err := CreateAgent(context.Background(), conn, bp, "inv-1", "Investigator", "")
	require.NoError(t, err)

	// Mutating the caller's config after the call must not reach the handle's copy.
	bp.Tools[1].Config["temperature"] = 9.9
	assert.Equal(t, 0.2, got.Blueprint.Tools[1].Config["temperature"])
}

// --- SetState Tests ---

func TestAgent_SetState(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/agents", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(AgentSummary{ID: "inv-1", State: StateCreated})
	})
	mux.HandleFunc("PUT /api/v1/agents/{id}/state", func(w http.ResponseWriter, r *http.Request) {
		var req setStateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, StateRunning, req.State)
		json.NewEncoder(w).Encode(map[string]any{"id": r.PathValue("id"), "state": req.State})
	})
	srv := newTestHub(t, mux)
	conn := openTestConnection(t, srv)

	agent, err := CreateAgent(context.Background(), conn, testBlueprint(), "inv-1", "Investigator", "")
	require.NoError(t, err)

	require.NoError(t, agent.SetState(context.Background(), StateRunning))
	assert.Equal(t, StateRunning, agent.State(), "cached state should track a successful transition")
}

func TestAgent_SetState_HubRejectsTransition(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/agents/{id}", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(AgentInfo{ID: "inv-1", State: StateCreated})
	})
	mux.HandleFunc("PUT /api/v1/agents/{id}/state", func(w http.ResponseWriter, r *http.Request) {
		writeWireError(w, http.StatusConflict, CodeInvalidTransition, "cannot move CREATED to PAUSED")
	})
	srv := newTestHub(t, mux)
	conn := openTestConnection(t, srv)

	agent, err := LoadAgent(context.Background(), conn, "inv-1")
	require.NoError(t, err)

	err = agent.SetState(context.Background(), StatePaused)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Equal(t, StateCreated, agent.State(), "rejected transition must leave cached state unchanged")
}

func TestAgent_SetState_RejectsDeletedTarget(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/agents/{id}", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(AgentInfo{ID: "inv-1", State: StateRunning})
	})
	srv := newTestHub(t, mux)
	conn := openTestConnection(t, srv)

	agent, err := LoadAgent(context.Background(), conn, "inv-1")
	require.NoError(t, err)

	// DELETED is reachable only through Delete; no request should be made.
	err = agent.SetState(context.Background(), StateDeleted)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	err = agent.SetState(context.Background(), AgentState("SLEEPING"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))
}

// --- Delete Tests ---

func TestAgent_Delete_PoisonsHandle(t *testing.T) {
	deletes := 0
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/agents/{id}", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(AgentInfo{ID: "inv-1", State: StateRunning})
	})
	mux.HandleFunc("DELETE /api/v1/agents/{id}", func(w http.ResponseWriter, r *http.Request) {
		deletes++
		json.NewEncoder(w).Encode(map[string]string{"id": r.PathValue("id"), "status": "deleted"})
	})
	srv := newTestHub(t, mux)
	conn := openTestConnection(t, srv)

	agent, err := LoadAgent(context.Background(), conn, "inv-1")
	require.NoError(t, err)

	require.NoError(t, agent.Delete(context.Background()))
	assert.Equal(t, 1, deletes)
	assert.Equal(t, StateDeleted, agent.State())

	// Every transition out of DELETED is invalid, including back to RUNNING.
	err = agent.SetState(context.Background(), StateRunning)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	// Other operations on the poisoned handle fail without touching the hub.
	_, err = agent.GetInfo(context.Background())
	assert.True(t, errors.Is(err, ErrInvalidHandle))

	_, err = agent.Logs(context.Background())
	assert.True(t, errors.Is(err, ErrInvalidHandle))

	err = agent.Delete(context.Background())
	assert.True(t, errors.Is(err, ErrInvalidHandle))

	assert.Equal(t, 1, deletes, "no further requests after the handle is poisoned")
}

func TestAgent_Delete_RemoteAlreadyGone(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/agents/{id}", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(AgentInfo{ID: "inv-1", State: StatePaused})
	})
	mux.HandleFunc("DELETE /api/v1/agents/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeWireError(w, http.StatusNotFound, CodeNotFound, "agent not found")
	})
	srv := newTestHub(t, mux)
	conn := openTestConnection(t, srv)

	agent, err := LoadAgent(context.Background(), conn, "inv-1")
	require.NoError(t, err)

	err = agent.Delete(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound), "absence during delete surfaces as ErrNotFound for callers to tolerate")
}

// --- GetInfo / Logs / Webhook Tests ---

func TestAgent_GetInfo_RefreshesCachedState(t *testing.T) {
	state := StateCreated
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/agents/{id}", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(AgentInfo{
			ID:           "inv-1",
			Name:         "Investigator",
			State:        state,
			ToolCount:    2,
			StrategyName: "plan_execute",
			TriggerType:  "webhook",
			CreatedAt:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		})
	})
	srv := newTestHub(t, mux)
	conn := openTestConnection(t, srv)

	agent, err := LoadAgent(context.Background(), conn, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, StateCreated, agent.State())

	// Hub-side state moves without this handle's involvement.
	state = StateRunning

	info, err := agent.GetInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateRunning, info.State)
	assert.Equal(t, 2, info.ToolCount)
	assert.Equal(t, "plan_execute", info.StrategyName)
	assert.Equal(t, StateRunning, agent.State(), "GetInfo refreshes the cache")
}

func TestAgent_Logs(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/agents/{id}", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(AgentInfo{ID: "inv-1", State: StateRunning})
	})
	mux.HandleFunc("GET /api/v1/agents/{id}/logs", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"agent_id": "inv-1",
			"logs": []LogEntry{
				{ID: "1", Message: "agent created"},
				{ID: "2", Message: "state changed to RUNNING"},
			},
		})
	})
	srv := newTestHub(t, mux)
	conn := openTestConnection(t, srv)

	agent, err := LoadAgent(context.Background(), conn, "inv-1")
	require.NoError(t, err)

	logs, err := agent.Logs(context.Background())
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "agent created", logs[0].Message)
}

func TestAgent_Webhook(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/agents/{id}", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(AgentInfo{ID: "inv-1", State: StateRunning})
	})
	mux.HandleFunc("POST /api/v1/agents/{id}/webhook", func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "investigate", payload["command"])
		json.NewEncoder(w).Encode(map[string]any{"status": "accepted", "agent_id": "inv-1"})
	})
	srv := newTestHub(t, mux)
	conn := openTestConnection(t, srv)

	agent, err := LoadAgent(context.Background(), conn, "inv-1")
	require.NoError(t, err)

	result, err := agent.Webhook(context.Background(), map[string]any{"command": "investigate"})
	require.NoError(t, err)
	assert.Equal(t, "accepted", result["status"])
}
