// ABOUTME: Tests for the idempotent publish workflow against a scripted hub
// ABOUTME: Covers idempotence, clean-slate replacement, and failure short-circuits

package reconcile

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/sigil/internal/blueprint"
	"github.com/2389/sigil/internal/hub"
)

func testIdentity() hub.AgentIdentity {
	return hub.AgentIdentity{
		ID:          "juliaxbt-investigator",
		DisplayName: "JuliaXBT Investigator",
		Description: "Traces fund flows across chains",
	}
}

// toolsBlueprint builds a valid blueprint with n distinct tools.
func toolsBlueprint(n int) blueprint.AgentBlueprint {
	tools := make([]blueprint.ToolSpec, n)
	for i := range tools {
		tools[i] = blueprint.ToolSpec{
			Name:   fmt.Sprintf("tool_%d", i),
			Config: map[string]any{"slot": i},
		}
	}
	return blueprint.AgentBlueprint{
		Tools:    tools,
		Strategy: blueprint.StrategySpec{Name: "plan_execute", Config: map[string]any{}},
		Trigger:  blueprint.TriggerSpec{Type: blueprint.TriggerWebhook, Params: map[string]any{}},
	}
}

// openConn opens a real Connection against the fake hub.
func openConn(t *testing.T, url string) *hub.Connection {
	t.Helper()
	conn, err := hub.Open(context.Background(), url)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// --- Happy Path ---

func TestPublish_FreshIdentity(t *testing.T) {
	fake := newFakeHub()
	conn := openConn(t, fake.start(t))

	// No prior resource: absence must be absorbed, never surfaced.
	info, err := New(conn, nil).Publish(context.Background(), testIdentity(), toolsBlueprint(2))
	require.NoError(t, err)

	assert.Equal(t, "juliaxbt-investigator", info.ID)
	assert.Equal(t, hub.StateRunning, info.State)
	assert.Equal(t, 2, info.ToolCount)
	assert.Equal(t, "plan_execute", info.StrategyName)
	assert.Equal(t, "webhook", info.TriggerType)
	assert.Equal(t, 1, fake.agentCount())

	// load (absent) -> create -> start -> describe; no delete issued.
	assert.Equal(t, []string{
		"load juliaxbt-investigator",
		"create",
		"set_state juliaxbt-investigator",
		"load juliaxbt-investigator",
	}, fake.callLog())
}

func TestPublish_Idempotent(t *testing.T) {
	fake := newFakeHub()
	conn := openConn(t, fake.start(t))
	r := New(conn, nil)

	first, err := r.Publish(context.Background(), testIdentity(), toolsBlueprint(2))
	require.NoError(t, err)

	second, err := r.Publish(context.Background(), testIdentity(), toolsBlueprint(2))
	require.NoError(t, err, "second publish of the same identity must not fail with already-exists")

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, hub.StateRunning, second.State)
	assert.Equal(t, 2, second.ToolCount)
	assert.Equal(t, 1, fake.agentCount(), "repeat publish must not leave duplicates")
}

func TestPublish_ReplacesExisting(t *testing.T) {
	fake := newFakeHub()
	conn := openConn(t, fake.start(t))
	r := New(conn, nil)

	_, err := r.Publish(context.Background(), testIdentity(), toolsBlueprint(2))
	require.NoError(t, err)
	firstCreated := fake.agent("juliaxbt-investigator").info.CreatedAt

	info, err := r.Publish(context.Background(), testIdentity(), toolsBlueprint(5))
	require.NoError(t, err)

	// The old two-tool resource is discarded wholesale, not merged into.
	assert.Equal(t, 5, info.ToolCount)
	assert.Equal(t, 1, fake.agentCount())

	rec := fake.agent("juliaxbt-investigator")
	require.NotNil(t, rec)
	assert.Len(t, rec.bp.Tools, 5)
	assert.False(t, rec.info.CreatedAt.Before(firstCreated), "replacement must be a fresh resource")
}

func TestPublish_ListAgents(t *testing.T) {
	fake := newFakeHub()
	conn := openConn(t, fake.start(t))
	r := New(conn, nil)

	_, err := r.Publish(context.Background(), testIdentity(), toolsBlueprint(1))
	require.NoError(t, err)

	agents, err := r.ListAgents(context.Background())
	require.NoError(t, err)
	require.Len(t, agents, 1)
	assert.Equal(t, "juliaxbt-investigator", agents[0].ID)
	assert.Equal(t, hub.StateRunning, agents[0].State)
}

// --- Failure Policy ---

func TestPublish_ConflictFailsFast(t *testing.T) {
	fake := newFakeHub()
	fake.rejectCreate = func() (int, string, string) {
		return http.StatusConflict, hub.CodeAgentExists, "agent id already in use"
	}
	conn := openConn(t, fake.start(t))

	_, err := New(conn, nil).Publish(context.Background(), testIdentity(), toolsBlueprint(2))
	require.Error(t, err)
	assert.True(t, errors.Is(err, hub.ErrConflict), "conflict must surface unmodified, got %v", err)

	// The workflow stops at the failed create: no start is attempted.
	for _, call := range fake.callLog() {
		assert.NotContains(t, call, "set_state")
	}
}

func TestPublish_ValidationSurfaced(t *testing.T) {
	fake := newFakeHub()
	fake.rejectCreate = func() (int, string, string) {
		return http.StatusUnprocessableEntity, hub.CodeValidation, "unknown strategy: warp"
	}
	conn := openConn(t, fake.start(t))

	_, err := New(conn, nil).Publish(context.Background(), testIdentity(), toolsBlueprint(2))
	require.Error(t, err)
	assert.True(t, errors.Is(err, hub.ErrValidation))
	assert.Contains(t, err.Error(), "warp")
	assert.Equal(t, 0, fake.agentCount(), "failed create leaves nothing behind")
}

func TestPublish_ConnectionFailureAtLoad(t *testing.T) {
	fake := newFakeHub()
	fake.dropLoad = true
	conn := openConn(t, fake.start(t))

	_, err := New(conn, nil).Publish(context.Background(), testIdentity(), toolsBlueprint(2))
	require.Error(t, err)
	assert.True(t, errors.Is(err, hub.ErrConnection), "transport failure must map to the connection sentinel, got %v", err)

	// Unreachable at the load step means nothing further is attempted.
	assert.Equal(t, []string{"load juliaxbt-investigator"}, fake.callLog())
}

func TestPublish_StartFailureLeavesCreated(t *testing.T) {
	fake := newFakeHub()
	fake.rejectState = func() (int, string, string) {
		return http.StatusConflict, hub.CodeInvalidTransition, "transition not allowed"
	}
	conn := openConn(t, fake.start(t))

	_, err := New(conn, nil).Publish(context.Background(), testIdentity(), toolsBlueprint(2))
	require.Error(t, err)
	assert.True(t, errors.Is(err, hub.ErrInvalidTransition))

	// No rollback: the created resource stays, parked in CREATED.
	rec := fake.agent("juliaxbt-investigator")
	require.NotNil(t, rec)
	assert.Equal(t, hub.StateCreated, rec.info.State)

	for _, call := range fake.callLog() {
		assert.NotEqual(t, "delete juliaxbt-investigator", call, "start failure must not trigger rollback deletes")
	}
}

func TestPublish_DeleteRaceTolerated(t *testing.T) {
	fake := newFakeHub()
	conn := openConn(t, fake.start(t))
	r := New(conn, nil)

	_, err := r.Publish(context.Background(), testIdentity(), toolsBlueprint(1))
	require.NoError(t, err)

	// Another writer deletes the agent between our load and our delete; the
	// cleanup 404 must be absorbed like absence on load.
	fake.deleteRaces = true

	info, err := r.Publish(context.Background(), testIdentity(), toolsBlueprint(3))
	require.NoError(t, err)
	assert.Equal(t, hub.StateRunning, info.State)
	assert.Equal(t, 3, info.ToolCount)
	assert.Equal(t, 1, fake.agentCount())
}

// --- Run (config entry point) ---

func TestRun_PublishesEndToEnd(t *testing.T) {
	fake := newFakeHub()
	url := fake.start(t)

	info, err := Run(context.Background(), Config{
		Endpoint:  url,
		Identity:  testIdentity(),
		Blueprint: toolsBlueprint(2),
		Timeout:   5 * time.Second,
	}, nil)
	require.NoError(t, err)

	assert.Equal(t, hub.StateRunning, info.State)
	assert.Equal(t, 2, info.ToolCount)
}

func TestRun_UnreachableEndpoint(t *testing.T) {
	info, err := Run(context.Background(), Config{
		Endpoint:  "http://127.0.0.1:1", // nothing listens here
		Identity:  testIdentity(),
		Blueprint: toolsBlueprint(2),
	}, nil)
	require.Error(t, err)
	assert.Nil(t, info)
	assert.True(t, errors.Is(err, hub.ErrConnection))
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{
		Endpoint:  "http://localhost:8420",
		Identity:  testIdentity(),
		Blueprint: toolsBlueprint(1),
	}
	require.NoError(t, valid.Validate())

	missingEndpoint := valid
	missingEndpoint.Endpoint = ""
	assert.ErrorContains(t, missingEndpoint.Validate(), "endpoint")

	missingID := valid
	missingID.Identity.ID = ""
	assert.ErrorContains(t, missingID.Validate(), "agent id")

	badBlueprint := valid
	badBlueprint.Blueprint.Strategy.Name = ""
	assert.Error(t, badBlueprint.Validate())
}

func TestPublish_RejectsInvalidInput(t *testing.T) {
	fake := newFakeHub()
	conn := openConn(t, fake.start(t))
	r := New(conn, nil)

	_, err := r.Publish(context.Background(), hub.AgentIdentity{}, toolsBlueprint(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "agent id")

	bad := toolsBlueprint(2)
	bad.Tools[1].Name = bad.Tools[0].Name
	_, err = r.Publish(context.Background(), testIdentity(), bad)
	require.Error(t, err)

	assert.Empty(t, fake.callLog(), "invalid input must not reach the hub")
}
