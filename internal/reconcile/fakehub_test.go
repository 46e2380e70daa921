// ABOUTME: In-memory fake hub API used by the publish workflow tests
// ABOUTME: Records call order so tests can assert what each failure short-circuits

package reconcile

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/2389/sigil/internal/blueprint"
	"github.com/2389/sigil/internal/hub"
)

// fakeAgentRec is one agent held by the fake hub.
type fakeAgentRec struct {
	info hub.AgentInfo
	bp   blueprint.AgentBlueprint
}

// fakeHub is an in-memory stand-in for the hub API, covering exactly the
// endpoints the publish workflow touches. Failures are scripted per test via
// the reject hooks.
type fakeHub struct {
	mu     sync.Mutex
	agents map[string]*fakeAgentRec
	calls  []string

	// rejectCreate, when set, fails POST /agents with the given envelope.
	rejectCreate func() (status int, code, msg string)
	// rejectState, when set, fails PUT /agents/{id}/state the same way.
	rejectState func() (status int, code, msg string)
	// dropLoad aborts the connection on GET /agents/{id} instead of answering.
	dropLoad bool
	// deleteRaces makes the next DELETE behave as if another writer got there
	// first: the record is dropped but the response is still a 404.
	deleteRaces bool
}

func newFakeHub() *fakeHub {
	return &fakeHub{agents: make(map[string]*fakeAgentRec)}
}

// start serves the fake over httptest and returns the base URL.
func (f *fakeHub) start(t *testing.T) string {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/ping", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /api/v1/agents", f.handleList)
	mux.HandleFunc("POST /api/v1/agents", f.handleCreate)
	mux.HandleFunc("GET /api/v1/agents/{id}", f.handleGet)
	mux.HandleFunc("DELETE /api/v1/agents/{id}", f.handleDelete)
	mux.HandleFunc("PUT /api/v1/agents/{id}/state", f.handleSetState)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv.URL
}

// callLog returns the ordered method log so far.
func (f *fakeHub) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

// agentCount returns how many agents the fake currently holds.
func (f *fakeHub) agentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.agents)
}

// agent returns the stored record for an id, or nil.
func (f *fakeHub) agent(id string) *fakeAgentRec {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.agents[id]
}

func (f *fakeHub) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeHub) handleGet(w http.ResponseWriter, r *http.Request) {
	f.record("load " + r.PathValue("id"))
	if f.dropLoad {
		panic(http.ErrAbortHandler)
	}

	f.mu.Lock()
	rec, ok := f.agents[r.PathValue("id")]
	f.mu.Unlock()
	if !ok {
		writeFakeError(w, http.StatusNotFound, hub.CodeNotFound, "agent not found")
		return
	}
	json.NewEncoder(w).Encode(rec.info)
}

func (f *fakeHub) handleList(w http.ResponseWriter, r *http.Request) {
	f.record("list")

	f.mu.Lock()
	summaries := make([]hub.AgentSummary, 0, len(f.agents))
	for _, rec := range f.agents {
		summaries = append(summaries, hub.AgentSummary{
			ID:          rec.info.ID,
			Name:        rec.info.Name,
			Description: rec.info.Description,
			State:       rec.info.State,
		})
	}
	f.mu.Unlock()

	json.NewEncoder(w).Encode(map[string]any{"agents": summaries})
}

func (f *fakeHub) handleCreate(w http.ResponseWriter, r *http.Request) {
	f.record("create")
	if f.rejectCreate != nil {
		writeFakeError(w, f.rejectCreate())
		return
	}

	var req struct {
		ID          string                   `json:"id"`
		Name        string                   `json:"name"`
		Description string                   `json:"description"`
		Blueprint   blueprint.AgentBlueprint `json:"blueprint"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFakeError(w, http.StatusBadRequest, hub.CodeBadRequest, "malformed body")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.agents[req.ID]; exists {
		writeFakeError(w, http.StatusConflict, hub.CodeAgentExists, "agent id already in use")
		return
	}

	now := time.Now().UTC()
	f.agents[req.ID] = &fakeAgentRec{
		info: hub.AgentInfo{
			ID:           req.ID,
			Name:         req.Name,
			Description:  req.Description,
			State:        hub.StateCreated,
			ToolCount:    len(req.Blueprint.Tools),
			StrategyName: req.Blueprint.Strategy.Name,
			TriggerType:  string(req.Blueprint.Trigger.Type),
			CreatedAt:    now,
			UpdatedAt:    now,
		},
		bp: req.Blueprint,
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(hub.AgentSummary{
		ID:          req.ID,
		Name:        req.Name,
		Description: req.Description,
		State:       hub.StateCreated,
	})
}

func (f *fakeHub) handleDelete(w http.ResponseWriter, r *http.Request) {
	f.record("delete " + r.PathValue("id"))

	f.mu.Lock()
	defer f.mu.Unlock()
	id := r.PathValue("id")
	if f.deleteRaces {
		f.deleteRaces = false
		delete(f.agents, id)
		writeFakeError(w, http.StatusNotFound, hub.CodeNotFound, "agent not found")
		return
	}
	if _, ok := f.agents[id]; !ok {
		writeFakeError(w, http.StatusNotFound, hub.CodeNotFound, "agent not found")
		return
	}
	delete(f.agents, id)
	json.NewEncoder(w).Encode(map[string]string{"id": id, "status": "deleted"})
}

func (f *fakeHub) handleSetState(w http.ResponseWriter, r *http.Request) {
	f.record("set_state " + r.PathValue("id"))
	if f.rejectState != nil {
		writeFakeError(w, f.rejectState())
		return
	}

	var req struct {
		State hub.AgentState `json:"state"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFakeError(w, http.StatusBadRequest, hub.CodeBadRequest, "malformed body")
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.agents[r.PathValue("id")]
	if !ok {
		writeFakeError(w, http.StatusNotFound, hub.CodeNotFound, "agent not found")
		return
	}
	if !rec.info.State.CanTransition(req.State) {
		writeFakeError(w, http.StatusConflict, hub.CodeInvalidTransition, "transition not allowed")
		return
	}
	rec.info.State = req.State
	rec.info.UpdatedAt = time.Now().UTC()
	json.NewEncoder(w).Encode(map[string]any{"id": rec.info.ID, "state": rec.info.State})
}

func writeFakeError(w http.ResponseWriter, status int, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": msg, "code": code})
}
