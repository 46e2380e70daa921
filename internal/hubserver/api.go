// ABOUTME: HTTP API handlers for agent lifecycle, logs, webhooks, and catalog
// ABOUTME: Request/response DTOs here mirror the shapes the hub client decodes

package hubserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/2389/sigil/internal/blueprint"
	"github.com/2389/sigil/internal/hub"
	"github.com/2389/sigil/internal/store"
)

// CreateAgentRequest is the POST /api/v1/agents request body.
type CreateAgentRequest struct {
	ID          string                   `json:"id"`
	Name        string                   `json:"name"`
	Description string                   `json:"description"`
	Blueprint   blueprint.AgentBlueprint `json:"blueprint"`
}

// SetStateRequest is the PUT /api/v1/agents/{id}/state request body.
type SetStateRequest struct {
	State string `json:"state"`
}

// ListAgentsResponse wraps the agent listing.
type ListAgentsResponse struct {
	Agents []hub.AgentSummary `json:"agents"`
}

// ListToolsResponse wraps the tool catalog listing.
type ListToolsResponse struct {
	Tools []hub.ToolDescriptor `json:"tools"`
}

// ListStrategiesResponse wraps the strategy catalog listing.
type ListStrategiesResponse struct {
	Strategies []hub.StrategyDescriptor `json:"strategies"`
}

// AgentLogsResponse wraps an agent's log entries.
type AgentLogsResponse struct {
	AgentID string         `json:"agent_id"`
	Logs    []hub.LogEntry `json:"logs"`
}

// DeleteAgentResponse confirms a hard delete.
type DeleteAgentResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// SetStateResponse confirms a state change.
type SetStateResponse struct {
	ID    string         `json:"id"`
	State hub.AgentState `json:"state"`
}

// WebhookResponse confirms a recorded webhook invocation.
type WebhookResponse struct {
	AgentID string `json:"agent_id"`
	Status  string `json:"status"`
}

// ErrorResponse is the JSON error envelope for non-2xx responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/v1/ping", s.handlePing)

	mux.HandleFunc("GET /api/v1/agents", s.handleListAgents)
	mux.HandleFunc("POST /api/v1/agents", s.handleCreateAgent)
	mux.HandleFunc("GET /api/v1/agents/{id}", s.handleGetAgent)
	mux.HandleFunc("DELETE /api/v1/agents/{id}", s.handleDeleteAgent)
	mux.HandleFunc("PUT /api/v1/agents/{id}/state", s.handleSetAgentState)
	mux.HandleFunc("GET /api/v1/agents/{id}/logs", s.handleAgentLogs)
	mux.HandleFunc("POST /api/v1/agents/{id}/webhook", s.handleAgentWebhook)

	mux.HandleFunc("GET /api/v1/tools", s.handleListTools)
	mux.HandleFunc("GET /api/v1/strategies", s.handleListStrategies)
}

func (s *Server) sendJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encoding response", "error", err)
	}
}

func (s *Server) sendError(w http.ResponseWriter, status int, code, message string) {
	s.sendJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// sendStoreError translates store failures into API errors. Handlers pass the
// action for the log line and the 500 body.
func (s *Server) sendStoreError(w http.ResponseWriter, action string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		s.sendError(w, http.StatusNotFound, hub.CodeNotFound, "agent not found")
		return
	}
	s.logger.Error(action, "error", err)
	s.sendError(w, http.StatusInternalServerError, hub.CodeInternal, action+" failed")
}

// appendLifecycleLog records a lifecycle event in the agent's log. Failures
// are logged but never fail the request that triggered them.
func (s *Server) appendLifecycleLog(r *http.Request, agentID, message string) {
	entry := &store.AgentLog{
		ID:        uuid.New().String(),
		AgentID:   agentID,
		Message:   message,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.AppendLog(r.Context(), entry); err != nil {
		s.logger.Warn("appending lifecycle log", "agent_id", agentID, "error", err)
	}
}

func agentInfo(a *store.Agent) hub.AgentInfo {
	return hub.AgentInfo{
		ID:           a.ID,
		Name:         a.Name,
		Description:  a.Description,
		State:        a.State,
		ToolCount:    a.ToolCount,
		StrategyName: a.StrategyName,
		TriggerType:  a.TriggerType,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

func agentSummary(a *store.Agent) hub.AgentSummary {
	return hub.AgentSummary{
		ID:          a.ID,
		Name:        a.Name,
		Description: a.Description,
		State:       a.State,
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	s.sendJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": "sigil-hub"})
}

func (s *Server) handleListAgents(w http.ResponseWriter, r *http.Request) {
	agents, err := s.store.ListAgents(r.Context())
	if err != nil {
		s.sendStoreError(w, "listing agents", err)
		return
	}

	resp := ListAgentsResponse{Agents: make([]hub.AgentSummary, 0, len(agents))}
	for _, a := range agents {
		resp.Agents = append(resp.Agents, agentSummary(a))
	}
	s.sendJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateAgent(w http.ResponseWriter, r *http.Request) {
	var req CreateAgentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, hub.CodeBadRequest, "invalid JSON body")
		return
	}

	if req.ID == "" {
		s.sendError(w, http.StatusUnprocessableEntity, hub.CodeValidation, "id is required")
		return
	}
	if err := req.Blueprint.Validate(); err != nil {
		s.sendError(w, http.StatusUnprocessableEntity, hub.CodeValidation, err.Error())
		return
	}
	if err := s.registry.ValidateBlueprint(req.Blueprint); err != nil {
		s.sendError(w, http.StatusUnprocessableEntity, hub.CodeValidation, err.Error())
		return
	}

	name := req.Name
	if name == "" {
		name = req.ID
	}

	bpJSON, err := json.Marshal(req.Blueprint)
	if err != nil {
		s.logger.Error("marshaling blueprint", "error", err)
		s.sendError(w, http.StatusInternalServerError, hub.CodeInternal, "storing blueprint failed")
		return
	}

	now := time.Now().UTC()
	agent := &store.Agent{
		ID:           req.ID,
		Name:         name,
		Description:  req.Description,
		State:        hub.StateCreated,
		Blueprint:    bpJSON,
		ToolCount:    len(req.Blueprint.Tools),
		StrategyName: req.Blueprint.Strategy.Name,
		TriggerType:  req.Blueprint.Trigger.Type.String(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateAgent(r.Context(), agent); err != nil {
		if errors.Is(err, store.ErrDuplicateAgent) {
			s.sendError(w, http.StatusConflict, hub.CodeAgentExists, fmt.Sprintf("agent %q already exists", req.ID))
			return
		}
		s.sendStoreError(w, "creating agent", err)
		return
	}

	s.appendLifecycleLog(r, agent.ID, "agent created")
	s.logger.Info("agent created", "id", agent.ID, "tools", agent.ToolCount, "strategy", agent.StrategyName)

	s.sendJSON(w, http.StatusCreated, agentSummary(agent))
}

func (s *Server) handleGetAgent(w http.ResponseWriter, r *http.Request) {
	agent, err := s.store.GetAgent(r.Context(), r.PathValue("id"))
	if err != nil {
		s.sendStoreError(w, "loading agent", err)
		return
	}
	s.sendJSON(w, http.StatusOK, agentInfo(agent))
}

func (s *Server) handleDeleteAgent(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.store.DeleteAgent(r.Context(), id); err != nil {
		s.sendStoreError(w, "deleting agent", err)
		return
	}

	s.logger.Info("agent deleted", "id", id)
	s.sendJSON(w, http.StatusOK, DeleteAgentResponse{ID: id, Status: "deleted"})
}

func (s *Server) handleSetAgentState(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req SetStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, hub.CodeBadRequest, "invalid JSON body")
		return
	}

	target := hub.AgentState(req.State)
	if !target.IsValid() {
		s.sendError(w, http.StatusUnprocessableEntity, hub.CodeValidation, fmt.Sprintf("unknown state %q", req.State))
		return
	}

	agent, err := s.store.GetAgent(r.Context(), id)
	if err != nil {
		s.sendStoreError(w, "loading agent", err)
		return
	}

	// DELETED is only reachable through DELETE; every other illegal move is
	// rejected the same way.
	if !agent.State.CanTransition(target) {
		s.sendError(w, http.StatusConflict, hub.CodeInvalidTransition,
			fmt.Sprintf("cannot transition from %s to %s", agent.State, target))
		return
	}

	if err := s.store.UpdateAgentState(r.Context(), id, target); err != nil {
		s.sendStoreError(w, "updating agent state", err)
		return
	}

	s.appendLifecycleLog(r, id, fmt.Sprintf("state changed from %s to %s", agent.State, target))
	s.logger.Info("agent state changed", "id", id, "from", agent.State, "to", target)

	s.sendJSON(w, http.StatusOK, SetStateResponse{ID: id, State: target})
}

func (s *Server) handleAgentLogs(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.sendError(w, http.StatusBadRequest, hub.CodeBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	logs, err := s.store.GetAgentLogs(r.Context(), id, limit)
	if err != nil {
		s.sendStoreError(w, "reading agent logs", err)
		return
	}

	resp := AgentLogsResponse{AgentID: id, Logs: make([]hub.LogEntry, 0, len(logs))}
	for _, l := range logs {
		resp.Logs = append(resp.Logs, hub.LogEntry{ID: l.ID, Message: l.Message, CreatedAt: l.CreatedAt})
	}
	s.sendJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAgentWebhook(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.sendError(w, http.StatusBadRequest, hub.CodeBadRequest, "invalid JSON body")
		return
	}

	agent, err := s.store.GetAgent(r.Context(), id)
	if err != nil {
		s.sendStoreError(w, "loading agent", err)
		return
	}

	if agent.TriggerType != blueprint.TriggerWebhook.String() {
		s.sendError(w, http.StatusUnprocessableEntity, hub.CodeValidation,
			fmt.Sprintf("agent %q has trigger type %q, not webhook", id, agent.TriggerType))
		return
	}
	if agent.State != hub.StateRunning {
		s.sendError(w, http.StatusConflict, hub.CodeInvalidTransition,
			fmt.Sprintf("agent %q is %s, webhooks require RUNNING", id, agent.State))
		return
	}

	message := "webhook received"
	if len(payload) > 0 {
		if payloadJSON, err := json.Marshal(payload); err == nil {
			message = "webhook received: " + string(payloadJSON)
		}
	}
	s.appendLifecycleLog(r, id, message)
	s.logger.Info("webhook received", "id", id, "payload_keys", len(payload))

	s.sendJSON(w, http.StatusAccepted, WebhookResponse{AgentID: id, Status: "accepted"})
}

func (s *Server) handleListTools(w http.ResponseWriter, r *http.Request) {
	tools := s.registry.Tools()
	resp := ListToolsResponse{Tools: make([]hub.ToolDescriptor, 0, len(tools))}
	for _, t := range tools {
		resp.Tools = append(resp.Tools, hub.ToolDescriptor{Name: t.Name, Description: t.Description})
	}
	s.sendJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListStrategies(w http.ResponseWriter, r *http.Request) {
	strategies := s.registry.Strategies()
	resp := ListStrategiesResponse{Strategies: make([]hub.StrategyDescriptor, 0, len(strategies))}
	for _, st := range strategies {
		resp.Strategies = append(resp.Strategies, hub.StrategyDescriptor{Name: st.Name, Description: st.Description})
	}
	s.sendJSON(w, http.StatusOK, resp)
}
