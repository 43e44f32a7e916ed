// Package server exposes the orchestrator over HTTP for clients that are not
// the bundled terminal UI.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/vominhhuy13101999/agent-test/agents"
	"github.com/vominhhuy13101999/agent-test/framework"
)

// APIServer serves the chat, session, and operational endpoints.
type APIServer struct {
	Orchestrator *agents.Orchestrator
	Logger       *log.Logger
}

// ChatResponse is the payload returned for every chat turn.
type ChatResponse struct {
	Routing      framework.RoutingDecision `json:"routing_decision"`
	Response     string                    `json:"response_text"`
	Status       string                    `json:"status"`
	ErrorMessage string                    `json:"error_message,omitempty"`
	SessionID    string                    `json:"session_id"`
}

// AgentsResponse lists the routable specialists.
type AgentsResponse struct {
	Agents []framework.AgentType `json:"agents"`
}

// HealthResponse reports model reachability.
type HealthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Serve starts listening on the provided address.
func (s *APIServer) Serve(addr string) error {
	return s.ServeContext(context.Background(), addr)
}

// ServeContext allows the caller to control shutdown via context cancellation.
func (s *APIServer) ServeContext(ctx context.Context, addr string) error {
	server := &http.Server{Addr: addr, Handler: s.Handler()}
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()
	if s.Logger != nil {
		s.Logger.Printf("API listening on %s", addr)
	}
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// Handler builds the route table. Exposed separately so tests can drive the
// server through httptest without binding a port.
func (s *APIServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/chat", s.handleChat)
	mux.HandleFunc("/api/sessions", s.handleSessions)
	mux.HandleFunc("/api/sessions/", s.handleSession)
	mux.HandleFunc("/api/agents", s.handleAgents)
	mux.HandleFunc("/api/health", s.handleHealth)
	return mux
}

func (s *APIServer) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req agents.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		req.SessionID = time.Now().UTC().Format("20060102150405.000000000")
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()
	outcome := s.Orchestrator.Process(ctx, req)

	writeJSON(w, ChatResponse{
		Routing:      outcome.Routing,
		Response:     outcome.Response,
		Status:       outcome.Status,
		ErrorMessage: outcome.ErrorMessage,
		SessionID:    req.SessionID,
	})
}

func (s *APIServer) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.Orchestrator.Sessions.List())
}

func (s *APIServer) handleSession(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/sessions/")
	if id == "" {
		http.Error(w, "session id required", http.StatusBadRequest)
		return
	}
	switch r.Method {
	case http.MethodGet:
		session, ok := s.Orchestrator.Sessions.Get(id)
		if !ok {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		writeJSON(w, session)
	case http.MethodDelete:
		if !s.Orchestrator.Sessions.Delete(id) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *APIServer) handleAgents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, AgentsResponse{Agents: s.Orchestrator.AvailableAgents()})
}

func (s *APIServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok"}
	if err := s.Orchestrator.HealthCheck(r.Context()); err != nil {
		resp.Status = "degraded"
		resp.Error = err.Error()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(resp)
		return
	}
	writeJSON(w, resp)
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
