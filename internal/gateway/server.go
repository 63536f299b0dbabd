// Package gateway exposes the dual-protocol front door: the A2A JSON-RPC
// endpoint and the legacy REST endpoints share one queue, one result
// store and one task lifecycle.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dohr-michael/lingo/internal/auditlog"
	"github.com/dohr-michael/lingo/internal/events"
	"github.com/dohr-michael/lingo/internal/jobs"
	"github.com/dohr-michael/lingo/internal/queue"
	"github.com/dohr-michael/lingo/internal/results"
)

// Options configures a gateway server.
type Options struct {
	Host            string
	Port            int
	PublicURL       string
	DefaultLanguage string
	Queue           queue.Queue
	Results         results.Store
	Audit           *auditlog.Log // optional
	Bus             *events.Bus   // optional
}

// Server is the lingo gateway HTTP server.
type Server struct {
	httpServer      *http.Server
	router          chi.Router
	queue           queue.Queue
	results         results.Store
	audit           *auditlog.Log
	bus             *events.Bus
	publicURL       string
	defaultLanguage string
}

// NewServer creates a gateway server.
func NewServer(opts Options) *Server {
	publicURL := opts.PublicURL
	if publicURL == "" {
		publicURL = "http://" + opts.Host + ":" + strconv.Itoa(opts.Port)
	}
	defaultLanguage := opts.DefaultLanguage
	if defaultLanguage == "" {
		defaultLanguage = "el"
	}

	s := &Server{
		queue:           opts.Queue,
		results:         opts.Results,
		audit:           opts.Audit,
		bus:             opts.Bus,
		publicURL:       publicURL,
		defaultLanguage: defaultLanguage,
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	// Protocol A: JSON-RPC endpoint + discovery.
	r.Post("/", s.handleRPC)
	r.Get("/.well-known/agent.json", s.handleAgentJSON)

	// Protocol B: legacy REST + discovery.
	r.Post("/execute_task", s.handleExecuteTask)
	r.Get("/task_status/{taskID}", s.handleTaskStatus)
	r.Get("/agent-card", s.handleAgentCard)

	// Operational surface.
	r.Get("/", s.handleIndex)
	r.Get("/health", s.handleHealth)
	r.Get("/api/events", s.handleEvents)
	r.Get("/api/audit/{taskID}", s.handleAudit)

	s.router = r
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", opts.Host, opts.Port),
		Handler: r,
	}

	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start begins listening. It blocks until the server is stopped.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return err
	}
	slog.Info("lingo gateway listening", "addr", ln.Addr().String())
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// submit is the single enqueue path shared by both protocols. On error
// no task state exists anywhere; the caller must retry the submission.
func (s *Server) submit(ctx context.Context, payload *jobs.Payload) error {
	// Create-if-absent is idempotent so concurrent submissions cannot
	// race on queue creation.
	if err := s.queue.Ensure(ctx); err != nil {
		return fmt.Errorf("ensure queue: %w", err)
	}

	body, err := payload.Encode()
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	if _, err := s.queue.Send(ctx, body); err != nil {
		return fmt.Errorf("enqueue task %s: %w", payload.TaskID, err)
	}

	slog.Info("task queued", "task_id", payload.TaskID, "target_language", payload.TargetLanguage)

	if s.audit != nil {
		if err := s.audit.Append(ctx, payload.TaskID, auditlog.EventSubmitted, "queued for "+payload.TargetLanguage); err != nil {
			slog.Warn("audit append failed", "task_id", payload.TaskID, "error", err)
		}
	}
	if s.bus != nil {
		s.bus.Publish(events.NewEvent(events.EventTaskSubmitted, events.SourceGateway, payload.TaskID,
			map[string]any{"target_language": payload.TargetLanguage}))
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, "<h1>Translation Agent (Producer) is active.</h1><p>It's ready to accept A2A translation tasks.</p>")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.queue.Ensure(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"message": "Service is running and queue is accessible",
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.bus == nil {
		http.Error(w, "event history not available", http.StatusServiceUnavailable)
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	history := s.bus.History(limit)
	if history == nil {
		history = []events.Event{}
	}
	writeJSON(w, http.StatusOK, history)
}

func (s *Server) handleAudit(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		http.Error(w, "audit log not available", http.StatusServiceUnavailable)
		return
	}

	taskID := chi.URLParam(r, "taskID")
	entries, err := s.audit.ListByTask(r.Context(), taskID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if entries == nil {
		entries = []auditlog.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write response failed", "error", err)
	}
}
