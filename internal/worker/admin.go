package worker

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

	"github.com/dohr-michael/lingo/internal/events"
)

// Admin is the worker's observation endpoint. The event bus is
// per-process, so the history of what this worker leased, completed or
// poisoned is only readable here, not on the gateway.
type Admin struct {
	httpServer *http.Server
	router     chi.Router
}

// NewAdmin builds the admin server on addr, serving the bus history and
// a liveness probe.
func NewAdmin(addr string, bus *events.Bus) *Admin {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		adminJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	})
	r.Get("/api/events", func(w http.ResponseWriter, r *http.Request) {
		limit := 50
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				limit = n
			}
		}
		history := bus.History(limit)
		if history == nil {
			history = []events.Event{}
		}
		adminJSON(w, http.StatusOK, history)
	})

	return &Admin{
		router:     r,
		httpServer: &http.Server{Addr: addr, Handler: r},
	}
}

// Handler returns the HTTP handler, mainly for tests.
func (a *Admin) Handler() http.Handler {
	return a.router
}

// Start begins listening. It blocks until the server is stopped.
func (a *Admin) Start() error {
	ln, err := net.Listen("tcp", a.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("worker admin listen: %w", err)
	}
	slog.Info("worker admin listening", "addr", ln.Addr().String())
	return a.httpServer.Serve(ln)
}

// Shutdown gracefully stops the server.
func (a *Admin) Shutdown(ctx context.Context) error {
	return a.httpServer.Shutdown(ctx)
}

func adminJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("write admin response failed", "error", err)
	}
}
