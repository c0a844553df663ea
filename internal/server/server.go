// Package server exposes the status cache over loopback HTTP: GET /status for
// readers (statusline, prompt hooks), POST /update for the build watcher, and
// GET /health for liveness probes. The handlers do no aggregation of their
// own; they read and merge through the cache and publish change events.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/Iron-Ham/xcstatus/internal/event"
	"github.com/Iron-Ham/xcstatus/internal/logging"
	"github.com/Iron-Ham/xcstatus/internal/status"
)

// shutdownTimeout bounds graceful shutdown before in-flight requests are cut.
const shutdownTimeout = 5 * time.Second

// Server serves the status HTTP API.
type Server struct {
	cache  *status.Cache
	bus    *event.Bus
	logger *logging.Logger

	httpServer *http.Server
}

// New creates a Server over cache. bus may be nil when no subscriber exists.
func New(cache *status.Cache, bus *event.Bus, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Server{
		cache:  cache,
		bus:    bus,
		logger: logger.WithComponent("server"),
	}
}

// Handler returns the route table as an http.Handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("POST /update", s.handleUpdate)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully. addr should be loopback; the API carries local filesystem
// paths and is not meant to leave the machine.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("status server listening", "addr", addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// handleStatus returns the current snapshot.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.cache.Get())
}

// handleUpdate merges a partial update into the cache. A change publishes a
// status-changed event plus any build lifecycle events the transition
// implies; an update that changed nothing is still a success.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var update status.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		s.logger.Warn("rejecting malformed update", "error", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return
	}

	prev := s.cache.Get()
	changed := s.cache.Merge(update)
	if changed && s.bus != nil {
		snap := s.cache.Get()
		s.bus.Publish(event.NewStatusChangedEvent(snap))
		for _, ev := range event.TransitionEvents(prev, snap) {
			s.bus.Publish(ev)
		}
	}
	s.logger.Debug("update merged", "changed", changed)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleHealth is a plain-text liveness probe.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// writeJSON encodes v as the response body with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	// Headers are already out by the time Encode can fail.
	_ = json.NewEncoder(w).Encode(v)
}
