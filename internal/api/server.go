// Package api provides the HTTP and WebSocket front end for executing actions.
package api

import (
	"bufio"
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pleimann/marionette/internal/action"
	"github.com/pleimann/marionette/internal/config"
	"github.com/pleimann/marionette/internal/engine"
	"github.com/pleimann/marionette/internal/inject"
	"github.com/pleimann/marionette/internal/macro"
)

// maxBodyBytes bounds a single action document.
const maxBodyBytes = 1 << 20

// Executor runs actions. *engine.Executor satisfies it.
type Executor interface {
	Execute(a action.Action) (engine.Result, error)
	ScreenSize() (int, int, error)
}

// Server serves the execute API.
type Server struct {
	exec    Executor
	macros  *macro.Registry
	started time.Time
	log     zerolog.Logger

	mu    sync.RWMutex
	token string
}

// ExecuteResponse is the reply to every execute request.
type ExecuteResponse struct {
	Status          string `json:"status"`
	ExecutionTimeMs int64  `json:"execution_time_ms"`
	Result          string `json:"result,omitempty"`
	Error           string `json:"error,omitempty"`
}

// MacroInfo describes a configured macro.
type MacroInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Action      action.Envelope `json:"action"`
}

// NewServer creates a new API server. A non-empty token requires every
// request except /health to carry it as a bearer token.
func NewServer(exec Executor, macros *macro.Registry, token string) *Server {
	return &Server{
		exec:    exec,
		macros:  macros,
		token:   token,
		started: time.Now(),
		log:     log.With().Str("component", "api").Logger(),
	}
}

// ApplyConfig picks up a reloaded configuration.
func (s *Server) ApplyConfig(cfg *config.Config) {
	if err := s.macros.Reload(cfg); err != nil {
		s.log.Error().Err(err).Msg("Keeping previous macros")
	}
	s.mu.Lock()
	s.token = cfg.Server.APIToken
	s.mu.Unlock()
}

func (s *Server) currentToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /execute", s.handleExecute)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /api/screen", s.handleScreen)
	mux.HandleFunc("GET /api/macros", s.handleListMacros)
	mux.HandleFunc("POST /api/macros/{name}", s.handleRunMacro)
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	return s.logMiddleware(s.recoverMiddleware(s.authMiddleware(mux)))
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	s.log.Info().Str("addr", ln.Addr().String()).Msg("API server listening")

	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// recoverMiddleware prevents panics from crashing the whole server
func (s *Server) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				s.log.Error().Interface("panic", err).Str("path", r.URL.Path).Msg("Recovered from panic")
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// authMiddleware checks the API token if one is configured
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip auth for health check
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		if token := s.currentToken(); token != "" {
			// browsers cannot set headers on a WebSocket handshake
			if !tokenMatches(r.Header.Get("Authorization"), "Bearer "+token) &&
				!tokenMatches(r.URL.Query().Get("token"), token) {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
		}

		next.ServeHTTP(w, r)
	})
}

func tokenMatches(got, want string) bool {
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack lets the WebSocket upgrade through the recorder.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter { return r.ResponseWriter }

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Str("remote", r.RemoteAddr).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("Request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// execute runs a and builds the response with its HTTP status.
func (s *Server) execute(a action.Action) (int, ExecuteResponse) {
	res, err := s.exec.Execute(a)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, engine.ErrUnavailable):
			status = http.StatusServiceUnavailable
		case errors.Is(err, engine.ErrInvalidAction):
			status = http.StatusBadRequest
		}
		return status, ExecuteResponse{
			Status:          "error",
			ExecutionTimeMs: res.Millis(),
			Result:          res.Description,
			Error:           err.Error(),
		}
	}
	return http.StatusOK, ExecuteResponse{
		Status:          "success",
		ExecutionTimeMs: res.Millis(),
		Result:          res.Description,
	}
}

// handleExecute handles POST /execute with a JSON or YAML action document
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusRequestEntityTooLarge, ExecuteResponse{Status: "error", Error: err.Error()})
		return
	}

	a, err := action.Decode(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, ExecuteResponse{Status: "error", Error: err.Error()})
		return
	}

	status, resp := s.execute(a)
	writeJSON(w, status, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"uptime_seconds": int64(time.Since(s.started).Seconds()),
	})
}

func (s *Server) handleScreen(w http.ResponseWriter, r *http.Request) {
	width, height, err := s.exec.ScreenSize()
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, inject.ErrUnsupported) {
			status = http.StatusNotImplemented
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"width": width, "height": height})
}

func (s *Server) handleListMacros(w http.ResponseWriter, r *http.Request) {
	list := s.macros.List()
	out := make([]MacroInfo, len(list))
	for i, m := range list {
		out[i] = MacroInfo{Name: m.Name, Description: m.Description, Action: action.Envelope{Action: m.Action}}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRunMacro(w http.ResponseWriter, r *http.Request) {
	m, err := s.macros.Lookup(r.PathValue("name"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, ExecuteResponse{Status: "error", Error: err.Error()})
		return
	}

	s.log.Info().Str("macro", m.Name).Msg("Running macro")
	status, resp := s.execute(m.Action)
	writeJSON(w, status, resp)
}
