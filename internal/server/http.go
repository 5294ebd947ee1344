// Package server exposes gosymdiff tool calls over HTTP and JSON-RPC 2.0.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/njchilds90/gosymdiff"
	"github.com/njchilds90/gosymdiff/internal/config"
	"github.com/njchilds90/gosymdiff/internal/ctxlog"
)

// Server routes tool calls to a gosymdiff.ToolHandler.
type Server struct {
	tools        gosymdiff.ToolHandler
	maxBodyBytes int64
	logger       *slog.Logger
	requests     atomic.Uint64
}

// New builds a Server from cfg.
func New(cfg config.Config, logger *slog.Logger) *Server {
	return &Server{
		tools: gosymdiff.ToolHandler{
			MaxPaths: cfg.Limits.MaxPaths,
			NoCache:  !cfg.Eval.Cache,
		},
		maxBodyBytes: cfg.Server.MaxBodyBytes,
		logger:       logger,
	}
}

// Handler returns the HTTP routes:
//
//	POST /tool     execute a tool call
//	GET  /schema   tool schema for agent registration
//	GET  /health   liveness check
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/tool", s.handleTool)
	mux.HandleFunc("/schema", s.handleSchema)
	mux.HandleFunc("/health", s.handleHealth)
	return s.withLogger(mux)
}

// HTTPServer wraps Handler with the configured timeouts.
func (s *Server) HTTPServer(cfg config.ServerConfig) *http.Server {
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout.Std(),
		ReadTimeout:       cfg.ReadTimeout.Std(),
		WriteTimeout:      cfg.WriteTimeout.Std(),
		IdleTimeout:       cfg.IdleTimeout.Std(),
	}
}

func (s *Server) withLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := s.requests.Add(1)
		logger := s.logger.With("request", id, "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctxlog.WithLogger(r.Context(), logger)))
	})
}

func (s *Server) handleTool(w http.ResponseWriter, r *http.Request) {
	logger := ctxlog.FromContext(r.Context())
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("panic in /tool", "panic", rec, "stack", string(debug.Stack()))
			http.Error(w, "internal server error", http.StatusInternalServerError)
		}
	}()

	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req gosymdiff.ToolRequest
	if err := dec.Decode(&req); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}
	// Ensure there's no trailing junk.
	if dec.More() {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: trailing data"})
		return
	}

	start := time.Now()
	resp := s.tools.Handle(req)
	logger.Debug("tool call", "tool", req.Tool, "took", time.Since(start), "error", resp.Error)
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, gosymdiff.ToolSpec())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
