// Package api exposes the analysis pipeline over HTTP with SSE
// streaming.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lucasfrag/ollama4truth/internal/evidence"
	"github.com/lucasfrag/ollama4truth/internal/history"
	"github.com/lucasfrag/ollama4truth/internal/pipeline"
	"github.com/lucasfrag/ollama4truth/internal/questions"
	"github.com/lucasfrag/ollama4truth/internal/verdict"
	"github.com/lucasfrag/ollama4truth/pkg/version"
)

// Defaults applied when a request omits or misspells a parameter.
// Invalid values fall back silently so the web UI never breaks on a
// stale option list.
type Defaults struct {
	Mode     evidence.Mode
	Strategy verdict.Strategy
}

// Server serves the fact-checking API.
type Server struct {
	pipeline *pipeline.Pipeline
	store    *history.Store
	defaults Defaults
	router   chi.Router
}

// NewServer builds the HTTP router around a pipeline. The history store
// may be nil; history endpoints then return 404.
func NewServer(p *pipeline.Pipeline, store *history.Store, defaults Defaults) *Server {
	if defaults.Mode == "" {
		defaults.Mode = evidence.ModeHybrid
	}
	if defaults.Strategy == "" {
		defaults.Strategy = verdict.StrategyLabelVote
	}

	s := &Server{
		pipeline: p,
		store:    store,
		defaults: defaults,
	}
	s.router = s.buildRouter()
	return s
}

func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/analyze-stream", s.handleAnalyzeStream)

	if s.store != nil {
		r.Get("/history", s.handleHistoryList)
		r.Get("/history/{id}", s.handleHistoryGet)
		r.Delete("/history", s.handleHistoryClear)
	}

	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe runs the server until the context is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("api_listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}

// sseEvent is one streamed stage message.
type sseEvent struct {
	Stage string `json:"stage"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// handleAnalyzeStream runs the pipeline and streams stage results as
// server-sent events: questions, evidence, verdict, then done.
func (s *Server) handleAnalyzeStream(w http.ResponseWriter, r *http.Request) {
	claim := r.URL.Query().Get("claim")
	if claim == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "claim query parameter is required"})
		return
	}

	mode := s.defaults.Mode
	if m, err := evidence.ParseMode(r.URL.Query().Get("mode")); err == nil {
		mode = m
	}
	strategy := s.defaults.Strategy
	if st, err := verdict.ParseStrategy(r.URL.Query().Get("strategy")); err == nil {
		strategy = st
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	send := func(ev sseEvent) {
		payload, err := json.Marshal(ev)
		if err != nil {
			return
		}
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
	}

	hooks := &pipeline.Hooks{
		OnQuestions: func(qs *questions.QuestionSet) {
			send(sseEvent{Stage: "questions", Data: qs})
		},
		OnEvidence: func(b *evidence.Bundle) {
			send(sseEvent{Stage: "evidence", Data: b})
		},
		OnVerdict: func(v *verdict.Verdict) {
			send(sseEvent{Stage: "verdict", Data: v})
		},
	}

	analysis, err := s.pipeline.Analyze(r.Context(), claim, mode, strategy, hooks)
	if err != nil {
		slog.Error("analysis_failed", "error", err)
		send(sseEvent{Stage: "error", Error: err.Error()})
		return
	}

	send(sseEvent{Stage: "done", Data: map[string]string{"id": analysis.ID}})
}

func (s *Server) handleHistoryList(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	entries, err := s.store.List(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	if entries == nil {
		entries = []history.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"count":   len(entries),
		"entries": entries,
	})
}

func (s *Server) handleHistoryGet(w http.ResponseWriter, r *http.Request) {
	entry, err := s.store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "analysis not found"})
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleHistoryClear(w http.ResponseWriter, r *http.Request) {
	removed, err := s.store.Clear(r.Context())
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"removed": removed,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
