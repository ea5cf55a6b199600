// Package server exposes the translator and practice services over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jask/mathverbal/internal/service"
	"github.com/jask/mathverbal/internal/translator"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// Server routes HTTP requests to the services. Stats and Gatherer are
// optional; their endpoints answer 503 without them.
type Server struct {
	Translations *service.TranslationService
	Practice     *service.PracticeService
	Stats        *service.StatsService
	Gatherer     prometheus.Gatherer
	Logger       *slog.Logger
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Handler returns the routed handler with panic recovery applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /translate", s.handleTranslate)
	mux.HandleFunc("GET /patterns", s.handlePatterns)
	mux.HandleFunc("POST /practice/question", s.handleQuestion)
	mux.HandleFunc("POST /practice/answer", s.handleAnswer)
	mux.HandleFunc("GET /stats", s.handleStats)
	mux.HandleFunc("GET /health", handleHealth)
	if s.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{EnableOpenMetrics: true}))
	}
	return s.recoverer(mux)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger().Info("http server listening", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger().Info("http server stopped")
	return nil
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger().Error("panic in handler", "path", r.URL.Path, "panic", rec, "stack", string(debug.Stack()))
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON reads exactly one JSON value with no unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	if dec.More() {
		writeError(w, http.StatusBadRequest, "invalid JSON: trailing data")
		return false
	}
	return true
}

type translateRequest struct {
	Phrase string `json:"phrase"`
}

type translateResponse struct {
	Result *translator.Result `json:"result"`
}

func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, ok := s.Translations.Translate(r.Context(), req.Phrase)
	if !ok {
		writeJSON(w, http.StatusOK, translateResponse{})
		return
	}
	writeJSON(w, http.StatusOK, translateResponse{Result: &res})
}

func (s *Server) handlePatterns(w http.ResponseWriter, _ *http.Request) {
	t := s.Translations.Translator
	if t == nil {
		t = translator.Default()
	}
	writeJSON(w, http.StatusOK, map[string]any{"patterns": t.Patterns()})
}

func (s *Server) handleQuestion(w http.ResponseWriter, r *http.Request) {
	var req translateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	t := s.Practice.Translator
	if t == nil {
		t = translator.Default()
	}
	res, _ := t.Translate(req.Phrase)
	writeJSON(w, http.StatusOK, s.Practice.NewQuestion(res))
}

type answerRequest struct {
	Question service.Question `json:"question"`
	Answer   string           `json:"answer"`
	Choice   string           `json:"choice,omitempty"`
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Question.Expected == "" {
		writeError(w, http.StatusBadRequest, "question.expected is required")
		return
	}

	var (
		g   service.Grade
		err error
	)
	if req.Choice != "" {
		g, err = s.Practice.CheckChoice(r.Context(), req.Question, req.Choice)
	} else {
		g, err = s.Practice.CheckAnswer(r.Context(), req.Question, req.Answer)
	}
	if err != nil {
		s.logger().Warn("record practice outcome", "err", err)
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.Stats == nil {
		writeError(w, http.StatusServiceUnavailable, service.ErrStoreNotConfigured.Error())
		return
	}
	sum, err := s.Stats.Summary(r.Context())
	if errors.Is(err, service.ErrStoreNotConfigured) {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	if err != nil {
		s.logger().Error("stats summary", "err", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
