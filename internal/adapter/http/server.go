package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/terrapulse/agrorisk/internal/domain"
)

// Evaluator runs a risk evaluation for a validated request.
type Evaluator interface {
	Evaluate(ctx context.Context, req domain.EvaluationRequest) (domain.RiskVerdict, error)
}

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// Server exposes the risk evaluation API plus health, readiness, and metrics.
type Server struct {
	httpServer   *http.Server
	evaluator    Evaluator
	profiles     domain.CropProfiles
	maxRangeDays int
	logger       *slog.Logger
}

// NewServer creates an HTTP server with the evaluation and operational routes.
func NewServer(addr string, evaluator Evaluator, ready ReadinessChecker, profiles domain.CropProfiles, maxRangeDays int, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		evaluator:    evaluator,
		profiles:     profiles,
		maxRangeDays: maxRangeDays,
		logger:       logger,
	}

	mux.HandleFunc("GET /api/v1/risk-evaluation", s.handleEvaluation)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", handleReady(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleEvaluation(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req, err := domain.ParseRequest(q.Get("lat"), q.Get("lon"), q.Get("crop"), q.Get("start"), q.Get("end"), s.profiles, s.maxRangeDays)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	verdict, err := s.evaluator.Evaluate(r.Context(), req)
	if err != nil {
		var ve *domain.ValidationError
		var ce *domain.UnknownCropError
		switch {
		case errors.As(err, &ve), errors.As(err, &ce):
			writeError(w, http.StatusBadRequest, err)
		case errors.Is(err, domain.ErrInsufficientData):
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"error":  err.Error(),
				"detail": "no data source responded, try again later",
			})
		default:
			s.logger.Error("evaluation failed", "crop", req.Crop, "error", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		}
		return
	}

	w.Header().Set("X-Request-Id", verdict.RequestID)
	writeJSON(w, http.StatusOK, verdict)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func handleReady(checker ReadinessChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := checker.CheckReadiness(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"error":  err.Error(),
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response write
}
