// Package http exposes the playback control API plus health, readiness, and
// metrics endpoints.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/scott4ai/ukraine-fire-tracking/internal/domain"
	"github.com/scott4ai/ukraine-fire-tracking/internal/engine"
)

// ReadinessChecker reports whether the service is ready to serve traffic.
type ReadinessChecker interface {
	CheckReadiness(ctx context.Context) error
}

// PlaybackController is the command surface the server drives. The engine
// satisfies it.
type PlaybackController interface {
	Start(rangeStart, rangeEnd time.Time, speedKey string) error
	Pause()
	Resume()
	Stop()
	ChangeSpeed(speedKey string) error
	Statistics() domain.Statistics
}

// Server exposes the playback control and operational HTTP endpoints.
type Server struct {
	httpServer *http.Server
	playback   PlaybackController
	logger     *slog.Logger
}

// NewServer creates an HTTP server with playback control routes alongside
// /healthz, /readyz, and /metrics.
func NewServer(addr string, playback PlaybackController, ready ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		playback: playback,
		logger:   logger,
	}

	mux.HandleFunc("POST /playback/start", s.handleStart)
	mux.HandleFunc("POST /playback/pause", s.handlePause)
	mux.HandleFunc("POST /playback/resume", s.handleResume)
	mux.HandleFunc("POST /playback/stop", s.handleStop)
	mux.HandleFunc("POST /playback/speed", s.handleSpeed)
	mux.HandleFunc("GET /playback/statistics", s.handleStatistics)
	mux.HandleFunc("GET /playback/config", s.handleConfig)

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

type startRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Speed     string `json:"speed"`
}

type speedRequest struct {
	Speed string `json:"speed"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req startRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	rangeStart, err := parsePlaybackTime(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid start_date: "+err.Error())
		return
	}
	rangeEnd, err := parsePlaybackTime(req.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid end_date: "+err.Error())
		return
	}
	if req.Speed == "" {
		req.Speed = domain.DefaultSpeed
	}

	if err := s.playback.Start(rangeStart, rangeEnd, req.Speed); err != nil {
		switch {
		case errors.Is(err, engine.ErrSessionActive):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, engine.ErrUnknownSpeed), errors.Is(err, engine.ErrInvalidRange):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.logger.Error("playback start failed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to start playback")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "started",
		"statistics": s.playback.Statistics(),
	})
}

func (s *Server) handlePause(w http.ResponseWriter, _ *http.Request) {
	s.playback.Pause()
	writeJSON(w, http.StatusOK, map[string]string{"status": "paused"})
}

func (s *Server) handleResume(w http.ResponseWriter, _ *http.Request) {
	s.playback.Resume()
	writeJSON(w, http.StatusOK, map[string]string{"status": "resumed"})
}

func (s *Server) handleStop(w http.ResponseWriter, _ *http.Request) {
	s.playback.Stop()
	writeJSON(w, http.StatusOK, map[string]string{"status": "stopped"})
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	var req speedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := s.playback.ChangeSpeed(req.Speed); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "speed": req.Speed})
}

func (s *Server) handleStatistics(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.playback.Statistics())
}

type speedOption struct {
	Key          string  `json:"key"`
	Label        string  `json:"label"`
	HoursPerTick int     `json:"hours_per_tick"`
	FadeSeconds  float64 `json:"fade_duration"`
}

func (s *Server) handleConfig(w http.ResponseWriter, _ *http.Request) {
	tiers := domain.SpeedTiers()
	options := make([]speedOption, len(tiers))
	for i, tier := range tiers {
		options[i] = speedOption{
			Key:          tier.Key,
			Label:        tier.Label,
			HoursPerTick: tier.Hours,
			FadeSeconds:  tier.FadeSeconds(),
		}
	}
	rangeStart, rangeEnd := domain.DefaultRange(time.Now())
	writeJSON(w, http.StatusOK, map[string]any{
		"speeds":        options,
		"default_speed": domain.DefaultSpeed,
		"default_range": map[string]string{
			"start": rangeStart.Format("2006-01-02"),
			"end":   rangeEnd.Format("2006-01-02"),
		},
	})
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

// parsePlaybackTime accepts either a bare date or a full RFC 3339 timestamp.
func parsePlaybackTime(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, time.UTC); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
