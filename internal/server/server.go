// Package server exposes a Runner over a small JSON HTTP API so a separate
// UI process can drive runs and poll their progress.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/dyluth/sortvis/internal/runner"
)

// Controller is the subset of *runner.Runner the API drives.
type Controller interface {
	Configure(s runner.Settings) error
	Settings() runner.Settings
	Algorithms() []string
	Start(name string) (string, error)
	Cancel()
	PollSequence() []int
	PollStats() runner.Stats
}

// Pinger reports event bus connectivity. *eventbus.Client implements it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// maxBodyBytes caps request bodies; every request body is a small object.
const maxBodyBytes = 1 << 16

// Server serves the control API.
type Server struct {
	ctrl   Controller
	bus    Pinger
	server *http.Server
}

// New creates a server for ctrl listening on addr. bus may be nil when no
// event bus is attached.
func New(ctrl Controller, bus Pinger, addr string) *Server {
	s := &Server{ctrl: ctrl, bus: bus}
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      5 * time.Second,
	}
	return s
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// Handler returns the API's routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.HandleFunc("GET /api/algorithms", s.handleAlgorithms)
	mux.HandleFunc("GET /api/settings", s.handleGetSettings)
	mux.HandleFunc("POST /api/configure", s.handleConfigure)
	mux.HandleFunc("POST /api/start", s.handleStart)
	mux.HandleFunc("POST /api/cancel", s.handleCancel)
	mux.HandleFunc("GET /api/sequence", s.handleSequence)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	return mux
}

// Serve accepts connections on l until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[Server] Listening on %s", l.Addr())
		errCh <- s.server.Serve(l)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Printf("[Server] Shutting down")
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		return nil
	}
}

// ListenAndServe listens on the configured address and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	l, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}
	return s.Serve(ctx, l)
}

// HealthResponse is the JSON response structure for health checks.
type HealthResponse struct {
	Status string `json:"status"`
	Redis  string `json:"redis,omitempty"`
	Error  string `json:"error,omitempty"`
}

// SettingsBody is the wire form of runner.Settings.
type SettingsBody struct {
	Elements     int   `json:"elements"`
	ReadDelayUs  int64 `json:"read_delay_us"`
	WriteDelayUs int64 `json:"write_delay_us"`
}

// StartRequest selects the algorithm for a new run.
type StartRequest struct {
	Algorithm string `json:"algorithm"`
}

// StartResponse identifies the run that was started.
type StartResponse struct {
	RunID string `json:"run_id"`
}

// AlgorithmsResponse lists registered algorithm names in registry order.
type AlgorithmsResponse struct {
	Algorithms []string `json:"algorithms"`
}

// SequenceResponse is a raw snapshot of the sequence.
type SequenceResponse struct {
	Values []int `json:"values"`
}

// StatsResponse is the wire form of runner.Stats.
type StatsResponse struct {
	RunID          string `json:"run_id,omitempty"`
	Algorithm      string `json:"algorithm,omitempty"`
	Status         string `json:"status"`
	Elements       int    `json:"elements"`
	ReadCount      uint64 `json:"read_count"`
	WriteCount     uint64 `json:"write_count"`
	LastAction     string `json:"last_action"`
	LastDurationUs int64  `json:"last_duration_us"`
	ElapsedUs      int64  `json:"elapsed_us"`
}

// ErrorResponse carries a failure message.
type ErrorResponse struct {
	Error string `json:"error"`
}

// handleHealthz returns 200 when the API is up and, if an event bus is
// attached, Redis answers a ping. Otherwise 503.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{Status: "healthy"}
	if s.bus == nil {
		writeJSON(w, http.StatusOK, response)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.bus.Ping(ctx); err != nil {
		response.Status = "unhealthy"
		response.Redis = "disconnected"
		response.Error = err.Error()
		writeJSON(w, http.StatusServiceUnavailable, response)
		return
	}

	response.Redis = "connected"
	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleAlgorithms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, AlgorithmsResponse{Algorithms: s.ctrl.Algorithms()})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings := s.ctrl.Settings()
	writeJSON(w, http.StatusOK, SettingsBody{
		Elements:     settings.Elements,
		ReadDelayUs:  settings.ReadDelay.Microseconds(),
		WriteDelayUs: settings.WriteDelay.Microseconds(),
	})
}

func (s *Server) handleConfigure(w http.ResponseWriter, r *http.Request) {
	var body SettingsBody
	if err := decode(w, r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	err := s.ctrl.Configure(runner.Micros(body.Elements, body.ReadDelayUs, body.WriteDelayUs))
	switch {
	case err == nil:
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, runner.ErrAlreadyRunning):
		writeError(w, http.StatusConflict, err)
	default:
		writeError(w, http.StatusBadRequest, err)
	}
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	runID, err := s.ctrl.Start(req.Algorithm)
	switch {
	case err == nil:
		writeJSON(w, http.StatusAccepted, StartResponse{RunID: runID})
	case errors.Is(err, runner.ErrUnknownAlgorithm):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, runner.ErrAlreadyRunning):
		writeError(w, http.StatusConflict, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	s.ctrl.Cancel()
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleSequence(w http.ResponseWriter, r *http.Request) {
	values := s.ctrl.PollSequence()
	if values == nil {
		values = []int{}
	}
	writeJSON(w, http.StatusOK, SequenceResponse{Values: values})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats := s.ctrl.PollStats()
	writeJSON(w, http.StatusOK, StatsResponse{
		RunID:          stats.RunID,
		Algorithm:      stats.Algorithm,
		Status:         string(stats.Status),
		Elements:       stats.Elements,
		ReadCount:      stats.ReadCount,
		WriteCount:     stats.WriteCount,
		LastAction:     stats.LastAction,
		LastDurationUs: stats.LastDuration.Microseconds(),
		ElapsedUs:      stats.Elapsed.Microseconds(),
	})
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[Server] Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, ErrorResponse{Error: err.Error()})
}
