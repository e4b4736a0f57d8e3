// Package health serves the operational endpoints of the simulator: the
// Prometheus scrape path and liveness/readiness probes.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dguillot-gh/Sports-Betting-Analyzer/internal/metrics"
)

// StatsPinger checks connectivity of the statistics source. Only the
// postgres source has one.
type StatsPinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string `json:"status"`
	Service   string `json:"service"`
	Timestamp string `json:"timestamp,omitempty"`
	Version   string `json:"version,omitempty"`
}

// ReadyResponse represents the JSON response for readiness check endpoints.
type ReadyResponse struct {
	Status   string            `json:"status"`
	Service  string            `json:"service"`
	Checks   map[string]string `json:"checks,omitempty"`
	Duration string            `json:"duration,omitempty"`
}

// Config holds the configuration for the operational server.
type Config struct {
	ServiceName string
	Version     string
	// Addr is the listen address, e.g. ":9090". Port 0 picks a free port.
	Addr        string
	MetricsPath string
	Logger      *logrus.Logger
	Stats       StatsPinger
}

// Server exposes metrics and probes while a simulation command runs.
type Server struct {
	cfg      Config
	server   *http.Server
	listener net.Listener
	mu       sync.RWMutex
	ready    bool
}

// NewServer creates a new operational server.
func NewServer(cfg Config) *Server {
	if cfg.MetricsPath == "" {
		cfg.MetricsPath = "/metrics"
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Server{cfg: cfg}
}

// SetReady marks the server as ready to accept traffic.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// IsReady returns whether the server is ready.
func (s *Server) IsReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Handler returns the routes served by the server.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle(s.cfg.MetricsPath, metrics.Handler())
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	return mux
}

// Start binds the listen address and serves in the background until ctx is
// cancelled or Shutdown is called. Bind errors are returned synchronously.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	s.listener = listener
	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.cfg.Logger.WithFields(logrus.Fields{
		"addr":    listener.Addr().String(),
		"metrics": s.cfg.MetricsPath,
	}).Info("Operational server starting")

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.cfg.Logger.WithError(err).Error("Operational server error")
		}
	}()
	go func() {
		<-ctx.Done()
		_ = s.Shutdown()
	}()
	return nil
}

// Addr returns the bound address, or an empty string before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Service:   s.cfg.ServiceName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   s.cfg.Version,
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	checks := make(map[string]string)
	healthy := true

	if s.IsReady() {
		checks["service"] = "ok"
	} else {
		healthy = false
		checks["service"] = "not_ready"
	}

	if s.cfg.Stats != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := s.cfg.Stats.Ping(ctx); err != nil {
			healthy = false
			checks["stats"] = fmt.Sprintf("error: %v", err)
		} else {
			checks["stats"] = "ok"
		}
	}

	response := ReadyResponse{
		Status:   "ok",
		Service:  s.cfg.ServiceName,
		Checks:   checks,
		Duration: time.Since(start).String(),
	}
	status := http.StatusOK
	if !healthy {
		response.Status = "not_ready"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, response)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
