package health

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dguillot-gh/Sports-Betting-Analyzer/internal/metrics"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(ctx context.Context) error {
	return p.err
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func TestHealthEndpoint(t *testing.T) {
	srv := NewServer(Config{ServiceName: "racesim", Version: "test", Logger: quietLogger()})
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "racesim", body.Service)
	assert.Equal(t, "test", body.Version)
}

func TestReadyEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		ready      bool
		stats      StatsPinger
		wantStatus int
		wantStats  string
	}{
		{"not ready", false, nil, http.StatusServiceUnavailable, ""},
		{"ready without stats source", true, nil, http.StatusOK, ""},
		{"ready with healthy stats", true, stubPinger{}, http.StatusOK, "ok"},
		{"stats unreachable", true, stubPinger{err: errors.New("refused")}, http.StatusServiceUnavailable, "error: refused"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := NewServer(Config{ServiceName: "racesim", Logger: quietLogger(), Stats: tt.stats})
			srv.SetReady(tt.ready)

			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body ReadyResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStats, body.Checks["stats"])
		})
	}
}

func TestServerServesMetrics(t *testing.T) {
	metrics.InitRegistry()
	metrics.AddRacesSimulated(3)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	srv := NewServer(Config{Addr: "127.0.0.1:0", MetricsPath: "/scrape", Logger: quietLogger()})
	require.NoError(t, srv.Start(ctx))
	defer srv.Shutdown()
	require.NotEmpty(t, srv.Addr())

	resp, err := http.Get("http://" + srv.Addr() + "/scrape")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "racesim_simulation_races_total"))
}

func TestServerStartFailsOnBadAddress(t *testing.T) {
	srv := NewServer(Config{Addr: "256.0.0.1:http-nope", Logger: quietLogger()})
	assert.Error(t, srv.Start(context.Background()))
}
