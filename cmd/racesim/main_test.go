package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dguillot-gh/Sports-Betting-Analyzer/internal/models"
)

func writeConfig(t *testing.T) string {
	t.Helper()
	entries, err := filepath.Abs("../../internal/repository/testdata/race_entries.json")
	require.NoError(t, err)

	body := `
app:
  name: racesim
  environment: development
  log_level: error
stats:
  source: file
  file_path: ` + entries + `
  cache_ttl_seconds: 60
simulation:
  workers: 2
  max_simulations: 5000
  default_simulations: 300
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	a := &app{}
	cmd := newRootCmd(a)
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", writeConfig(t)}, args...))
	err := run(context.Background(), a, cmd)
	return stdout.String(), stderr.String(), err
}

func TestSimulateCommand(t *testing.T) {
	out, _, err := execute(t, "simulate",
		"--competitors", "Kyle Larson,Denny Hamlin,Rookie Driver",
		"--year", "2024", "--track-type", "Intermediate", "--seed", "42")
	require.NoError(t, err)

	var resp models.SimulationResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 300, resp.Metadata.Simulations)
	assert.Equal(t, int64(42), resp.Metadata.Seed)
	require.Len(t, resp.Results, 3)
	assert.Equal(t, "Kyle Larson", resp.Results[0].CompetitorID)
}

func TestSimulateCommandIsReproducible(t *testing.T) {
	args := []string{"simulate", "--competitors", "Kyle Larson,Denny Hamlin", "--year", "2024",
		"--track-type", "road", "--simulations", "500", "--seed", "7"}

	first, _, err := execute(t, args...)
	require.NoError(t, err)
	second, _, err := execute(t, args...)
	require.NoError(t, err)

	var a, b models.SimulationResponse
	require.NoError(t, json.Unmarshal([]byte(first), &a))
	require.NoError(t, json.Unmarshal([]byte(second), &b))
	assert.Equal(t, a.Results, b.Results)
}

func TestSimulateCommandDumpsMetrics(t *testing.T) {
	_, errOut, err := execute(t, "simulate", "--competitors", "A,B", "--year", "2024",
		"--track-type", "paved", "--simulations", "10", "--seed", "1", "--metrics")
	require.NoError(t, err)
	assert.Contains(t, errOut, "racesim_simulation_races_total")
}

func TestSimulateCommandRejectsInvalidCount(t *testing.T) {
	out, _, err := execute(t, "simulate", "--competitors", "A", "--year", "2024",
		"--track-type", "paved", "--simulations", "0")
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidRequest)
	assert.Empty(t, out)
}

func TestStrengthCommand(t *testing.T) {
	out, _, err := execute(t, "strength", "--competitors", "Kyle Larson,Nobody", "--year", "2024", "--track-type", "Intermediate")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "COMPETITOR"))
	assert.True(t, strings.HasPrefix(lines[1], "Kyle Larson"))
	assert.Contains(t, lines[2], "0.5000")
}

func TestTracksCommand(t *testing.T) {
	out, _, err := execute(t, "tracks")
	require.NoError(t, err)
	assert.Contains(t, out, "Road Course")
	assert.Contains(t, out, "paved")
}

func TestSimulateCommandWithRemoteSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "../../internal/repository/testdata/race_entries.json")
	}))
	defer server.Close()

	body := `
app:
  name: racesim
  environment: development
  log_level: error
stats:
  source: http
  http:
    url: ` + server.URL + `
simulation:
  max_simulations: 1000
  default_simulations: 100
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	a := &app{}
	cmd := newRootCmd(a)
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"--config", path, "simulate", "--competitors", "Kyle Larson,Denny Hamlin",
		"--year", "2024", "--track-type", "Flat", "--seed", "5"})
	require.NoError(t, run(context.Background(), a, cmd))

	var resp models.SimulationResponse
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &resp))
	assert.Equal(t, 100, resp.Metadata.Simulations)
	assert.Len(t, resp.Results, 2)
}

func TestRunReleasesDependenciesWhenCommandFails(t *testing.T) {
	free, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := free.Addr().(*net.TCPAddr).Port
	require.NoError(t, free.Close())

	body, err := os.ReadFile(writeConfig(t))
	require.NoError(t, err)
	body = append(body, fmt.Sprintf("metrics:\n  enabled: true\n  port: %d\n  path: /metrics\n", port)...)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, body, 0o600))

	a := &app{}
	cmd := newRootCmd(a)
	cmd.SetOut(io.Discard)
	cmd.SetArgs([]string{"--config", path, "simulate", "--competitors", "Kyle Larson",
		"--year", "2024", "--track-type", "Intermediate", "--simulations", "0"})

	err = run(context.Background(), a, cmd)
	require.ErrorIs(t, err, models.ErrInvalidRequest)

	require.NotNil(t, a.ops, "operational server was started")
	assert.False(t, a.ops.IsReady())
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	require.NoError(t, err, "operational server port is released")
	require.NoError(t, listener.Close())
}
