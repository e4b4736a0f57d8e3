package metrics

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
	assert.Same(t, registry, InitRegistry())
}

func TestRecordSimulationRequest(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(SimulationRequestsTotal.WithLabelValues(StatusRejected))

	RecordSimulationRequest(StatusRejected)

	assert.Equal(t, before+1, testutil.ToFloat64(SimulationRequestsTotal.WithLabelValues(StatusRejected)))
}

func TestAddRacesSimulated(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(SimulationRacesTotal)

	AddRacesSimulated(250)

	assert.Equal(t, before+250, testutil.ToFloat64(SimulationRacesTotal))
}

func TestSimulationGaugesAndRetries(t *testing.T) {
	InitRegistry()

	baseline := testutil.ToFloat64(SimulationWorkers)
	AddSimulationWorkers(4)
	AddSimulationWorkers(8)
	AddSimulationWorkers(-4)
	assert.Equal(t, baseline+8, testutil.ToFloat64(SimulationWorkers))
	AddSimulationWorkers(-8)
	assert.Equal(t, baseline, testutil.ToFloat64(SimulationWorkers))

	before := testutil.ToFloat64(SimulationRunRetriesTotal)
	RecordRunRetry()
	assert.Equal(t, before+1, testutil.ToFloat64(SimulationRunRetriesTotal))

	assert.NotPanics(t, func() {
		ObserveSimulationDuration(0.25)
	})
}

func TestStatsLookupMetrics(t *testing.T) {
	InitRegistry()
	before := testutil.ToFloat64(StatsLookupsTotal.WithLabelValues(LookupHit))

	RecordStatsLookup(LookupHit)
	UpdateStatsCacheHitRatio(0.75)

	assert.Equal(t, before+1, testutil.ToFloat64(StatsLookupsTotal.WithLabelValues(LookupHit)))
	assert.Equal(t, 0.75, testutil.ToFloat64(StatsCacheHitRatio))
}

func TestHandlerServesMetrics(t *testing.T) {
	InitRegistry()
	RecordSimulationRequest(StatusSuccess)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "racesim_simulation_requests_total")
}

func TestWriteText(t *testing.T) {
	InitRegistry()
	AddRacesSimulated(1)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf))
	assert.Contains(t, buf.String(), "racesim_simulation_races_total")
}
