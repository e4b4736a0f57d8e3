// Package metrics defines simulation-specific metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Request status label values
const (
	StatusSuccess   = "success"
	StatusRejected  = "rejected"
	StatusFailure   = "failure"
	StatusCancelled = "cancelled"
)

// Simulation counter vectors
var (
	SimulationRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "simulation_requests_total",
		Help:      "Total number of Monte Carlo requests by status",
	}, []string{"status"})
	SimulationRacesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "simulation_races_total",
		Help:      "Total number of simulated races",
	})
	SimulationRunRetriesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "simulation_run_retries_total",
		Help:      "Total number of runs retried after a computation error",
	})
)

// Simulation histograms and gauges
var (
	SimulationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "simulation_duration_seconds",
		Help:      "Duration of Monte Carlo requests in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
	})
	SimulationWorkers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "simulation_workers",
		Help:      "Number of simulation workers currently running",
	})
)

// RecordSimulationRequest records a finished request.
// status should be one of: "success", "rejected", "failure", "cancelled"
func RecordSimulationRequest(status string) {
	SimulationRequestsTotal.WithLabelValues(status).Inc()
}

// ObserveSimulationDuration records request duration.
func ObserveSimulationDuration(durationSeconds float64) {
	SimulationDuration.Observe(durationSeconds)
}

// AddRacesSimulated adds completed races to the race counter.
func AddRacesSimulated(count int) {
	SimulationRacesTotal.Add(float64(count))
}

// RecordRunRetry records a retried run.
func RecordRunRetry() {
	SimulationRunRetriesTotal.Inc()
}

// AddSimulationWorkers adjusts the running worker gauge. Requests add their
// workers on start and subtract them when they finish.
func AddSimulationWorkers(delta int) {
	SimulationWorkers.Add(float64(delta))
}
