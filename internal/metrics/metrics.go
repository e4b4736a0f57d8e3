// Package metrics provides the Prometheus registry for the race simulator.
package metrics

import (
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

const namespace = "racesim"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register simulation metrics
		registry.MustRegister(SimulationRequestsTotal)
		registry.MustRegister(SimulationDuration)
		registry.MustRegister(SimulationRacesTotal)
		registry.MustRegister(SimulationRunRetriesTotal)
		registry.MustRegister(SimulationWorkers)

		// Register stats lookup metrics
		registry.MustRegister(StatsLookupsTotal)
		registry.MustRegister(StatsCacheHitRatio)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// WriteText writes the current registry contents in the Prometheus text format.
func WriteText(w io.Writer) error {
	families, err := GetRegistry().Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, family := range families {
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return fmt.Errorf("failed to encode metric %s: %w", family.GetName(), err)
		}
	}
	return nil
}
