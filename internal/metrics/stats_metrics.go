// Package metrics defines statistics lookup metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Lookup result label values
const (
	LookupHit   = "hit"
	LookupMiss  = "miss"
	LookupError = "error"
)

// Stats lookup metrics
var (
	StatsLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stats_lookups_total",
		Help:      "Total number of stats cache lookups by result",
	}, []string{"result"})
	StatsCacheHitRatio = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stats_cache_hit_ratio",
		Help:      "Stats cache hit ratio",
	})
)

// RecordStatsLookup records a stats lookup result.
func RecordStatsLookup(result string) {
	StatsLookupsTotal.WithLabelValues(result).Inc()
}

// UpdateStatsCacheHitRatio updates the cache hit ratio gauge.
func UpdateStatsCacheHitRatio(ratio float64) {
	StatsCacheHitRatio.Set(ratio)
}
