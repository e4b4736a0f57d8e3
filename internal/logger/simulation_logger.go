// Package logger provides simulation-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// SimulationLogger provides dedicated logging for Monte Carlo requests.
type SimulationLogger struct {
	*logrus.Entry
}

// NewSimulationLogger creates a new simulation logger.
func NewSimulationLogger(baseLogger *logrus.Logger) *SimulationLogger {
	return &SimulationLogger{
		Entry: baseLogger.WithField("component", "simulation"),
	}
}

// LogSimulationStarted logs the start of a request once strengths are known.
func (sl *SimulationLogger) LogSimulationStarted(requestID string, competitors, simulations, workers int, seed int64) {
	sl.WithFields(logrus.Fields{
		"request_id":  requestID,
		"competitors": competitors,
		"simulations": simulations,
		"workers":     workers,
		"seed":        seed,
	}).Info("Monte Carlo simulation started")
}

// LogSimulationCompleted logs a completed request.
func (sl *SimulationLogger) LogSimulationCompleted(requestID string, simulations, results int, durationMs float64) {
	sl.WithFields(logrus.Fields{
		"request_id":  requestID,
		"simulations": simulations,
		"results":     results,
		"duration_ms": durationMs,
	}).Info("Monte Carlo simulation completed")
}

// LogSimulationFailed logs a rejected or failed request.
func (sl *SimulationLogger) LogSimulationFailed(requestID string, err error) {
	sl.WithFields(logrus.Fields{
		"request_id": requestID,
		"event_type": "failure",
	}).WithError(err).Error("Monte Carlo simulation failed")
}

// LogRunRetry logs a run retried with floor strengths after a computation error.
func (sl *SimulationLogger) LogRunRetry(run int, competitorID, stage string, err error) {
	sl.WithFields(logrus.Fields{
		"run":           run,
		"competitor_id": competitorID,
		"stage":         stage,
		"event_type":    "retry",
	}).WithError(err).Warn("Simulation run produced a non-finite value, retrying with floor strengths")
}

// LogStrengthFallback logs a competitor rated at the floor strength.
func (sl *SimulationLogger) LogStrengthFallback(competitorID string, season int, reason string) {
	sl.WithFields(logrus.Fields{
		"competitor_id": competitorID,
		"season":        season,
		"reason":        reason,
	}).Debug("Using floor strength")
}
