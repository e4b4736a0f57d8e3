package models

import "github.com/google/uuid"

// AggregateResult summarises the finishing positions of one competitor
// across every run of a request.
type AggregateResult struct {
	CompetitorID     string  `json:"competitor_id"`
	AvgFinish        float64 `json:"avg_finish"`
	WinProbability   float64 `json:"win_probability"`
	Top5Probability  float64 `json:"top5_probability"`
	Top10Probability float64 `json:"top10_probability"`
	BestFinish       int     `json:"best_finish"`
	WorstFinish      int     `json:"worst_finish"`
}

// SimulationMetadata describes how a response was produced.
type SimulationMetadata struct {
	RequestID   uuid.UUID `json:"request_id"`
	Year        int       `json:"year"`
	TrackType   string    `json:"track_type"`
	Simulations int       `json:"simulations"`
	DriverCount int       `json:"driver_count"`
	Seed        int64     `json:"seed"`
	Workers     int       `json:"workers"`
	DurationMs  int64     `json:"duration_ms"`
}

// SimulationResponse is the complete output of a Monte Carlo request.
type SimulationResponse struct {
	Metadata SimulationMetadata `json:"metadata"`
	Results  []AggregateResult  `json:"results"`
}
