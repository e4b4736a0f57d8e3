package simulation

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/dguillot-gh/Sports-Betting-Analyzer/internal/config"
)

// StrengthFromConfig converts app config to strength model config
func StrengthFromConfig(cfg *config.StrengthConfig) (StrengthConfig, error) {
	if cfg == nil {
		return StrengthConfig{}, fmt.Errorf("strength config is required")
	}
	sc := StrengthConfig{
		FieldSize:             cfg.FieldSize,
		FloorStrength:         cfg.FloorStrength,
		QualifyingCoefficient: cfg.QualifyingCoefficient,
		BaseWeight:            cfg.Weights.Base,
		RecencyWeight:         cfg.Weights.Recency,
		TrackWeight:           cfg.Weights.Track,
		RecentRaces:           cfg.RecentRaces,
		TrackCategories:       cfg.TrackCategoryMap(),
	}
	return sc, sc.Validate()
}

// RaceFromConfig converts app config to race model config
func RaceFromConfig(cfg *config.SimulationConfig) (RaceConfig, error) {
	if cfg == nil {
		return RaceConfig{}, fmt.Errorf("simulation config is required")
	}
	rc := RaceConfig{
		GridNoise:     cfg.GridNoise,
		StageNoise:    cfg.StageNoise,
		FinalNoise:    cfg.FinalNoise,
		PitStdDev:     cfg.PitStdDev,
		PositionBonus: cfg.PositionBonus,
	}
	return rc, rc.Validate()
}

// NewFromConfig wires an estimator, a race simulator and an aggregator from
// the application configuration.
func NewFromConfig(cfg *config.Config, lookup StatsLookup, log *logrus.Logger, opts ...Option) (*MonteCarloAggregator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	strengthCfg, err := StrengthFromConfig(&cfg.Strength)
	if err != nil {
		return nil, fmt.Errorf("invalid strength config: %w", err)
	}
	raceCfg, err := RaceFromConfig(&cfg.Simulation)
	if err != nil {
		return nil, fmt.Errorf("invalid race config: %w", err)
	}

	estimator, err := NewStrengthEstimator(lookup, strengthCfg, log)
	if err != nil {
		return nil, err
	}
	race, err := NewRaceSimulator(raceCfg, strengthCfg.FloorStrength)
	if err != nil {
		return nil, err
	}

	opts = append([]Option{WithLogger(log)}, opts...)
	return NewMonteCarloAggregator(estimator, race, AggregatorConfig{
		Workers:        cfg.Simulation.Workers,
		MaxSimulations: cfg.Simulation.MaxSimulations,
	}, opts...)
}
