package simulation

import (
	"errors"
	"fmt"

	"github.com/dguillot-gh/Sports-Betting-Analyzer/internal/models"
)

// Stage names reported in computation errors.
const (
	StageGrid  = "grid"
	StageOne   = "stage_1"
	StagePit1  = "pit_1"
	StageTwo   = "stage_2"
	StagePit2  = "pit_2"
	StageFinal = "final"
)

// RaceConfig holds the noise parameters of the race model.
type RaceConfig struct {
	GridNoise     float64
	StageNoise    float64
	FinalNoise    float64
	PitStdDev     float64
	PositionBonus float64
}

// DefaultRaceConfig returns the default race model parameters.
func DefaultRaceConfig() RaceConfig {
	return RaceConfig{
		GridNoise:     1.0,
		StageNoise:    0.6,
		FinalNoise:    0.5,
		PitStdDev:     2.0,
		PositionBonus: 0.01,
	}
}

// Validate validates race model parameters
func (c RaceConfig) Validate() error {
	if c.GridNoise <= 0 || c.StageNoise <= 0 || c.FinalNoise <= 0 {
		return fmt.Errorf("noise scales must be positive")
	}
	if c.PitStdDev < 0 {
		return fmt.Errorf("pit standard deviation cannot be negative")
	}
	if c.PositionBonus < 0 {
		return fmt.Errorf("position bonus cannot be negative")
	}
	return nil
}

// RaceSimulator runs one race from grid to finish.
type RaceSimulator struct {
	config RaceConfig
	stage  StageSimulator
}

// NewRaceSimulator creates a new race simulator
func NewRaceSimulator(cfg RaceConfig, floorStrength float64) (*RaceSimulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid race config: %w", err)
	}
	return &RaceSimulator{
		config: cfg,
		stage:  StageSimulator{PositionBonus: cfg.PositionBonus, FloorStrength: floorStrength},
	}, nil
}

// Config returns the race model configuration
func (r *RaceSimulator) Config() RaceConfig {
	return r.config
}

// Simulate runs grid, stage 1, pit cycle, stage 2, pit cycle and the final
// stage, drawing everything from rng. Index 0 of the result is the winner.
func (r *RaceSimulator) Simulate(strengths Strengths, rng RandomSource) ([]string, error) {
	order := strengths.IDs()
	steps := []struct {
		name string
		run  func([]string) ([]string, error)
	}{
		{StageGrid, r.stageStep(strengths, r.config.GridNoise, rng)},
		{StageOne, r.stageStep(strengths, r.config.StageNoise, rng)},
		{StagePit1, r.pitStep(rng)},
		{StageTwo, r.stageStep(strengths, r.config.StageNoise, rng)},
		{StagePit2, r.pitStep(rng)},
		{StageFinal, r.stageStep(strengths, r.config.FinalNoise, rng)},
	}

	for _, step := range steps {
		next, err := step.run(order)
		if err != nil {
			var compErr *models.ComputationError
			if errors.As(err, &compErr) {
				compErr.Stage = step.name
			}
			return nil, err
		}
		order = next
	}
	return order, nil
}

func (r *RaceSimulator) stageStep(strengths Strengths, noise float64, rng RandomSource) func([]string) ([]string, error) {
	return func(lineup []string) ([]string, error) {
		return r.stage.Simulate(lineup, strengths, noise, rng)
	}
}

func (r *RaceSimulator) pitStep(rng RandomSource) func([]string) ([]string, error) {
	return func(lineup []string) ([]string, error) {
		return perturbPits(lineup, r.config.PitStdDev, rng)
	}
}
