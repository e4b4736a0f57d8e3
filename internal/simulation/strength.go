package simulation

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/dguillot-gh/Sports-Betting-Analyzer/internal/logger"
	"github.com/dguillot-gh/Sports-Betting-Analyzer/internal/models"
)

// StatsLookup is the read-only statistics capability the estimator consumes.
// A false second return value means no record exists, which is not an error.
type StatsLookup interface {
	Lookup(ctx context.Context, competitorID string, season int) (*models.CompetitorStatsRecord, bool, error)
}

// StrengthConfig holds the constants of the strength model.
type StrengthConfig struct {
	FieldSize             float64
	FloorStrength         float64
	QualifyingCoefficient float64
	BaseWeight            float64
	RecencyWeight         float64
	TrackWeight           float64
	RecentRaces           int
	TrackCategories       map[string]string
}

// DefaultStrengthConfig returns the empirical defaults of the strength model.
func DefaultStrengthConfig() StrengthConfig {
	return StrengthConfig{
		FieldSize:             20,
		FloorStrength:         0.5,
		QualifyingCoefficient: 0.005,
		BaseWeight:            0.4,
		RecencyWeight:         0.3,
		TrackWeight:           0.3,
		RecentRaces:           5,
		TrackCategories:       DefaultTrackCategories(),
	}
}

// Validate validates strength model parameters
func (c StrengthConfig) Validate() error {
	if c.FieldSize <= 0 {
		return fmt.Errorf("field size must be positive")
	}
	if c.FloorStrength <= 0 {
		return fmt.Errorf("floor strength must be positive")
	}
	if c.BaseWeight < 0 || c.RecencyWeight < 0 || c.TrackWeight < 0 {
		return fmt.Errorf("blend weights cannot be negative")
	}
	if c.BaseWeight+c.RecencyWeight+c.TrackWeight <= 0 {
		return fmt.Errorf("at least one blend weight must be positive")
	}
	if c.RecentRaces <= 0 {
		return fmt.Errorf("recent races must be positive")
	}
	if len(c.TrackCategories) == 0 {
		return fmt.Errorf("track categories are required")
	}
	return nil
}

// StrengthEstimator converts a competitor's historical record into a rating.
type StrengthEstimator struct {
	lookup  StatsLookup
	config  StrengthConfig
	catalog TrackCatalog
	logger  *logger.SimulationLogger
}

// NewStrengthEstimator creates a new strength estimator
func NewStrengthEstimator(lookup StatsLookup, cfg StrengthConfig, log *logrus.Logger) (*StrengthEstimator, error) {
	if lookup == nil {
		return nil, fmt.Errorf("stats lookup is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid strength config: %w", err)
	}
	if log == nil {
		log = logrus.New()
	}
	return &StrengthEstimator{
		lookup:  lookup,
		config:  cfg,
		catalog: NewTrackCatalog(cfg.TrackCategories),
		logger:  logger.NewSimulationLogger(log),
	}, nil
}

// Config returns the strength model configuration
func (e *StrengthEstimator) Config() StrengthConfig {
	return e.config
}

// Catalog returns the track catalog used to resolve split keys
func (e *StrengthEstimator) Catalog() TrackCatalog {
	return e.catalog
}

// Estimate returns the strength of one competitor for targetYear on trackType.
func (e *StrengthEstimator) Estimate(ctx context.Context, competitorID string, targetYear int, trackType string) (float64, error) {
	splitKeys, err := e.catalog.SplitKeys(trackType)
	if err != nil {
		return 0, err
	}
	return e.estimate(ctx, competitorID, targetYear, splitKeys)
}

// EstimateAll computes the strength table for a request. The result is
// immutable and safe to share between simulation workers.
func (e *StrengthEstimator) EstimateAll(ctx context.Context, competitorIDs []string, targetYear int, trackType string) (Strengths, error) {
	splitKeys, err := e.catalog.SplitKeys(trackType)
	if err != nil {
		return Strengths{}, err
	}
	values := make(map[string]float64, len(competitorIDs))
	for _, id := range competitorIDs {
		strength, err := e.estimate(ctx, id, targetYear, splitKeys)
		if err != nil {
			return Strengths{}, err
		}
		values[id] = strength
	}
	return NewStrengths(values), nil
}

func (e *StrengthEstimator) estimate(ctx context.Context, competitorID string, targetYear int, splitKeys []string) (float64, error) {
	record, err := e.seasonRecord(ctx, competitorID, targetYear)
	if err != nil {
		return 0, err
	}
	if record == nil {
		e.logger.LogStrengthFallback(competitorID, targetYear, models.ErrMissingStats.Error())
		return e.config.FloorStrength, nil
	}

	strength := e.Rate(record, splitKeys)
	if !math.IsNaN(strength) && !math.IsInf(strength, 0) && strength <= 0 {
		e.logger.LogStrengthFallback(competitorID, targetYear, "non-positive strength")
		return e.config.FloorStrength, nil
	}
	return strength, nil
}

// seasonRecord fetches targetYear, falling back to the prior season.
// It returns nil when neither season has a counted race.
func (e *StrengthEstimator) seasonRecord(ctx context.Context, competitorID string, targetYear int) (*models.CompetitorStatsRecord, error) {
	for _, season := range []int{targetYear, targetYear - 1} {
		record, found, err := e.lookup.Lookup(ctx, competitorID, season)
		if err != nil {
			return nil, fmt.Errorf("failed to look up stats for %s season %d: %w", competitorID, season, err)
		}
		if found && record.HasRaces() {
			return record, nil
		}
	}
	return nil, nil
}

// Rate applies the strength formula to a record. It performs no lookups and
// is deterministic.
func (e *StrengthEstimator) Rate(record *models.CompetitorStatsRecord, splitKeys []string) float64 {
	k := e.config.FieldSize
	base := k / math.Max(record.Stats.AvgFinish, 1.0)

	recency := base
	if finishes := record.RecentFinishes(e.config.RecentRaces); len(finishes) > 0 {
		recency = k / math.Max(meanInt(finishes), 1.0)
	}

	track := base
	for _, key := range splitKeys {
		if split, ok := record.Split(key); ok {
			track = k / math.Max(split.AvgFinish, 1.0)
			break
		}
	}

	// An unknown average start is treated as a mid-field start.
	qualifying := 1.0
	if record.Stats.AvgStart > 0 {
		qualifying = 1 + (k-record.Stats.AvgStart)*e.config.QualifyingCoefficient
	}
	blended := e.config.BaseWeight*base + e.config.RecencyWeight*recency + e.config.TrackWeight*track
	return blended * qualifying
}

func meanInt(values []int) float64 {
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}
