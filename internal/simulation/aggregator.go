package simulation

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/dguillot-gh/Sports-Betting-Analyzer/internal/logger"
	"github.com/dguillot-gh/Sports-Betting-Analyzer/internal/metrics"
	"github.com/dguillot-gh/Sports-Betting-Analyzer/internal/models"
)

// Request is one Monte Carlo request.
type Request struct {
	Competitors    []string
	SeasonYear     int
	TrackType      string
	NumSimulations int
	// Seed is the master seed. Zero draws a fresh seed, reported back in the
	// response metadata.
	Seed int64
}

// Validate validates a request against the simulation cap
func (r Request) Validate(maxSimulations int) error {
	if r.NumSimulations < 1 {
		return models.NewInvalidRequestError("num_simulations", fmt.Sprintf("must be at least 1, got %d", r.NumSimulations))
	}
	if maxSimulations > 0 && r.NumSimulations > maxSimulations {
		return models.NewInvalidRequestError("num_simulations", fmt.Sprintf("%d exceeds the limit of %d", r.NumSimulations, maxSimulations))
	}
	seen := make(map[string]struct{}, len(r.Competitors))
	for _, id := range r.Competitors {
		if strings.TrimSpace(id) == "" {
			return models.NewInvalidRequestError("competitors", "competitor IDs cannot be blank")
		}
		if _, dup := seen[id]; dup {
			return models.NewInvalidRequestError("competitors", fmt.Sprintf("duplicate competitor %q", id))
		}
		seen[id] = struct{}{}
	}
	return nil
}

// AggregatorConfig bounds the work an aggregator performs.
type AggregatorConfig struct {
	// Workers caps parallel simulation workers; zero means runtime.NumCPU().
	Workers        int
	MaxSimulations int
}

// Option configures a MonteCarloAggregator.
type Option func(*MonteCarloAggregator)

// WithStreamFactory overrides how per-run random sources are derived.
func WithStreamFactory(streams StreamFactory) Option {
	return func(a *MonteCarloAggregator) {
		if streams != nil {
			a.streams = streams
		}
	}
}

// WithLogger sets the base logger.
func WithLogger(log *logrus.Logger) Option {
	return func(a *MonteCarloAggregator) {
		if log != nil {
			a.logger = logger.NewSimulationLogger(log)
		}
	}
}

// MonteCarloAggregator drives independent race simulations and reduces them
// into per-competitor statistics.
type MonteCarloAggregator struct {
	estimator *StrengthEstimator
	race      *RaceSimulator
	config    AggregatorConfig
	streams   StreamFactory
	logger    *logger.SimulationLogger
}

// NewMonteCarloAggregator creates a new aggregator
func NewMonteCarloAggregator(estimator *StrengthEstimator, race *RaceSimulator, cfg AggregatorConfig, opts ...Option) (*MonteCarloAggregator, error) {
	if estimator == nil {
		return nil, fmt.Errorf("strength estimator is required")
	}
	if race == nil {
		return nil, fmt.Errorf("race simulator is required")
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("workers cannot be negative")
	}
	if cfg.MaxSimulations <= 0 {
		return nil, fmt.Errorf("max simulations must be positive")
	}

	a := &MonteCarloAggregator{
		estimator: estimator,
		race:      race,
		config:    cfg,
		streams:   NewPCGStream,
		logger:    logger.NewSimulationLogger(logrus.New()),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Estimator returns the strength estimator used by Run.
func (a *MonteCarloAggregator) Estimator() *StrengthEstimator {
	return a.estimator
}

// Run validates the request, computes the strength table once and simulates
// NumSimulations races. It returns either the complete result set or an
// error, never partial statistics.
func (a *MonteCarloAggregator) Run(ctx context.Context, req Request) (*models.SimulationResponse, error) {
	start := time.Now()
	requestID := uuid.New()

	response, err := a.run(ctx, requestID, req)
	metrics.ObserveSimulationDuration(time.Since(start).Seconds())
	if err != nil {
		metrics.RecordSimulationRequest(requestStatus(err))
		a.logger.LogSimulationFailed(requestID.String(), err)
		return nil, err
	}

	response.Metadata.DurationMs = time.Since(start).Milliseconds()
	metrics.RecordSimulationRequest(metrics.StatusSuccess)
	a.logger.LogSimulationCompleted(requestID.String(), req.NumSimulations, len(response.Results), float64(response.Metadata.DurationMs))
	return response, nil
}

func (a *MonteCarloAggregator) run(ctx context.Context, requestID uuid.UUID, req Request) (*models.SimulationResponse, error) {
	if err := req.Validate(a.config.MaxSimulations); err != nil {
		return nil, err
	}
	if _, err := a.estimator.Catalog().SplitKeys(req.TrackType); err != nil {
		return nil, err
	}

	seed := req.Seed
	if seed == 0 {
		var err error
		if seed, err = NewSeed(); err != nil {
			return nil, err
		}
	}

	response := &models.SimulationResponse{
		Metadata: models.SimulationMetadata{
			RequestID:   requestID,
			Year:        req.SeasonYear,
			TrackType:   req.TrackType,
			Simulations: req.NumSimulations,
			DriverCount: len(req.Competitors),
			Seed:        seed,
		},
		Results: []models.AggregateResult{},
	}
	if len(req.Competitors) == 0 {
		return response, nil
	}

	strengths, err := a.estimator.EstimateAll(ctx, req.Competitors, req.SeasonYear, req.TrackType)
	if err != nil {
		return nil, err
	}

	workers := a.workerCount(req.NumSimulations)
	a.logger.LogSimulationStarted(requestID.String(), strengths.Len(), req.NumSimulations, workers, seed)

	results, err := a.simulate(ctx, strengths, req.NumSimulations, seed, workers)
	if err != nil {
		return nil, err
	}
	response.Metadata.Workers = workers
	response.Results = results
	return response, nil
}

// Simulate runs numSimulations races over a precomputed strength table.
func (a *MonteCarloAggregator) Simulate(ctx context.Context, strengths Strengths, numSimulations int, seed int64) ([]models.AggregateResult, error) {
	if err := (Request{NumSimulations: numSimulations}).Validate(a.config.MaxSimulations); err != nil {
		return nil, err
	}
	if strengths.Len() == 0 {
		return []models.AggregateResult{}, nil
	}
	return a.simulate(ctx, strengths, numSimulations, seed, a.workerCount(numSimulations))
}

func (a *MonteCarloAggregator) simulate(ctx context.Context, strengths Strengths, numSimulations int, seed int64, workers int) ([]models.AggregateResult, error) {
	ids := strengths.IDs()
	floored := strengths.WithFloor(a.estimator.Config().FloorStrength)
	tallies := make([]*tally, workers)
	chunk := (numSimulations + workers - 1) / workers

	metrics.AddSimulationWorkers(workers)
	defer metrics.AddSimulationWorkers(-workers)

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		from := w * chunk
		to := min(from+chunk, numSimulations)
		local := newTally(ids)
		tallies[w] = local
		if from >= to {
			continue
		}
		g.Go(func() error {
			for run := from; run < to; run++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				order, err := a.runOnce(strengths, floored, seed, run)
				if err != nil {
					return err
				}
				if err := local.record(order); err != nil {
					return err
				}
			}
			metrics.AddRacesSimulated(to - from)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := newTally(ids)
	for _, t := range tallies {
		merged.merge(t)
	}
	return merged.results(numSimulations)
}

// runOnce simulates run number run. A computation error is retried once on a
// separate stream with floor-substituted strengths; a second failure is fatal.
func (a *MonteCarloAggregator) runOnce(strengths, floored Strengths, seed int64, run int) ([]string, error) {
	order, err := a.race.Simulate(strengths, a.streams(seed, runStream(run)))
	if err == nil {
		return order, nil
	}
	var compErr *models.ComputationError
	if !errors.As(err, &compErr) {
		return nil, err
	}
	compErr.Run = run
	a.logger.LogRunRetry(run, compErr.CompetitorID, compErr.Stage, err)
	metrics.RecordRunRetry()

	order, err = a.race.Simulate(floored, a.streams(seed, retryStream(run)))
	if err != nil {
		if errors.As(err, &compErr) {
			compErr.Run = run
		}
		return nil, fmt.Errorf("run %d failed after retry: %w", run, err)
	}
	return order, nil
}

func (a *MonteCarloAggregator) workerCount(numSimulations int) int {
	workers := a.config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return max(1, min(workers, numSimulations))
}

func requestStatus(err error) string {
	switch {
	case errors.Is(err, models.ErrInvalidRequest):
		return metrics.StatusRejected
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.StatusCancelled
	default:
		return metrics.StatusFailure
	}
}
