package simulation

import (
	"context"
	"io"
	"math"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/dguillot-gh/Sports-Betting-Analyzer/internal/models"
)

type seasonKey struct {
	id     string
	season int
}

// fakeLookup serves records from memory and counts calls.
type fakeLookup struct {
	records map[seasonKey]*models.CompetitorStatsRecord
	err     error
	calls   int
}

func newFakeLookup(records ...*models.CompetitorStatsRecord) *fakeLookup {
	l := &fakeLookup{records: make(map[seasonKey]*models.CompetitorStatsRecord)}
	for _, r := range records {
		l.records[seasonKey{r.CompetitorID, r.Season}] = r
	}
	return l
}

func (l *fakeLookup) Lookup(ctx context.Context, competitorID string, season int) (*models.CompetitorStatsRecord, bool, error) {
	l.calls++
	if l.err != nil {
		return nil, false, l.err
	}
	r, ok := l.records[seasonKey{competitorID, season}]
	return r, ok, nil
}

// constSource returns the same draws forever.
type constSource struct {
	u, n float64
}

func (s constSource) Float64() float64     { return s.u }
func (s constSource) NormFloat64() float64 { return s.n }

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func record(id string, season int, avgFinish, avgStart float64, finishes ...int) *models.CompetitorStatsRecord {
	r := &models.CompetitorStatsRecord{
		CompetitorID: id,
		Season:       season,
		Stats:        models.SeasonStats{Races: max(len(finishes), 1), AvgFinish: avgFinish, AvgStart: avgStart},
		Splits:       map[string]models.SplitStats{},
	}
	for i, f := range finishes {
		finish := f
		r.History = append(r.History, models.RaceFinish{RaceNumber: len(finishes) - i, Finish: &finish})
	}
	return r
}

func newTestEstimator(t *testing.T, lookup StatsLookup) *StrengthEstimator {
	t.Helper()
	estimator, err := NewStrengthEstimator(lookup, DefaultStrengthConfig(), quietLogger())
	require.NoError(t, err)
	return estimator
}

func newTestAggregator(t *testing.T, lookup StatsLookup, workers int, opts ...Option) *MonteCarloAggregator {
	t.Helper()
	estimator := newTestEstimator(t, lookup)
	race, err := NewRaceSimulator(DefaultRaceConfig(), estimator.Config().FloorStrength)
	require.NoError(t, err)
	opts = append([]Option{WithLogger(quietLogger())}, opts...)
	aggregator, err := NewMonteCarloAggregator(estimator, race, AggregatorConfig{Workers: workers, MaxSimulations: 50000}, opts...)
	require.NoError(t, err)
	return aggregator
}

func sumWins(results []models.AggregateResult) float64 {
	total := 0.0
	for _, r := range results {
		total += r.WinProbability
	}
	return total
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
