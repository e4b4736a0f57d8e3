package simulation

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dguillot-gh/Sports-Betting-Analyzer/internal/models"
)

func TestRate(t *testing.T) {
	estimator := newTestEstimator(t, newFakeLookup())
	keys := []string{"Intermediate", CategoryPaved}

	tests := []struct {
		name   string
		record func() *models.CompetitorStatsRecord
		want   float64
	}{
		{
			name: "exact split",
			record: func() *models.CompetitorStatsRecord {
				r := record("A", 2024, 10, 10, 5, 5, 5, 5, 5, 5)
				r.Splits["Intermediate"] = models.SplitStats{Races: 2, AvgFinish: 4}
				r.Splits[CategoryPaved] = models.SplitStats{Races: 4, AvgFinish: 8}
				return r
			},
			// (0.4*2 + 0.3*4 + 0.3*5) * 1.05
			want: 3.675,
		},
		{
			name: "category fallback",
			record: func() *models.CompetitorStatsRecord {
				r := record("A", 2024, 10, 10, 5, 5, 5, 5, 5)
				r.Splits[CategoryPaved] = models.SplitStats{Races: 4, AvgFinish: 8}
				return r
			},
			want: (0.8 + 1.2 + 0.75) * 1.05,
		},
		{
			name: "empty split falls back to base",
			record: func() *models.CompetitorStatsRecord {
				r := record("A", 2024, 10, 10, 5, 5, 5, 5, 5)
				r.Splits["Intermediate"] = models.SplitStats{}
				return r
			},
			want: (0.8 + 1.2 + 0.6) * 1.05,
		},
		{
			name: "no history uses base for recency",
			record: func() *models.CompetitorStatsRecord {
				r := record("A", 2024, 10, 10)
				r.History = nil
				return r
			},
			want: 2 * 1.05,
		},
		{
			name: "finish below one is floored",
			record: func() *models.CompetitorStatsRecord {
				r := record("A", 2024, 0.5, 20)
				r.History = nil
				return r
			},
			want: 20,
		},
		{
			name: "unknown average start is neutral",
			record: func() *models.CompetitorStatsRecord {
				r := record("A", 2024, 10, 0)
				r.History = nil
				return r
			},
			want: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, estimator.Rate(tt.record(), keys), 1e-9)
		})
	}
}

func TestRateRecencySkipsUnclassified(t *testing.T) {
	estimator := newTestEstimator(t, newFakeLookup())
	two, four := 2, 4
	r := record("A", 2024, 20, 20)
	r.History = []models.RaceFinish{
		{RaceNumber: 4},
		{RaceNumber: 3, Finish: &two},
		{RaceNumber: 2},
		{RaceNumber: 1, Finish: &four},
	}

	// base = 1, recency = 20/3, track = base, qualifying = 1
	want := 0.4 + 0.3*20.0/3.0 + 0.3
	assert.InDelta(t, want, estimator.Rate(r, []string{"Intermediate"}), 1e-9)
}

func TestRateUsesFiveMostRecent(t *testing.T) {
	estimator := newTestEstimator(t, newFakeLookup())
	r := record("A", 2024, 20, 20, 1, 1, 1, 1, 1, 40, 40)

	want := 0.4 + 0.3*20 + 0.3
	assert.InDelta(t, want, estimator.Rate(r, nil), 1e-9)
}

func TestEstimate(t *testing.T) {
	ctx := context.Background()

	t.Run("target season", func(t *testing.T) {
		lookup := newFakeLookup(record("A", 2024, 10, 20), record("A", 2023, 1, 1))
		strength, err := newTestEstimator(t, lookup).Estimate(ctx, "A", 2024, "Intermediate")
		require.NoError(t, err)
		// base 2, recency 2, track 2, qualifying 1
		assert.InDelta(t, 2.0, strength, 1e-9)
		assert.Equal(t, 1, lookup.calls)
	})

	t.Run("prior season when target absent", func(t *testing.T) {
		lookup := newFakeLookup(record("A", 2023, 5, 20))
		strength, err := newTestEstimator(t, lookup).Estimate(ctx, "A", 2024, "Intermediate")
		require.NoError(t, err)
		assert.InDelta(t, 4.0, strength, 1e-9)
		assert.Equal(t, 2, lookup.calls)
	})

	t.Run("prior season when target has no races", func(t *testing.T) {
		empty := record("A", 2024, 1, 1)
		empty.Stats.Races = 0
		lookup := newFakeLookup(empty, record("A", 2023, 5, 20))
		strength, err := newTestEstimator(t, lookup).Estimate(ctx, "A", 2024, "Intermediate")
		require.NoError(t, err)
		assert.InDelta(t, 4.0, strength, 1e-9)
	})

	t.Run("floor when no data", func(t *testing.T) {
		lookup := newFakeLookup(record("A", 2021, 1, 1))
		strength, err := newTestEstimator(t, lookup).Estimate(ctx, "A", 2024, "Intermediate")
		require.NoError(t, err)
		assert.Equal(t, 0.5, strength)
	})

	t.Run("floor when formula is not positive", func(t *testing.T) {
		lookup := newFakeLookup(record("A", 2024, 10, 500))
		strength, err := newTestEstimator(t, lookup).Estimate(ctx, "A", 2024, "Intermediate")
		require.NoError(t, err)
		assert.Equal(t, 0.5, strength)
	})

	t.Run("non-finite strength is passed through", func(t *testing.T) {
		lookup := newFakeLookup(record("A", 2024, math.NaN(), 10))
		strength, err := newTestEstimator(t, lookup).Estimate(ctx, "A", 2024, "Intermediate")
		require.NoError(t, err)
		assert.True(t, math.IsNaN(strength))
	})

	t.Run("lookup error", func(t *testing.T) {
		boom := errors.New("disk on fire")
		lookup := newFakeLookup()
		lookup.err = boom
		_, err := newTestEstimator(t, lookup).Estimate(ctx, "A", 2024, "Intermediate")
		assert.ErrorIs(t, err, boom)
	})

	t.Run("unknown track type", func(t *testing.T) {
		_, err := newTestEstimator(t, newFakeLookup()).Estimate(ctx, "A", 2024, "Dirt")
		assert.ErrorIs(t, err, models.ErrInvalidRequest)
	})
}

func TestEstimateIsDeterministic(t *testing.T) {
	r := record("A", 2024, 7.5, 11, 3, 9, 14, 2)
	r.Splits["Road Course"] = models.SplitStats{Races: 1, AvgFinish: 3}
	estimator := newTestEstimator(t, newFakeLookup(r))

	first, err := estimator.Estimate(context.Background(), "A", 2024, "Road Course")
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := estimator.Estimate(context.Background(), "A", 2024, "Road Course")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestEstimateAll(t *testing.T) {
	lookup := newFakeLookup(record("B", 2024, 10, 20), record("A", 2024, 5, 20))
	strengths, err := newTestEstimator(t, lookup).EstimateAll(context.Background(), []string{"B", "A", "ghost"}, 2024, CategoryPaved)
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "B", "ghost"}, strengths.IDs())
	ghost, ok := strengths.Get("ghost")
	require.True(t, ok)
	assert.Equal(t, 0.5, ghost)
	for _, id := range strengths.IDs() {
		v, _ := strengths.Get(id)
		assert.Greater(t, v, 0.0)
	}
}

func TestStrengthConfigValidate(t *testing.T) {
	cfg := DefaultStrengthConfig()
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.FloorStrength = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.RecencyWeight = -0.1
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.TrackCategories = nil
	assert.Error(t, bad.Validate())

	_, err := NewStrengthEstimator(nil, cfg, nil)
	assert.Error(t, err)
}

func TestStrengthsWithFloor(t *testing.T) {
	s := NewStrengths(map[string]float64{"A": 1.5, "B": math.NaN(), "C": -1, "D": math.Inf(1)})
	floored := s.WithFloor(0.5)

	assert.Equal(t, map[string]float64{"A": 1.5, "B": 0.5, "C": 0.5, "D": 0.5}, floored.Map())
	b, _ := s.Get("B")
	assert.True(t, math.IsNaN(b))
}

func TestTrackCatalog(t *testing.T) {
	catalog := NewTrackCatalog(DefaultTrackCategories())

	keys, err := catalog.SplitKeys("Short Track")
	require.NoError(t, err)
	assert.Equal(t, []string{"Short Track", CategoryPaved}, keys)

	keys, err = catalog.SplitKeys(CategoryRoad)
	require.NoError(t, err)
	assert.Equal(t, []string{CategoryRoad}, keys)

	_, err = catalog.SplitKeys("Dirt")
	var invalid *models.InvalidRequestError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "track_type", invalid.Field)

	assert.Equal(t, []string{"Concrete", "Flat", "Intermediate", "Road Course", "Short Track", "Superspeedway", "paved", "road"}, catalog.TrackTypes())
}
