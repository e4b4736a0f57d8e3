package repository

import (
	"context"
	"fmt"

	"github.com/dguillot-gh/Sports-Betting-Analyzer/internal/database"
	"github.com/dguillot-gh/Sports-Betting-Analyzer/internal/models"
)

const (
	seasonStatsQuery = `
		SELECT COUNT(*), COUNT(finish),
		       COALESCE(AVG(finish)::float8, 0),
		       COALESCE((AVG(start) FILTER (WHERE finish IS NOT NULL))::float8, 0),
		       COALESCE(MIN(finish), 0)
		FROM race_entries
		WHERE competitor_id = $1 AND season = $2
	`
	splitStatsQuery = `
		SELECT track_type, COUNT(*), AVG(finish)::float8, COUNT(start), COALESCE(AVG(start)::float8, 0)
		FROM race_entries
		WHERE competitor_id = $1 AND season = $2 AND finish IS NOT NULL AND track_type <> ''
		GROUP BY track_type
		ORDER BY track_type
	`
	historyQuery = `
		SELECT race_num, track_type, start, finish
		FROM race_entries
		WHERE competitor_id = $1 AND season = $2
		ORDER BY race_num DESC
		LIMIT $3
	`
)

// PostgresStatsRepository implements StatsRepository over the race_entries table
type PostgresStatsRepository struct {
	db         database.Querier
	categories map[string]string
}

// NewPostgresStatsRepository creates a new stats repository. Category splits
// are rolled up from the per-track-type rows using categories.
func NewPostgresStatsRepository(db database.Querier, categories map[string]string) *PostgresStatsRepository {
	return &PostgresStatsRepository{db: db, categories: categories}
}

// Lookup aggregates the season record of a competitor
func (r *PostgresStatsRepository) Lookup(ctx context.Context, competitorID string, season int) (*models.CompetitorStatsRecord, bool, error) {
	var rows, races int64
	var bestFinish int32
	record := &models.CompetitorStatsRecord{
		CompetitorID: competitorID,
		Season:       season,
		Splits:       make(map[string]models.SplitStats),
		History:      []models.RaceFinish{},
	}

	err := r.db.QueryRow(ctx, seasonStatsQuery, competitorID, season).Scan(
		&rows, &races, &record.Stats.AvgFinish, &record.Stats.AvgStart, &bestFinish,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to query season stats: %w", err)
	}
	if rows == 0 {
		return nil, false, nil
	}
	record.Stats.Races = int(races)
	record.Stats.BestFinish = int(bestFinish)

	if err := r.loadSplits(ctx, record); err != nil {
		return nil, false, err
	}
	if err := r.loadHistory(ctx, record); err != nil {
		return nil, false, err
	}

	return record, true, nil
}

func (r *PostgresStatsRepository) loadSplits(ctx context.Context, record *models.CompetitorStatsRecord) error {
	rows, err := r.db.Query(ctx, splitStatsQuery, record.CompetitorID, record.Season)
	if err != nil {
		return fmt.Errorf("failed to query split stats: %w", err)
	}
	defer rows.Close()

	// Rows are per track type. Category splits weight finishes by classified
	// races and starts by the races that recorded a start.
	totals := make(map[string]*weightedSplit)
	for rows.Next() {
		var trackType string
		var count, starts int64
		var avgFinish, avgStart float64
		if err := rows.Scan(&trackType, &count, &avgFinish, &starts, &avgStart); err != nil {
			return fmt.Errorf("failed to scan split stats: %w", err)
		}
		for _, key := range splitKeys(trackType, r.categories) {
			if totals[key] == nil {
				totals[key] = &weightedSplit{}
			}
			totals[key].add(int(count), avgFinish, int(starts), avgStart)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate split stats: %w", err)
	}

	for key, total := range totals {
		record.Splits[key] = total.split()
	}
	return nil
}

type weightedSplit struct {
	races     int
	finishSum float64
	starts    int
	startSum  float64
}

func (w *weightedSplit) add(races int, avgFinish float64, starts int, avgStart float64) {
	w.races += races
	w.finishSum += avgFinish * float64(races)
	w.starts += starts
	w.startSum += avgStart * float64(starts)
}

func (w *weightedSplit) split() models.SplitStats {
	if w.races == 0 {
		return models.SplitStats{}
	}
	split := models.SplitStats{
		Races:     w.races,
		AvgFinish: w.finishSum / float64(w.races),
	}
	if w.starts > 0 {
		split.AvgStart = w.startSum / float64(w.starts)
	}
	return split
}

func (r *PostgresStatsRepository) loadHistory(ctx context.Context, record *models.CompetitorStatsRecord) error {
	rows, err := r.db.Query(ctx, historyQuery, record.CompetitorID, record.Season, HistoryLength)
	if err != nil {
		return fmt.Errorf("failed to query race history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var race models.RaceFinish
		if err := rows.Scan(&race.RaceNumber, &race.TrackType, &race.Start, &race.Finish); err != nil {
			return fmt.Errorf("failed to scan race history: %w", err)
		}
		record.History = append(record.History, race)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate race history: %w", err)
	}
	return nil
}
