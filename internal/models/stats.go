package models

import (
	"maps"
	"slices"
)

// SeasonStats holds season-level aggregates for one competitor.
type SeasonStats struct {
	Races      int     `db:"races" json:"races"`
	AvgFinish  float64 `db:"avg_finish" json:"avg_finish"`
	AvgStart   float64 `db:"avg_start" json:"avg_start"`
	BestFinish int     `db:"best_finish" json:"best_finish"`
}

// SplitStats holds aggregates restricted to one track type or category.
type SplitStats struct {
	Races     int     `db:"races" json:"races"`
	AvgFinish float64 `db:"avg_finish" json:"avg_finish"`
	AvgStart  float64 `db:"avg_start" json:"avg_start"`
}

// RaceFinish is a single entry of a competitor's recent history.
// Finish is nil when the race has no classified result.
type RaceFinish struct {
	RaceNumber int    `db:"race_num" json:"race_num"`
	TrackType  string `db:"track_type" json:"track_type"`
	Start      *int   `db:"start" json:"start,omitempty"`
	Finish     *int   `db:"finish" json:"finish,omitempty"`
}

// CompetitorStatsRecord is the read-only statistics view of one competitor
// for one season.
type CompetitorStatsRecord struct {
	CompetitorID string                `json:"competitor_id"`
	Season       int                   `json:"season"`
	Stats        SeasonStats           `json:"stats"`
	Splits       map[string]SplitStats `json:"splits"`
	// History is ordered most recent first.
	History []RaceFinish `json:"history"`
}

// HasRaces reports whether the record carries any counted race.
func (r *CompetitorStatsRecord) HasRaces() bool {
	return r != nil && r.Stats.Races > 0
}

// Split returns the split aggregate for the given key, if present and non-empty.
func (r *CompetitorStatsRecord) Split(key string) (SplitStats, bool) {
	if r == nil || r.Splits == nil {
		return SplitStats{}, false
	}
	split, ok := r.Splits[key]
	if !ok || split.Races == 0 {
		return SplitStats{}, false
	}
	return split, true
}

// RecentFinishes returns up to limit classified finishes, most recent first.
func (r *CompetitorStatsRecord) RecentFinishes(limit int) []int {
	if r == nil || limit <= 0 {
		return nil
	}
	finishes := make([]int, 0, limit)
	for _, race := range r.History {
		if len(finishes) == limit {
			break
		}
		if race.Finish == nil {
			continue
		}
		finishes = append(finishes, *race.Finish)
	}
	return finishes
}

// Clone returns a deep copy of the record.
func (r *CompetitorStatsRecord) Clone() *CompetitorStatsRecord {
	if r == nil {
		return nil
	}
	clone := *r
	clone.Splits = maps.Clone(r.Splits)
	clone.History = slices.Clone(r.History)
	for i, race := range clone.History {
		clone.History[i].Start = cloneInt(race.Start)
		clone.History[i].Finish = cloneInt(race.Finish)
	}
	return &clone
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
