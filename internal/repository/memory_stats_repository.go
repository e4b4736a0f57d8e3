package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"

	"github.com/dguillot-gh/Sports-Betting-Analyzer/internal/models"
)

type seasonKey struct {
	competitorID string
	season       int
}

// MemoryStatsRepository serves precomputed records aggregated from race
// entries held in memory. It is immutable after construction.
type MemoryStatsRepository struct {
	records map[seasonKey]*models.CompetitorStatsRecord
}

// NewMemoryStatsRepository groups entries by competitor and season and
// aggregates each group. categories may be nil.
func NewMemoryStatsRepository(entries []models.RaceEntry, categories map[string]string) *MemoryStatsRepository {
	groups := make(map[seasonKey][]models.RaceEntry)
	for _, e := range entries {
		key := seasonKey{competitorID: e.CompetitorID, season: e.Season}
		groups[key] = append(groups[key], e)
	}

	records := make(map[seasonKey]*models.CompetitorStatsRecord, len(groups))
	for key, group := range groups {
		records[key] = AggregateEntries(key.competitorID, key.season, group, categories)
	}
	return &MemoryStatsRepository{records: records}
}

// Lookup returns a copy of the record for a competitor and season
func (r *MemoryStatsRepository) Lookup(ctx context.Context, competitorID string, season int) (*models.CompetitorStatsRecord, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	record, ok := r.records[seasonKey{competitorID: competitorID, season: season}]
	return record.Clone(), ok, nil
}

// Len returns the number of competitor seasons held
func (r *MemoryStatsRepository) Len() int {
	return len(r.records)
}

// LoadRaceEntriesFile reads a JSON array of race entries and validates each one.
func LoadRaceEntriesFile(path string) ([]models.RaceEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read race entries file: %w", err)
	}
	defer f.Close()

	return DecodeRaceEntries(f)
}

// DecodeRaceEntries decodes a JSON array of race entries and validates each one.
func DecodeRaceEntries(r io.Reader) ([]models.RaceEntry, error) {
	var entries []models.RaceEntry
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to parse race entries: %w", err)
	}

	validate := validator.New()
	var errs []error
	for i := range entries {
		if err := validate.Struct(&entries[i]); err != nil {
			errs = append(errs, fmt.Errorf("entry %d: %w", i, err))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid race entries: %w", errors.Join(errs...))
	}

	return entries, nil
}
