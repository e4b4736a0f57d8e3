package database

import (
	"context"
	"fmt"

	"github.com/dguillot-gh/Sports-Betting-Analyzer/internal/config"
)

// RaceEntriesTable is the table the stats repository aggregates from.
const RaceEntriesTable = "race_entries"

// Initialize creates a database connection pool and verifies the race entries
// table is present.
func Initialize(ctx context.Context, cfg *config.Config) (*DB, error) {
	db, err := NewDB(ctx, &cfg.Database)
	if err != nil {
		return nil, err
	}

	var exists bool
	err = db.pool.QueryRow(ctx, "SELECT to_regclass($1) IS NOT NULL", RaceEntriesTable).Scan(&exists)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to verify %s table: %w", RaceEntriesTable, err)
	}
	if !exists {
		db.Close()
		return nil, fmt.Errorf("table %s not found; load historical race entries before simulating", RaceEntriesTable)
	}

	return db, nil
}
