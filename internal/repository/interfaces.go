package repository

import (
	"context"

	"github.com/dguillot-gh/Sports-Betting-Analyzer/internal/models"
)

// StatsRepository defines read access to per-season competitor statistics.
// A false second return value means the competitor has no record for the
// season, which is not an error.
type StatsRepository interface {
	Lookup(ctx context.Context, competitorID string, season int) (*models.CompetitorStatsRecord, bool, error)
}
