package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/dguillot-gh/Sports-Betting-Analyzer/internal/models"
	"github.com/dguillot-gh/Sports-Betting-Analyzer/internal/repository"
)

// maxEntriesBody bounds the size of a race entries document.
const maxEntriesBody = 64 << 20

// RaceEntriesSource downloads a JSON array of race entries from a URL.
type RaceEntriesSource struct {
	client *RateLimitedHTTPClient
	url    string
	logger *logrus.Logger
}

// NewRaceEntriesSource creates a new remote race entries source
func NewRaceEntriesSource(client *RateLimitedHTTPClient, url string, logger *logrus.Logger) (*RaceEntriesSource, error) {
	if client == nil {
		return nil, fmt.Errorf("http client is required")
	}
	if url == "" {
		return nil, fmt.Errorf("race entries url is required")
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &RaceEntriesSource{client: client, url: url, logger: logger}, nil
}

// FetchRaceEntries downloads and validates the race entries document.
func (s *RaceEntriesSource) FetchRaceEntries(ctx context.Context) ([]models.RaceEntry, error) {
	resp, err := s.client.Get(ctx, s.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch race entries: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch race entries: unexpected status %d", resp.StatusCode)
	}

	entries, err := repository.DecodeRaceEntries(io.LimitReader(resp.Body, maxEntriesBody))
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"url":     s.url,
		"entries": len(entries),
	}).Info("Fetched race entries")
	return entries, nil
}
