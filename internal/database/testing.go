package database

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/dguillot-gh/Sports-Betting-Analyzer/internal/config"
)

// TestDatabaseEnv names the environment variable enabling database tests.
const TestDatabaseEnv = "RACESIM_TEST_DATABASE_HOST"

// SetupTestDB creates a test database connection, skipping the test when no
// test database is configured.
func SetupTestDB(t *testing.T) *DB {
	t.Helper()

	host := os.Getenv(TestDatabaseEnv)
	if host == "" {
		t.Skipf("%s not set, skipping database test", TestDatabaseEnv)
	}
	port, err := strconv.Atoi(envOr("RACESIM_TEST_DATABASE_PORT", "5432"))
	if err != nil {
		t.Fatalf("invalid test database port: %v", err)
	}

	cfg := &config.DatabaseConfig{
		Host:           host,
		Port:           port,
		Name:           envOr("RACESIM_TEST_DATABASE_NAME", "racesim_test"),
		User:           envOr("RACESIM_TEST_DATABASE_USER", "postgres"),
		Password:       os.Getenv("RACESIM_TEST_DATABASE_PASSWORD"),
		SSLMode:        "disable",
		MaxConnections: 2,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := NewDB(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to create test database connection: %v", err)
	}
	t.Cleanup(db.Close)

	return db
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
