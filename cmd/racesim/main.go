// Command racesim estimates race finishing distributions by Monte Carlo
// simulation over historical competitor statistics.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dguillot-gh/Sports-Betting-Analyzer/internal/config"
	"github.com/dguillot-gh/Sports-Betting-Analyzer/internal/database"
	"github.com/dguillot-gh/Sports-Betting-Analyzer/internal/datasource"
	"github.com/dguillot-gh/Sports-Betting-Analyzer/internal/health"
	"github.com/dguillot-gh/Sports-Betting-Analyzer/internal/logger"
	"github.com/dguillot-gh/Sports-Betting-Analyzer/internal/metrics"
	"github.com/dguillot-gh/Sports-Betting-Analyzer/internal/repository"
	"github.com/dguillot-gh/Sports-Betting-Analyzer/internal/simulation"
)

// Build information - set via ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// app carries the dependencies shared by every subcommand.
type app struct {
	configFile string
	cfg        *config.Config
	log        *logrus.Logger
	db         *database.DB
	lookup     repository.StatsRepository
	ops        *health.Server
	closed     bool
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	a := &app{}
	err := run(ctx, a, newRootCmd(a))
	cancel()
	if err != nil {
		log.Fatalf("Error: %v", err)
	}
}

// run executes the command tree and releases the dependencies opened for it,
// including when setup or the command itself fails.
func run(ctx context.Context, a *app, cmd *cobra.Command) error {
	defer a.close()
	return cmd.ExecuteContext(ctx)
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "racesim",
		Short:         "Monte Carlo race outcome simulator",
		Long:          `Rates competitors from historical results and simulates races to estimate win, top-5 and top-10 probabilities.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.loadConfig(cmd.Context()); err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if err := a.setupDependencies(cmd.Context()); err != nil {
				return fmt.Errorf("failed to setup dependencies: %w", err)
			}
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVarP(&a.configFile, "config", "c", "./config/config.yaml", "Path to configuration file")

	rootCmd.AddCommand(newSimulateCmd(a), newStrengthCmd(a), newTracksCmd(a))
	return rootCmd
}

func (a *app) loadConfig(ctx context.Context) error {
	cfg, err := config.LoadWithDefaults(a.configFile)
	if err != nil {
		return err
	}

	if enabled, _ := strconv.ParseBool(os.Getenv("RACESIM_AWS_SECRETS_ENABLED")); enabled {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return fmt.Errorf("AWS_REGION and AWS_SECRET_NAME are required when secrets are enabled")
		}
		if err := config.LoadSecretsFromAWS(ctx, cfg, region, secretName); err != nil {
			return err
		}
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

func (a *app) setupDependencies(ctx context.Context) error {
	a.log = logger.NewLogger(a.cfg.App.LogLevel, a.cfg.App.Environment, nil)
	metrics.InitRegistry()

	lookup, err := a.openStatsSource(ctx)
	if err != nil {
		return err
	}
	if ttl := a.cfg.Stats.CacheTTLSeconds; ttl > 0 {
		lookup = repository.NewCachedStatsLookup(lookup, time.Duration(ttl)*time.Second, a.cfg.Stats.CacheMaxSize)
	}
	a.lookup = lookup

	if a.cfg.Metrics.Enabled {
		opsCfg := health.Config{
			ServiceName: a.cfg.App.Name,
			Version:     Version,
			Addr:        fmt.Sprintf(":%d", a.cfg.Metrics.Port),
			MetricsPath: a.cfg.Metrics.Path,
			Logger:      a.log,
		}
		if a.db != nil {
			opsCfg.Stats = a.db
		}
		a.ops = health.NewServer(opsCfg)
		if err := a.ops.Start(ctx); err != nil {
			return err
		}
		a.ops.SetReady(true)
	}
	return nil
}

func (a *app) openStatsSource(ctx context.Context) (repository.StatsRepository, error) {
	categories := a.cfg.Strength.TrackCategoryMap()

	switch a.cfg.Stats.Source {
	case "postgres":
		db, err := database.Initialize(ctx, a.cfg)
		if err != nil {
			return nil, err
		}
		a.db = db
		return repository.NewPostgresStatsRepository(db.GetPool(), categories), nil
	case "file":
		entries, err := repository.LoadRaceEntriesFile(a.cfg.Stats.FilePath)
		if err != nil {
			return nil, err
		}
		repo := repository.NewMemoryStatsRepository(entries, categories)
		a.log.WithFields(logrus.Fields{
			"path":    a.cfg.Stats.FilePath,
			"entries": len(entries),
			"records": repo.Len(),
		}).Debug("Loaded race entries")
		return repo, nil
	case "http":
		httpCfg := a.cfg.Stats.HTTP
		client := datasource.NewRateLimitedHTTPClient(datasource.HTTPClientConfig{
			Timeout:           time.Duration(httpCfg.TimeoutSeconds) * time.Second,
			MaxRetries:        httpCfg.MaxRetries,
			RetryWaitMin:      100 * time.Millisecond,
			RetryWaitMax:      5 * time.Second,
			RateLimit:         httpCfg.RateLimit,
			CircuitBreakerMax: httpCfg.CircuitBreakerMax,
		}, a.log)
		defer client.Close()

		source, err := datasource.NewRaceEntriesSource(client, httpCfg.URL, a.log)
		if err != nil {
			return nil, err
		}
		entries, err := source.FetchRaceEntries(ctx)
		if err != nil {
			return nil, err
		}
		return repository.NewMemoryStatsRepository(entries, categories), nil
	default:
		return nil, fmt.Errorf("unsupported stats source %q", a.cfg.Stats.Source)
	}
}

func (a *app) aggregator() (*simulation.MonteCarloAggregator, error) {
	return simulation.NewFromConfig(a.cfg, a.lookup, a.log)
}

func (a *app) close() {
	if a.closed {
		return
	}
	a.closed = true

	if a.ops != nil {
		a.ops.SetReady(false)
		if err := a.ops.Shutdown(); err != nil {
			a.log.WithError(err).Warn("Operational server shutdown failed")
		}
	}
	if a.db != nil {
		a.db.Close()
	}
}
