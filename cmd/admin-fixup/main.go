package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"

	"github.com/meddot/meddot-backend/internal/fixup"
	"github.com/meddot/meddot-backend/pkg/config"
	"github.com/meddot/meddot-backend/pkg/db"
	"github.com/meddot/meddot-backend/pkg/logger"
	"github.com/meddot/meddot-backend/pkg/metrics"
	"github.com/meddot/meddot-backend/pkg/redis"
)

const lockName = "admin-fixup"

type flags struct {
	DryRun   bool
	LogLevel string
}

func main() {
	_ = godotenv.Load()

	f := &flags{}
	app := &cli.Command{
		Name:  "admin-fixup",
		Usage: "Apply one-off environment fixes: feature flag, admin promotion, seed record",
		Description: `Runs every fix-up step once, in order. A failing step is logged and the
remaining steps still run. The exit code is non-zero only when required
configuration is missing.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "dry-run",
				Usage:       "log the planned steps without touching the database",
				Sources:     cli.EnvVars("MEDDOT_FIXUP_DRY_RUN"),
				Destination: &f.DryRun,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error)",
				Sources:     cli.EnvVars("MEDDOT_LOG_LEVEL"),
				Value:       "info",
				Destination: &f.LogLevel,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			return newCommandLine().run(ctx, f)
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "admin-fixup: %v\n", err)
		os.Exit(1)
	}
}

// commandLine carries the pieces of a run that tests replace.
type commandLine struct {
	out       io.Writer
	logOutput io.Writer

	loadConfig func() (*config.FixupEnv, error)
	openSteps  func(ctx context.Context, cfg *config.FixupEnv, logg *logger.Logger) (*fixup.Registry, fixup.Lock, func(), error)
}

func newCommandLine() *commandLine {
	return &commandLine{
		out:        os.Stdout,
		loadConfig: config.LoadFixup,
		openSteps:  openSteps,
	}
}

// run returns an error only for missing configuration. Everything after that
// is logged and the process exits cleanly.
func (cl *commandLine) run(ctx context.Context, f *flags) error {
	logg := logger.New(logger.Options{ServiceName: "admin-fixup", Level: f.LogLevel, Output: cl.logOutput})

	cfg, err := cl.loadConfig()
	if err != nil {
		logg.Error(ctx, "missing fixup configuration", err)
		return err
	}

	ctx = logg.WithFields(ctx, map[string]any{
		"feature_flag": cfg.Fixup.FeatureFlag,
		"admin_email":  cfg.Fixup.AdminEmail,
		"seed_room":    cfg.Fixup.SeedRoom,
		"dry_run":      f.DryRun,
	})

	registry, lock, cleanup, err := cl.openSteps(ctx, cfg, logg)
	if err != nil {
		logg.Error(ctx, "database unavailable; no steps ran", err)
		return nil
	}
	defer cleanup()

	runner, err := fixup.NewRunner(fixup.RunnerParams{
		Logger:   logg,
		Registry: registry,
		Metrics:  metrics.NewStepMetrics(prometheus.NewRegistry()),
		Lock:     lock,
		DryRun:   f.DryRun,
	})
	if err != nil {
		logg.Error(ctx, "failed to create fixup runner", err)
		return nil
	}

	report := runner.Run(ctx)
	if report.Locked {
		fmt.Fprintln(cl.out, "another admin-fixup run is in progress; nothing to do")
		return nil
	}
	for _, res := range report.Results {
		status := "ok"
		switch {
		case res.Skipped:
			status = "planned"
		case res.Err != nil:
			status = "failed"
		}
		fmt.Fprintf(cl.out, "%-22s %s\n", res.Step, status)
	}
	return nil
}

// openSteps connects to the database and, when configured, Redis for the run
// lock. A nil lock means runs are not coordinated.
func openSteps(ctx context.Context, cfg *config.FixupEnv, logg *logger.Logger) (*fixup.Registry, fixup.Lock, func(), error) {
	dbClient, err := db.New(ctx, cfg.DB, logg, db.WithoutPing())
	if err != nil {
		return nil, nil, nil, err
	}
	closers := []func(){func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}}
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	registry := fixup.NewRegistry(fixup.DefaultSteps(fixup.NewStore(dbClient.DB()), cfg.Fixup, logg)...)
	if !cfg.Redis.Enabled() {
		return registry, nil, cleanup, nil
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "redis unavailable; running without lock")
		return registry, nil, cleanup, nil
	}
	closers = append(closers, func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	})

	lock, err := fixup.NewRedisLock(redisClient, redisClient.LockKey(lockName), 0)
	if err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "fixup lock disabled")
		return registry, nil, cleanup, nil
	}
	return registry, lock, cleanup, nil
}
