package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/meddot/meddot-backend/pkg/config"
	"github.com/meddot/meddot-backend/pkg/db"
	"github.com/meddot/meddot-backend/pkg/logger"
	"github.com/meddot/meddot-backend/pkg/migrate"
)

func main() {
	_ = godotenv.Load()

	var dir string
	dirFlag := &cli.StringFlag{
		Name:        "dir",
		Usage:       "goose migrations directory; \"migrations\" uses the embedded set",
		Value:       migrate.EmbeddedDir,
		Destination: &dir,
	}

	app := &cli.Command{
		Name:  "migrate",
		Usage: "Manage the Meddot database schema",
		Flags: []cli.Flag{dirFlag},
		Commands: []*cli.Command{
			dbCommand("up", "apply all pending migrations", func(ctx context.Context, sqlDB *sql.DB, c *cli.Command) error {
				return migrate.Run(ctx, sqlDB, dir, "up")
			}),
			dbCommand("down", "roll back the latest migration", func(ctx context.Context, sqlDB *sql.DB, c *cli.Command) error {
				return migrate.Run(ctx, sqlDB, dir, "down")
			}),
			dbCommand("status", "print migration status", func(ctx context.Context, sqlDB *sql.DB, c *cli.Command) error {
				return migrate.Run(ctx, sqlDB, dir, "status")
			}),
			dbCommand("version", "migrate up or down to the version given as the first argument", func(ctx context.Context, sqlDB *sql.DB, c *cli.Command) error {
				target := c.Args().First()
				if target == "" {
					return errors.New("missing target version (YYYYMMDDHHMMSS)")
				}
				return migrate.MigrateToVersion(ctx, sqlDB, dir, target)
			}),
			{
				Name:      "create",
				Usage:     "create a new SQL migration on disk",
				ArgsUsage: "<name>",
				Action: func(ctx context.Context, c *cli.Command) error {
					name := c.Args().First()
					if name == "" {
						return errors.New("missing migration name")
					}
					path, err := migrate.CreateSQLMigration(diskDir(dir), name)
					if err != nil {
						return fmt.Errorf("create migration: %w", err)
					}
					fmt.Println("created migration:", path)
					return nil
				},
			},
			{
				Name:  "validate",
				Usage: "check migration files for goose annotations",
				Action: func(ctx context.Context, c *cli.Command) error {
					if err := migrate.ValidateDir(diskDir(dir)); err != nil {
						return fmt.Errorf("migration validation failed: %w", err)
					}
					fmt.Println("migration validation passed")
					return nil
				},
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "migrate: %v\n", err)
		os.Exit(1)
	}
}

// diskDir maps the embedded selector to its source directory for file commands.
func diskDir(dir string) string {
	if dir == migrate.EmbeddedDir {
		return migrate.DefaultDir
	}
	return dir
}

func dbCommand(name, usage string, fn func(ctx context.Context, sqlDB *sql.DB, c *cli.Command) error) *cli.Command {
	return &cli.Command{
		Name:  name,
		Usage: usage,
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := config.LoadMigrate()
			if err != nil {
				return err
			}
			logg := logger.New(logger.Options{ServiceName: "migrate", Level: cfg.LogLevel})
			ctx = logg.WithField(ctx, "cmd", name)

			dbClient, err := db.New(ctx, cfg.DB, logg)
			if err != nil {
				return fmt.Errorf("database: %w", err)
			}
			defer dbClient.Close()

			sqlDB, err := dbClient.DB().DB()
			if err != nil {
				return fmt.Errorf("sql database: %w", err)
			}

			logg.Info(ctx, "migrate ready")
			return fn(ctx, sqlDB, c)
		},
	}
}
