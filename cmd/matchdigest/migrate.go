package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	"github.com/riskibarqy/match-digest/internal/app"
	"github.com/riskibarqy/match-digest/internal/config"
	"github.com/riskibarqy/match-digest/internal/infrastructure/repository/sqlstore"
	"github.com/riskibarqy/match-digest/internal/platform/logging"
	"github.com/spf13/cobra"
)

// migrateCmd applies pending migrations and the additive odds columns. Its
// subcommands expose the raw golang-migrate operations for repairs.
func migrateCmd() *cobra.Command {
	up := func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := load()
		if err != nil {
			return err
		}
		storeCfg := app.StoreConfig(cfg)
		if err := sqlstore.Migrate(storeCfg); err != nil {
			return err
		}
		db, err := sqlstore.Open(cmd.Context(), storeCfg)
		if err != nil {
			return err
		}
		defer db.Close()
		added, err := sqlstore.EnsureOddsColumns(cmd.Context(), db)
		if err != nil {
			return err
		}
		logger.Info("schema up to date", "driver", cfg.DBDriver, "odds_columns_added", added)
		return nil
	}

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending migrations and add missing odds columns",
		Args:  cobra.NoArgs,
		RunE:  up,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Same as migrate",
			Args:  cobra.NoArgs,
			RunE:  up,
		},
		&cobra.Command{
			Use:   "down [steps]",
			Short: "Roll back migrations, one step by default",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				steps := 1
				if len(args) == 1 {
					n, err := strconv.Atoi(strings.TrimSpace(args[0]))
					if err != nil || n <= 0 {
						return fmt.Errorf("down steps must be a positive integer, got %q", args[0])
					}
					steps = n
				}
				return withMigrator(func(m *migrate.Migrate, logger *logging.Logger) error {
					if err := ignoreNoChange(m.Steps(-steps)); err != nil {
						return err
					}
					logger.Info("migrations rolled back", "steps", steps)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(func(m *migrate.Migrate, _ *logging.Logger) error {
					version, dirty, err := m.Version()
					if errors.Is(err, migrate.ErrNilVersion) {
						_, err = fmt.Fprintln(cmd.OutOrStdout(), "version: none\ndirty: false")
						return err
					}
					if err != nil {
						return fmt.Errorf("read schema version: %w", err)
					}
					_, err = fmt.Fprintf(cmd.OutOrStdout(), "version: %d\ndirty: %t\n", version, dirty)
					return err
				})
			},
		},
		&cobra.Command{
			Use:   "force <version>",
			Short: "Set the schema version without running migrations",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				version, err := strconv.Atoi(strings.TrimSpace(args[0]))
				if err != nil || version < 0 {
					return fmt.Errorf("version must be a non-negative integer, got %q", args[0])
				}
				return withMigrator(func(m *migrate.Migrate, logger *logging.Logger) error {
					if err := m.Force(version); err != nil {
						return fmt.Errorf("force version %d: %w", version, err)
					}
					logger.Info("schema version forced", "version", version)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "goto <version>",
			Short: "Migrate up or down to a version",
			Args:  cobra.ExactArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				target, err := strconv.ParseUint(strings.TrimSpace(args[0]), 10, 32)
				if err != nil {
					return fmt.Errorf("invalid target version %q: %w", args[0], err)
				}
				return withMigrator(func(m *migrate.Migrate, logger *logging.Logger) error {
					if err := ignoreNoChange(m.Migrate(uint(target))); err != nil {
						return err
					}
					logger.Info("schema migrated", "version", target)
					return nil
				})
			},
		},
	)
	return cmd
}

func withMigrator(fn func(m *migrate.Migrate, logger *logging.Logger) error) error {
	cfg, logger, err := load()
	if err != nil {
		return err
	}
	m, err := sqlstore.NewMigrator(app.StoreConfig(cfg))
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer closeMigrator(m, logger, cfg)
	return fn(m, logger)
}

func closeMigrator(m *migrate.Migrate, logger *logging.Logger, cfg config.Config) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		logger.Warn("close migration source", "error", srcErr)
	}
	if dbErr != nil {
		logger.Warn("close migration database", "driver", cfg.DBDriver, "error", dbErr)
	}
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}
