package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	dbpostgres "github.com/kailas-cloud/hybridqa/internal/db/postgres"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back the postgres schema",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd, func(mg *dbpostgres.Migrator) error { return mg.Up() })
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the latest migration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd, func(mg *dbpostgres.Migrator) error { return mg.Down() })
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(cmd, func(mg *dbpostgres.Migrator) error {
					v, dirty, err := mg.Version()
					if err != nil {
						return err
					}
					_, err = fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", v, dirty)
					return err
				})
			},
		},
	)
	return cmd
}

func withMigrator(cmd *cobra.Command, fn func(*dbpostgres.Migrator) error) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	gdb, err := dbpostgres.Open(dbpostgres.Config{URL: cfg.Database.URL})
	if err != nil {
		return err
	}
	defer dbpostgres.Close(gdb, logger)

	conn, err := gdb.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	mg, err := dbpostgres.NewMigrator(conn, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := mg.Close(); err != nil {
			logger.Warn("close migrator", zap.Error(err))
		}
	}()

	return fn(mg)
}
