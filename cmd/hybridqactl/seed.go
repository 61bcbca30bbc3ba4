package main

import (
	"fmt"

	"github.com/spf13/cobra"

	dbpostgres "github.com/kailas-cloud/hybridqa/internal/db/postgres"
	reciperepo "github.com/kailas-cloud/hybridqa/internal/repository/recipe"
	"github.com/kailas-cloud/hybridqa/internal/usecase/catalog"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Replace the recipe catalogue with the built-in samples",
		Long:  "Truncates the recipes table and inserts the sample recipes. Run sync afterwards to refresh vectors.",
		Args:  cobra.NoArgs,
		RunE:  runSeed,
	}
}

func runSeed(cmd *cobra.Command, _ []string) error {
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

	n, err := catalog.New(reciperepo.New(gdb), nil, nil, logger).Seed(cmd.Context())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "seeded %d recipe(s)\n", n)
	return err
}
