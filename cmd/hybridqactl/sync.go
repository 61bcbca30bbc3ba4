package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/hybridqa/internal/app"
	reciperepo "github.com/kailas-cloud/hybridqa/internal/repository/recipe"
	"github.com/kailas-cloud/hybridqa/internal/usecase/catalog"
)

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Embed recipe descriptions and upsert them into the vector index",
		Args:  cobra.NoArgs,
		RunE:  runSync,
	}
}

func runSync(cmd *cobra.Command, _ []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	stores, err := app.OpenStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stores.Close()

	embedder := app.BuildEmbedder(cfg, stores.Cache, logger)
	if err := embedder.Warm(ctx, app.WarmupPolicy(cfg.Embedding)); err != nil {
		return fmt.Errorf("embedding service: %w", err)
	}

	n, err := catalog.New(reciperepo.New(stores.DB), stores.Recipes, embedder, logger).Sync(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "synced %d recipe vector(s) into %s\n", n, stores.Recipes.Name())
	return err
}
