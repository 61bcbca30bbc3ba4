package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/hybridqa/internal/app"
	documentrepo "github.com/kailas-cloud/hybridqa/internal/repository/document"
	"github.com/kailas-cloud/hybridqa/internal/usecase/ingest"
)

func newIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Chunk, embed and store the .txt and .md files of a directory",
		Long: "Reads every .txt and .md file at the top level of --dir (names starting with _ are skipped), " +
			"stores one document row per file and one vector per chunk. A failing file is reported and the run continues.",
		Args: cobra.NoArgs,
		RunE: runIngest,
	}
	cmd.Flags().String("dir", "", "directory holding the documents")
	cmd.Flags().Int("workers", ingest.DefaultWorkers, "files processed concurrently")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}

func runIngest(cmd *cobra.Command, _ []string) error {
	dir, _ := cmd.Flags().GetString("dir")
	workers, _ := cmd.Flags().GetInt("workers")

	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("documents dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("documents dir: %s is not a directory", dir)
	}

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

	svc := ingest.New(documentrepo.New(stores.DB), stores.Chunks, embedder, logger, ingest.WithWorkers(workers))
	summary, err := svc.Run(ctx, os.DirFS(dir))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, f := range summary.Files {
		switch {
		case f.Err != nil:
			_, _ = fmt.Fprintf(out, "FAIL %s: %v\n", f.File, f.Err)
		case f.Skipped:
			_, _ = fmt.Fprintf(out, "SKIP %s (no chunks)\n", f.File)
		default:
			_, _ = fmt.Fprintf(out, "OK   %s: document %d, %d chunk(s)\n", f.File, f.DocumentID, f.Chunks)
		}
	}
	_, err = fmt.Fprintln(out, summary.String())
	return err
}
