package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridqa/internal/config"
	logpkg "github.com/kailas-cloud/hybridqa/internal/logger"
)

// NewRootCmd creates the root hybridqactl command with all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hybridqactl",
		Short:         "Operate the hybridqa stores",
		Long:          "hybridqactl migrates postgres, seeds the recipe catalogue, syncs recipe vectors and ingests documents.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("env", config.GetEnv(), "config environment (config/<env>.yaml)")

	root.AddCommand(
		newMigrateCmd(),
		newSeedCmd(),
		newSyncCmd(),
		newIngestCmd(),
		newVersionCmd(),
	)

	return root
}

// setup loads the config for --env and builds a logger for it.
func setup(cmd *cobra.Command) (config.Config, *zap.Logger, error) {
	env, _ := cmd.Flags().GetString("env")

	cfg, err := config.Load(env)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("loading config: %w", err)
	}
	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("creating logger: %w", err)
	}
	return cfg, logger, nil
}
