package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"better-dreadroot/internal/app"
)

type simulateFlags struct {
	options  string
	watch    bool
	policy   string
	governed int
	legacy   int
	metrics  bool
}

func newSimulateCmd() *cobra.Command {
	var flags simulateFlags
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Spawn and move entities through the pipeline and print the result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := app.LoadConfig(cfgFile)
			if err != nil {
				return err
			}
			applySimulateFlags(cmd, flags, &cfg)
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			_, err = app.Run(ctx, cfg, cmd.OutOrStdout())
			return err
		},
	}
	cmd.Flags().StringVar(&flags.options, "options", "", "option file (YAML); defaults enable every feature")
	cmd.Flags().BoolVar(&flags.watch, "watch", false, "reload the option file when it changes")
	cmd.Flags().StringVar(&flags.policy, "replacement-policy", "", "what happens to replaced originals: retain or destroy")
	cmd.Flags().IntVar(&flags.governed, "governed", 0, "governed entities to create")
	cmd.Flags().IntVar(&flags.legacy, "legacy", 0, "governed entities that exist before the pipeline listens")
	cmd.Flags().BoolVar(&flags.metrics, "metrics", false, "serve Prometheus metrics while running")
	return cmd
}

// applySimulateFlags lets explicitly set flags win over the config file.
func applySimulateFlags(cmd *cobra.Command, flags simulateFlags, cfg *app.Config) {
	changed := cmd.Flags().Changed
	if changed("options") {
		cfg.Options.Path = flags.options
	}
	if changed("watch") {
		cfg.Options.Watch = flags.watch
	}
	if changed("replacement-policy") {
		cfg.Pipeline.ReplacementPolicy = flags.policy
	}
	if changed("governed") {
		cfg.Simulation.Governed = flags.governed
	}
	if changed("legacy") {
		cfg.Simulation.Legacy = flags.legacy
	}
	if changed("metrics") {
		cfg.Metrics.Enabled = flags.metrics
	}
}
