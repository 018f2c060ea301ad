package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "dreadroot",
	Short: "Run the Dreadroot mutation pipeline against a simulated world",
	Long: `dreadroot hosts the Dreadroot mutation pipeline in a small simulated world.

Dreadroot entities are stripped of the tag that keeps them out of hostile
treatment, made solid and turned against the player, each behind its own
option toggle.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "host config file (YAML)")
	rootCmd.AddCommand(newSimulateCmd(), newVersionCmd())
}
