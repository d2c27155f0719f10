package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile     string
	seedFlag    uint64
	seedSet     bool
	budgetMS    int64
	verbose     bool
	metricsAddr string
	version     = "dev"
)

var rootCmd = &cobra.Command{
	Use:     "hsagarun",
	Short:   "Campus spatial layout optimizer",
	Long:    `hsagarun loads a campus layout problem from YAML, runs the hybrid SA/GA optimizer, and writes the resulting ResultBundle as JSON.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "run configuration YAML file (required)")
	rootCmd.PersistentFlags().Uint64Var(&seedFlag, "seed", 0, "override the run's RNG seed")
	rootCmd.PersistentFlags().Int64Var(&budgetMS, "budget-ms", 0, "wall-clock budget in milliseconds (0 = unbounded)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose (debug-level) logging")
	rootCmd.PersistentFlags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running (e.g. :9090)")

	rootCmd.AddCommand(runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
