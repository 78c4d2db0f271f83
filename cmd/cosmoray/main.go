package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootFlags struct {
	logLevel string
}

var rootCmd = &cobra.Command{
	Use:   "cosmoray",
	Short: "Propagate cosmic-ray nuclei through ambient photon backgrounds",
	Long: `cosmoray steps candidate particles through an ordered chain of physics
modules: continuous energy losses, stochastic photo-hadronic interactions and
break conditions, driven by a YAML run configuration.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootFlags.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.AddCommand(runCmd, describeCmd, serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
