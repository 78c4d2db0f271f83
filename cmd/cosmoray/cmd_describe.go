package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cosmoray/internal/prop"
)

var describeFlags struct {
	configFile string
}

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Print the module chain a run configuration builds",
	RunE:  runDescribe,
}

func init() {
	f := describeCmd.Flags()
	f.StringVar(&describeFlags.configFile, "config", "", "path to run configuration YAML (required)")

	_ = describeCmd.MarkFlagRequired("config")
}

func runDescribe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadRunConfig(describeFlags.configFile)
	if err != nil {
		return err
	}
	log := NewLogger(rootFlags.logLevel)
	bus := prop.NewEventBus(log)
	defer bus.Close()
	run, err := cfg.Build(bus, log)
	if err != nil {
		return fmt.Errorf("building run: %w", err)
	}
	fmt.Fprint(cmd.OutOrStdout(), run.Modules.Describe())
	return nil
}
