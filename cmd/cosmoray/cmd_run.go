package main

import (
	"fmt"
	"os"
	"runtime"
	"sort"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"cosmoray/internal/prop"
	"cosmoray/internal/prop/notifiers"
)

var runFlags struct {
	configFile  string
	workers     int
	metricsAddr string
	snapshotOut string
	webhookURL  string
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Propagate candidates per a run configuration",
	RunE:  runRun,
}

func init() {
	f := runCmd.Flags()
	f.StringVar(&runFlags.configFile, "config", "", "path to run configuration YAML (required)")
	f.IntVar(&runFlags.workers, "workers", runtime.NumCPU(), "parallel candidate workers")
	f.StringVar(&runFlags.metricsAddr, "metrics-addr", "", "expose prometheus metrics on this address (optional)")
	f.StringVar(&runFlags.snapshotOut, "snapshot", "", "write a JSON snapshot of final candidate states to this file (optional)")
	f.StringVar(&runFlags.webhookURL, "webhook-url", "", "POST recorded candidate events to this URL (optional)")

	_ = runCmd.MarkFlagRequired("config")
}

func runRun(cmd *cobra.Command, _ []string) error {
	log := NewLogger(rootFlags.logLevel)

	cfg, err := loadRunConfig(runFlags.configFile)
	if err != nil {
		return err
	}
	if runFlags.metricsAddr != "" {
		serveMetrics(runFlags.metricsAddr, log)
	}

	bus := prop.NewEventBus(log)
	defer bus.Close()
	if runFlags.webhookURL != "" {
		if err := bus.Register(notifiers.NewWebhookNotifier("webhook", runFlags.webhookURL)); err != nil {
			return err
		}
	}

	run, err := cfg.Build(bus, log)
	if err != nil {
		return fmt.Errorf("building run: %w", err)
	}

	candidates := make([]*prop.Candidate, cfg.Candidates)
	for i := range candidates {
		candidates[i] = run.Source.Emit()
	}

	log.Infof("run %s: propagating %d candidates with %d workers", cfg.Name, len(candidates), runFlags.workers)

	// candidates are independent; fan them out over a bounded worker pool
	var g errgroup.Group
	g.SetLimit(runFlags.workers)
	for _, c := range candidates {
		c := c
		g.Go(func() error {
			run.Modules.Run(c)
			candidatesProcessed.Inc()
			trajectoryLengthMpc.Observe(c.TrajectoryLength() / prop.Mpc)
			if reason, ok := c.Tag("Rejected"); ok {
				candidatesRejected.WithLabelValues(reason).Inc()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if runFlags.snapshotOut != "" {
		if err := writeSnapshot(cfg.Name, candidates, runFlags.snapshotOut); err != nil {
			return err
		}
		log.Infof("snapshot written to %s", runFlags.snapshotOut)
	}

	printSummary(cmd, cfg.Name, candidates)
	return nil
}

func writeSnapshot(name string, candidates []*prop.Candidate, path string) error {
	snap := prop.NewSnapshot(name, candidates)
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("snapshot validation: %w", err)
	}
	data, err := snap.EncodeJSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	return nil
}

func printSummary(cmd *cobra.Command, name string, candidates []*prop.Candidate) {
	counts := make(map[string]int)
	for _, c := range candidates {
		reason, ok := c.Tag("Rejected")
		if !ok {
			reason = "(none)"
		}
		counts[reason]++
	}

	reasons := make([]string, 0, len(counts))
	for reason := range counts {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s finished (%d candidates)\n", name, len(candidates))
	fmt.Fprintln(out, "Rejection reasons:")
	for _, reason := range reasons {
		fmt.Fprintf(out, "  %s: %d\n", reason, counts[reason])
	}
}
