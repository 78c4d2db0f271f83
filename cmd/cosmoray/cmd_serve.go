package main

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"cosmoray/internal/prop"
	"cosmoray/internal/prop/notifiers"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var serveFlags struct {
	configFile string
	addr       string
	workers    int
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run a simulation while streaming candidate events over WebSocket",
	Long: `serve propagates the configured candidates and exposes:
  /events   WebSocket stream of recorded candidate events
  /metrics  prometheus metrics
  /healthz  liveness probe
Connect a client before the run drains; events are broadcast live.`,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.StringVar(&serveFlags.configFile, "config", "", "path to run configuration YAML (required)")
	f.StringVar(&serveFlags.addr, "addr", ":8080", "listen address")
	f.IntVar(&serveFlags.workers, "workers", 1, "parallel candidate workers")

	_ = serveCmd.MarkFlagRequired("config")
}

func runServe(cmd *cobra.Command, _ []string) error {
	log := NewLogger(rootFlags.logLevel)

	cfg, err := loadRunConfig(serveFlags.configFile)
	if err != nil {
		return err
	}

	ws := notifiers.NewWebSocketNotifier("events")
	bus := prop.NewEventBus(log)
	if err := bus.Register(ws); err != nil {
		return err
	}
	defer bus.Close()

	run, err := cfg.Build(bus, log)
	if err != nil {
		return fmt.Errorf("building run: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		upgrader := ws.Upgrader()
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Errorf("websocket upgrade: %v", err)
			return
		}
		ws.RegisterClient(conn)
		// drain (and discard) client reads so pings are answered
		go func() {
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					ws.UnregisterClient(conn)
					return
				}
			}
		}()
	})

	server := &http.Server{Addr: serveFlags.addr, Handler: mux}
	go func() {
		log.Infof("serving on %s", serveFlags.addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("http server: %v", err)
		}
	}()

	var g errgroup.Group
	g.SetLimit(serveFlags.workers)
	for i := 0; i < cfg.Candidates; i++ {
		c := run.Source.Emit()
		g.Go(func() error {
			run.Modules.Run(c)
			candidatesProcessed.Inc()
			trajectoryLengthMpc.Observe(c.TrajectoryLength() / prop.Mpc)
			if reason, ok := c.Tag("Rejected"); ok {
				candidatesRejected.WithLabelValues(reason).Inc()
			}
			bus.Publish(prop.EventFromCandidate(c))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	log.Infof("run %s finished, server stays up for late consumers (Ctrl-C to exit)", cfg.Name)

	// keep streaming until interrupted
	<-cmd.Context().Done()
	return server.Close()
}
