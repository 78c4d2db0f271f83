package main

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	candidatesProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cosmoray_candidates_processed_total",
		Help: "Candidates whose propagation finished.",
	})
	candidatesRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "cosmoray_candidates_rejected_total",
		Help: "Rejected candidates by rejection tag.",
	}, []string{"reason"})
	trajectoryLengthMpc = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "cosmoray_trajectory_length_mpc",
		Help:    "Final trajectory length per candidate in Mpc.",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12),
	})
)

// serveMetrics exposes /metrics on addr in the background.
func serveMetrics(addr string, log *Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Infof("metrics listening on %s", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Errorf("metrics server: %v", err)
		}
	}()
}
