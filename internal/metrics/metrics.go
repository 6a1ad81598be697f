// Package metrics exports the outcome of the last run in the Prometheus
// text format, for the node_exporter textfile collector. A batch job
// exits long before anything could scrape it, so the gauges are written
// to a file instead of served.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/nugget/credo-bot/internal/buildinfo"
	"github.com/nugget/credo-bot/internal/outcome"
)

// Sources are the body origins reported on the source gauge.
var Sources = []string{"llm", "llm_clamped", "relaxed", "fallback"}

// Metrics holds the gauges for one run.
type Metrics struct {
	reg *prometheus.Registry

	LastRun   prometheus.Gauge
	Status    *prometheus.GaugeVec
	Source    *prometheus.GaugeVec
	Attempts  prometheus.Gauge
	Duration  prometheus.Gauge
	BuildInfo *prometheus.GaugeVec
}

// New registers the gauges on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	m := &Metrics{
		reg: reg,
		LastRun: f.NewGauge(prometheus.GaugeOpts{
			Name: "credo_last_run_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
		Status: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "credo_last_run_status",
			Help: "1 for the status the last run ended with, 0 otherwise",
		}, []string{"status"}),
		Source: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "credo_last_run_source",
			Help: "1 for the path that produced the last report body, 0 otherwise",
		}, []string{"source"}),
		Attempts: f.NewGauge(prometheus.GaugeOpts{
			Name: "credo_last_run_llm_attempts",
			Help: "Backend calls made by the last run",
		}),
		Duration: f.NewGauge(prometheus.GaugeOpts{
			Name: "credo_last_run_duration_seconds",
			Help: "Wall time of the last run",
		}),
		BuildInfo: f.NewGaugeVec(prometheus.GaugeOpts{
			Name: "credo_build_info",
			Help: "Build information, value is always 1",
		}, []string{"version", "commit"}),
	}
	m.BuildInfo.WithLabelValues(buildinfo.Version, buildinfo.GitCommit).Set(1)
	return m
}

// Observe sets every gauge from s.
func (m *Metrics) Observe(s outcome.Summary) {
	if m == nil {
		return
	}
	m.LastRun.Set(float64(s.FinishedAt.Unix()))
	for _, st := range outcome.Statuses {
		m.Status.WithLabelValues(string(st)).Set(boolGauge(st == s.Status))
	}
	for _, src := range Sources {
		m.Source.WithLabelValues(src).Set(boolGauge(src == s.Source))
	}
	m.Attempts.Set(float64(s.Attempts))
	m.Duration.Set(s.Duration)
}

// WriteTextfile atomically replaces path with the current gauges.
func (m *Metrics) WriteTextfile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

func boolGauge(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
