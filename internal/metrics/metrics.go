// Package metrics records per-run pipeline metrics and exports them for the node exporter textfile collector.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder holds the collectors of one CLI run. A nil Recorder records nothing.
type Recorder struct {
	registry      *prometheus.Registry
	StageDuration *prometheus.HistogramVec
	Subjects      *prometheus.CounterVec
	CacheRequests *prometheus.CounterVec
}

// New returns a Recorder with its own registry
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lsdgrad_stage_duration_seconds",
				Help:    "Duration of pipeline stages",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
			},
			[]string{"stage"},
		),
		Subjects: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lsdgrad_subjects_total",
				Help: "Subjects processed per command",
			},
			[]string{"command"},
		),
		CacheRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lsdgrad_cache_requests_total",
				Help: "Time-series cache lookups by result",
			},
			[]string{"result"},
		),
	}

	r.registry.MustRegister(r.StageDuration, r.Subjects, r.CacheRequests)

	return r
}

// ObserveStage records the time elapsed since start for stage
func (r *Recorder) ObserveStage(stage string, start time.Time) {
	if r == nil {
		return
	}
	r.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// Subject counts one processed subject for command
func (r *Recorder) Subject(command string) {
	if r == nil {
		return
	}
	r.Subjects.WithLabelValues(command).Inc()
}

// Cache counts a cache lookup
func (r *Recorder) Cache(hit bool) {
	if r == nil {
		return
	}

	result := "miss"
	if hit {
		result = "hit"
	}
	r.CacheRequests.WithLabelValues(result).Inc()
}

// WriteTextfile writes every collected metric to path in the text exposition format
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}

	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}

	return nil
}
