// Package metrics counts extraction jobs for node_exporter's textfile
// collector. The tool has no server to scrape, so the registry is written to
// a .prom file after each run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Job outcomes used as the status label
const (
	StatusOK     = "ok"
	StatusFailed = "failed"
)

// Recorder owns a private registry. A nil *Recorder records nothing.
type Recorder struct {
	registry *prometheus.Registry

	jobsTotal      *prometheus.CounterVec
	framesTotal    prometheus.Counter
	stageDuration  *prometheus.HistogramVec
	lastSuccessful prometheus.Gauge
}

// New creates a recorder with all series registered.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		jobsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "videotoframe_jobs_total",
			Help: "Extraction jobs finished, by status",
		}, []string{"status"}),
		framesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "videotoframe_frames_extracted_total",
			Help: "Frames written across all jobs",
		}),
		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "videotoframe_stage_duration_seconds",
			Help:    "Wall time of each ffmpeg stage",
			Buckets: []float64{0.5, 1, 5, 10, 30, 60, 120, 300, 600},
		}, []string{"stage"}),
		lastSuccessful: factory.NewGauge(prometheus.GaugeOpts{
			Name: "videotoframe_last_success_timestamp_seconds",
			Help: "Unix time of the last successful job",
		}),
	}
}

// ObserveStage records how long one ffmpeg invocation took.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	if r == nil {
		return
	}
	r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// JobFinished counts a finished job and, on success, its frames.
func (r *Recorder) JobFinished(status string, frames int) {
	if r == nil {
		return
	}
	r.jobsTotal.WithLabelValues(status).Inc()
	if status == StatusOK {
		r.framesTotal.Add(float64(frames))
		r.lastSuccessful.SetToCurrentTime()
	}
}

// Gatherer exposes the registry, mainly for tests.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile atomically replaces path with the current values in the
// Prometheus text format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
