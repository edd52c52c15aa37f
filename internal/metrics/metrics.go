// Package metrics counts batch events in a private Prometheus registry that is
// written to a node_exporter textfile after the run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Faultbox/sdfexport/internal/exporter"
)

// Recorder implements exporter.Observer.
type Recorder struct {
	reg *prometheus.Registry

	exported    prometheus.Counter
	skipped     *prometheus.CounterVec
	textures    prometheus.Counter
	assetErrors *prometheus.CounterVec
	duration    prometheus.Gauge
	lastRun     prometheus.Gauge
}

// New creates a recorder whose series carry the given run ID.
func New(runID string) *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	labels := prometheus.Labels{"run": runID}

	return &Recorder{
		reg: reg,
		exported: factory.NewCounter(prometheus.CounterOpts{
			Name:        "sdfexport_objects_exported_total",
			Help:        "Objects exported as model packages",
			ConstLabels: labels,
		}),
		skipped: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "sdfexport_objects_skipped_total",
			Help:        "Objects skipped, by pipeline stage",
			ConstLabels: labels,
		}, []string{"stage"}),
		textures: factory.NewCounter(prometheus.CounterOpts{
			Name:        "sdfexport_textures_exported_total",
			Help:        "Texture files written next to exported models",
			ConstLabels: labels,
		}),
		assetErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "sdfexport_asset_failures_total",
			Help:        "Non-fatal asset failures, by pipeline stage",
			ConstLabels: labels,
		}, []string{"stage"}),
		duration: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "sdfexport_run_duration_seconds",
			Help:        "Wall time of the last batch",
			ConstLabels: labels,
		}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Name: "sdfexport_last_run_timestamp_seconds",
			Help: "Unix time the last batch finished",
		}),
	}
}

var _ exporter.Observer = (*Recorder)(nil)

func (r *Recorder) ObjectExported(string) { r.exported.Inc() }

func (r *Recorder) ObjectSkipped(_ string, stage exporter.Stage) {
	r.skipped.WithLabelValues(string(stage)).Inc()
}

func (r *Recorder) TextureExported(string) { r.textures.Inc() }

func (r *Recorder) AssetFailed(_ string, stage exporter.Stage) {
	r.assetErrors.WithLabelValues(string(stage)).Inc()
}

// Finish records the run duration measured from start.
func (r *Recorder) Finish(start time.Time) {
	now := time.Now()
	r.duration.Set(now.Sub(start).Seconds())
	r.lastRun.Set(float64(now.Unix()))
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

// WriteTextfile writes all series in the text exposition format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}
