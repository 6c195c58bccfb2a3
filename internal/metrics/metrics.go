// Package metrics exports remote mirror outcomes to Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels used for remote operations
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeSkipped = "skipped"
)

// Recorder implements hierarchy.MetricsRecorder on top of Prometheus collectors
type Recorder struct {
	ops      *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inflight prometheus.Gauge
}

// NewRecorder creates the collectors and registers them with reg.
// Pass prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rental_remote_ops_total",
			Help: "Remote gateway operations by entity, operation and outcome.",
		}, []string{"entity", "op", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rental_remote_op_duration_seconds",
			Help:    "Latency of remote gateway operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"entity", "op"}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "rental_remote_inflight",
			Help: "Remote gateway calls currently in flight.",
		}),
	}
	for _, c := range []prometheus.Collector{r.ops, r.duration, r.inflight} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Observe records one finished (or skipped) remote operation
func (r *Recorder) Observe(entity, op, outcome string, d time.Duration) {
	r.ops.WithLabelValues(entity, op, outcome).Inc()
	if outcome != OutcomeSkipped {
		r.duration.WithLabelValues(entity, op).Observe(d.Seconds())
	}
}

// InFlight adjusts the in-flight gauge
func (r *Recorder) InFlight(delta int) {
	r.inflight.Add(float64(delta))
}
