// Package metrics holds the Prometheus collectors of the certificate pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeWarning = "warning"
)

// Pipeline records the outcome and duration of every pipeline stage.
// A nil *Pipeline is valid and records nothing.
type Pipeline struct {
	stageTotal    *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
}

// NewPipeline creates the collectors and registers them with reg.
func NewPipeline(reg prometheus.Registerer) (*Pipeline, error) {
	p := &Pipeline{
		stageTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "certificate_stage_total",
				Help: "Total number of certificate pipeline stages run, by outcome.",
			},
			[]string{"stage", "outcome"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "certificate_stage_duration_seconds",
				Help: "Duration of certificate pipeline stages in seconds.",
				// browser conversion dominates and can take several seconds
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"stage"},
		),
	}

	for _, c := range []prometheus.Collector{p.stageTotal, p.stageDuration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Observe records one stage run that started at start.
func (p *Pipeline) Observe(stage, outcome string, start time.Time) {
	if p == nil {
		return
	}
	p.stageTotal.WithLabelValues(stage, outcome).Inc()
	p.stageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}

// OutcomeOf maps a stage error to its outcome label.
func OutcomeOf(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}
