package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yannickbattail/scadwrap/pkg/domain"
)

const namespace = "scadwrap"

// Metrics holds the collectors fed by Hooks.
type Metrics struct {
	Invocations *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
	InFlight    prometheus.Gauge
	TempFiles   prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "tool",
				Name:      "invocations_total",
				Help:      "Total number of tool invocations",
			},
			[]string{"operation", "status"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "tool",
				Name:      "duration_seconds",
				Help:      "Duration of tool invocations in seconds",
				Buckets:   []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
			[]string{"operation"},
		),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "tool",
			Name:      "in_flight",
			Help:      "Tool invocations currently running",
		}),
		TempFiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "files",
			Name:      "temporary",
			Help:      "Temporary parameter files currently on disk",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Invocations, m.Duration, m.InFlight, m.TempFiles)
	}
	return m
}

// Hooks records every invocation and temporary file.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnInvoke: func(_ context.Context, _ *domain.InvocationEvent) {
			m.InFlight.Inc()
		},
		OnComplete: func(_ context.Context, e *domain.InvocationEvent) {
			m.InFlight.Dec()
			status := "success"
			if e.Err != nil {
				status = "error"
			}
			m.Invocations.WithLabelValues(string(e.Operation), status).Inc()
			m.Duration.WithLabelValues(string(e.Operation)).Observe(e.Duration.Seconds())
		},
		OnTempFile: func(_ context.Context, delta int) {
			m.TempFiles.Add(float64(delta))
		},
	}
}
