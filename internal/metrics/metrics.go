// Package metrics exposes render counters and durations to Prometheus.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/goliatone/go-blockkit/pkg/render"
	"github.com/goliatone/go-blockkit/pkg/sanitize"
)

// Observer records render events. It implements render.Observer.
type Observer struct {
	registry *prometheus.Registry
	renders  *prometheus.CounterVec
	duration *prometheus.HistogramVec
	rejected *prometheus.CounterVec
}

var _ render.Observer = (*Observer)(nil)

// New builds an Observer registered on its own registry so several
// instances can coexist in one process.
func New() *Observer {
	o := &Observer{
		registry: prometheus.NewRegistry(),
		renders: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blockkit_module_renders_total",
				Help: "Module renders by module and outcome.",
			},
			[]string{"module", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "blockkit_module_render_duration_seconds",
				Help:    "Time spent rendering one module.",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
			[]string{"outcome"},
		),
		rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blockkit_scripts_rejected_total",
				Help: "Module scripts dropped by the sanitizer, by reason.",
			},
			[]string{"module", "reason"},
		),
	}
	o.registry.MustRegister(o.renders, o.duration, o.rejected)
	return o
}

func (o *Observer) ModuleRendered(moduleID string, outcome render.Outcome, elapsed time.Duration) {
	o.renders.WithLabelValues(moduleID, string(outcome)).Inc()
	o.duration.WithLabelValues(string(outcome)).Observe(elapsed.Seconds())
}

func (o *Observer) ScriptRejected(moduleID string, reason error) {
	o.rejected.WithLabelValues(moduleID, ReasonLabel(reason)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (o *Observer) Handler() http.Handler {
	return promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{Registry: o.registry})
}

// Registry returns the underlying registry.
func (o *Observer) Registry() *prometheus.Registry {
	return o.registry
}

// ReasonLabel maps a sanitizer error onto a bounded label value.
func ReasonLabel(err error) string {
	switch {
	case errors.Is(err, sanitize.ErrPrivilegeRequired):
		return "privilege"
	case errors.Is(err, sanitize.ErrDeniedConstruct):
		return "denied"
	case errors.Is(err, sanitize.ErrUnbalanced):
		return "unbalanced"
	default:
		return "other"
	}
}
