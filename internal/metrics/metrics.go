// Package metrics exposes Prometheus collectors for filter registry and
// layout planning activity.
//
// A nil *Metrics is valid and records nothing, so callers can hold one
// unconditionally and only construct it when a registerer is configured.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ncfilter"

// Lookup results.
const (
	ResultHit  = "hit"
	ResultMiss = "miss"
)

// Metrics holds the collectors.
type Metrics struct {
	filters       *prometheus.GaugeVec   // By format
	lookups       *prometheus.CounterVec // By format and result (hit/miss)
	parseFailures prometheus.Counter
	plans         *prometheus.CounterVec // By storage mode, or "error"
}

// New creates the collectors and registers them with reg. A nil reg
// disables metrics and returns a nil *Metrics.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return nil, nil
	}

	m := &Metrics{
		filters: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "filters",
			Help:      "Number of registered filter descriptors",
		}, []string{"format"}),

		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "registry",
			Name:      "lookups_total",
			Help:      "Total number of filter lookups",
		}, []string{"format", "result"}),

		parseFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "spec",
			Name:      "parse_failures_total",
			Help:      "Total number of filter specs that failed to parse",
		}),

		plans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "planner",
			Name:      "variables_total",
			Help:      "Total number of variables planned, by resulting storage mode",
		}, []string{"storage"}),
	}

	var err error
	if m.filters, err = register(reg, m.filters); err != nil {
		return nil, err
	}
	if m.lookups, err = register(reg, m.lookups); err != nil {
		return nil, err
	}
	if m.parseFailures, err = register(reg, m.parseFailures); err != nil {
		return nil, err
	}
	if m.plans, err = register(reg, m.plans); err != nil {
		return nil, err
	}

	return m, nil
}

// register adds c to reg, returning the already registered collector when an
// identical one exists.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		var zero C
		return zero, err
	}
	return c, nil
}

// SetFilters records the number of descriptors registered under format.
func (m *Metrics) SetFilters(format string, n int) {
	if m == nil {
		return
	}
	m.filters.WithLabelValues(format).Set(float64(n))
}

// RecordLookup records a lookup and whether it found a descriptor.
func (m *Metrics) RecordLookup(format string, found bool) {
	if m == nil {
		return
	}
	result := ResultMiss
	if found {
		result = ResultHit
	}
	m.lookups.WithLabelValues(format, result).Inc()
}

// RecordParseFailure counts a filter spec parse failure.
func (m *Metrics) RecordParseFailure() {
	if m == nil {
		return
	}
	m.parseFailures.Inc()
}

// RecordPlan counts a planned variable by storage mode; use "error" for
// variables that failed.
func (m *Metrics) RecordPlan(storage string) {
	if m == nil {
		return
	}
	m.plans.WithLabelValues(storage).Inc()
}
