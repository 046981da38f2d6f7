package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects the monitoring counters. A nil *Metrics records nothing.
type Metrics struct {
	cycles        *prometheus.CounterVec
	cycleDuration prometheus.Histogram
	fetches       *prometheus.CounterVec
	triggers      *prometheus.CounterVec
	reconciles    *prometheus.CounterVec
	tracked       prometheus.Gauge
}

func NewMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rustbot",
			Subsystem: "monitor",
			Name:      "cycles_total",
			Help:      "Monitoring cycles by result.",
		}, []string{"result"}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rustbot",
			Subsystem: "monitor",
			Name:      "cycle_duration_seconds",
			Help:      "Duration of monitoring cycles.",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rustbot",
			Subsystem: "monitor",
			Name:      "fetches_total",
			Help:      "Server status lookups by result.",
		}, []string{"result"}),
		triggers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rustbot",
			Subsystem: "monitor",
			Name:      "triggers_total",
			Help:      "Manual update requests by outcome.",
		}, []string{"outcome"}),
		reconciles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rustbot",
			Subsystem: "monitor",
			Name:      "reconcile_total",
			Help:      "Live message reconciliations by action.",
		}, []string{"action"}),
		tracked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rustbot",
			Subsystem: "monitor",
			Name:      "tracked_servers",
			Help:      "Number of tracked servers seen by the last cycle.",
		}),
	}
	if registerer != nil {
		registerer.MustRegister(m.cycles, m.cycleDuration, m.fetches, m.triggers, m.reconciles, m.tracked)
	}
	return m
}

func (m *Metrics) observeCycle(result CycleResult, seconds float64) {
	if m == nil {
		return
	}
	m.cycles.WithLabelValues(string(result)).Inc()
	m.cycleDuration.Observe(seconds)
}

func (m *Metrics) observeFetch(status EntityStatus) {
	if m == nil {
		return
	}
	result := "ok"
	if status.Failure != nil {
		result = status.Failure.Label()
	}
	m.fetches.WithLabelValues(result).Inc()
}

func (m *Metrics) observeTrigger(outcome string) {
	if m == nil {
		return
	}
	m.triggers.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeReconcile(action Action) {
	if m == nil {
		return
	}
	m.reconciles.WithLabelValues(string(action)).Inc()
}

func (m *Metrics) setTracked(count int) {
	if m == nil {
		return
	}
	m.tracked.Set(float64(count))
}
