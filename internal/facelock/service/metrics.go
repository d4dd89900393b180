package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects the coordinator's operational counters.  A nil *Metrics
// is valid and records nothing, so tests can skip the registry entirely.
type Metrics struct {
	decisions       *prometheus.CounterVec
	commandsQueued  prometheus.Counter
	commandsPolled  prometheus.Counter
	pollsEmpty      prometheus.Counter
	confirms        *prometheus.CounterVec
	auditFailures   prometheus.Counter
	pendingCommands prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "facelock_access_decisions_total",
			Help: "Access decisions notified to the coordinator, by method and outcome.",
		}, []string{"method", "outcome"}),
		commandsQueued: factory.NewCounter(prometheus.CounterOpts{
			Name: "facelock_commands_queued_total",
			Help: "Commands pushed into the actuator mailbox.",
		}),
		commandsPolled: factory.NewCounter(prometheus.CounterOpts{
			Name: "facelock_commands_polled_total",
			Help: "Commands handed to the actuator by poll.",
		}),
		pollsEmpty: factory.NewCounter(prometheus.CounterOpts{
			Name: "facelock_polls_empty_total",
			Help: "Actuator polls that found the mailbox empty.",
		}),
		confirms: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "facelock_command_confirms_total",
			Help: "Actuator confirmations, by reported status.",
		}, []string{"status"}),
		auditFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "facelock_audit_append_failures_total",
			Help: "Audit log writes that failed and were surfaced to the operator.",
		}),
		pendingCommands: factory.NewGauge(prometheus.GaugeOpts{
			Name: "facelock_pending_commands",
			Help: "Commands currently waiting in the actuator mailbox.",
		}),
	}
}

func (m *Metrics) decision(method, outcome string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(method, outcome).Inc()
}

func (m *Metrics) commandQueued(pending int) {
	if m == nil {
		return
	}
	m.commandsQueued.Inc()
	m.pendingCommands.Set(float64(pending))
}

func (m *Metrics) commandPolled(pending int) {
	if m == nil {
		return
	}
	m.commandsPolled.Inc()
	m.pendingCommands.Set(float64(pending))
}

func (m *Metrics) pollEmpty() {
	if m == nil {
		return
	}
	m.pollsEmpty.Inc()
}

func (m *Metrics) commandConfirmed(status string) {
	if m == nil {
		return
	}
	m.confirms.WithLabelValues(status).Inc()
}

func (m *Metrics) auditFailure() {
	if m == nil {
		return
	}
	m.auditFailures.Inc()
}
