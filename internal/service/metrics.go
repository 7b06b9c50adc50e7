package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Transition kinds recorded on os_status_transitions_total
const (
	TransitionAdvance  = "advance"
	TransitionFinalize = "finalize"
	TransitionCancel   = "cancel"
)

// OrdemMetrics counts order lifecycle events. A nil *OrdemMetrics records nothing.
type OrdemMetrics struct {
	created     prometheus.Counter
	transitions *prometheus.CounterVec
}

// NewOrdemMetrics creates the order counters and registers them with reg
func NewOrdemMetrics(reg prometheus.Registerer) *OrdemMetrics {
	m := &OrdemMetrics{
		created: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "os_orders_created_total",
			Help: "Service orders created.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "os_status_transitions_total",
			Help: "Service order status transitions by kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(m.created, m.transitions)
	return m
}

func (m *OrdemMetrics) orderCreated() {
	if m == nil {
		return
	}
	m.created.Inc()
}

func (m *OrdemMetrics) transition(kind string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(kind).Inc()
}

// Created exposes the creation counter
func (m *OrdemMetrics) Created() prometheus.Counter {
	return m.created
}

// Transitions exposes the transition counter for kind
func (m *OrdemMetrics) Transitions(kind string) prometheus.Counter {
	return m.transitions.WithLabelValues(kind)
}
