package service

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics prometheus collectors for the interview flow. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	linksGenerated   prometheus.Counter
	validations      *prometheus.CounterVec
	transitions      *prometheus.CounterVec
	interviewErrors  *prometheus.CounterVec
	invitations      *prometheus.CounterVec
	relayConnections prometheus.Gauge
	relayReconnects  prometheus.Counter
}

// NewMetrics 创建并注册指标
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		linksGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "interview",
			Name:      "links_generated_total",
			Help:      "Interview links issued or re-issued.",
		}),
		validations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "interview",
			Name:      "link_validations_total",
			Help:      "Link validations by outcome.",
		}, []string{"outcome"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "interview",
			Name:      "session_transitions_total",
			Help:      "Session status transitions.",
		}, []string{"from", "to"}),
		interviewErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "interview",
			Name:      "errors_total",
			Help:      "Interview errors recorded by type.",
		}, []string{"type"}),
		invitations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "interview",
			Name:      "invitations_total",
			Help:      "Invitation mails by result.",
		}, []string{"result"}),
		relayConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "interview",
			Name:      "relay_connections",
			Help:      "Open candidate audio relay connections.",
		}),
		relayReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "interview",
			Name:      "relay_reconnects_total",
			Help:      "Upstream AI reconnect attempts.",
		}),
	}
	if reg != nil {
		m.linksGenerated = register(reg, m.linksGenerated)
		m.validations = register(reg, m.validations)
		m.transitions = register(reg, m.transitions)
		m.interviewErrors = register(reg, m.interviewErrors)
		m.invitations = register(reg, m.invitations)
		m.relayConnections = register(reg, m.relayConnections)
		m.relayReconnects = register(reg, m.relayReconnects)
	}
	return m
}

// register reuses a collector left over from a previous container (config reload)
func register[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

func (m *Metrics) LinkGenerated() {
	if m != nil {
		m.linksGenerated.Inc()
	}
}

// Validation outcome is "valid" or the rejection reason
func (m *Metrics) Validation(outcome string) {
	if m != nil {
		m.validations.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) Transition(from, to string) {
	if m != nil {
		m.transitions.WithLabelValues(from, to).Inc()
	}
}

func (m *Metrics) InterviewError(typ string) {
	if m != nil {
		m.interviewErrors.WithLabelValues(typ).Inc()
	}
}

func (m *Metrics) Invitation(success bool) {
	if m == nil {
		return
	}
	if success {
		m.invitations.WithLabelValues("sent").Inc()
	} else {
		m.invitations.WithLabelValues("failed").Inc()
	}
}

func (m *Metrics) RelayConnected(delta float64) {
	if m != nil {
		m.relayConnections.Add(delta)
	}
}

func (m *Metrics) RelayReconnect() {
	if m != nil {
		m.relayReconnects.Inc()
	}
}
