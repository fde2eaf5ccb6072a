package authgate

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeAnonymous     = "anonymous"
	OutcomeAuthenticated = "authenticated"
	OutcomeDisabled      = "disabled"
)

// Metrics holds the gateway counters. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	AuthenticationsTotal *prometheus.CounterVec
	DecisionsTotal       *prometheus.CounterVec
	LoginsTotal          *prometheus.CounterVec
}

// NewMetrics creates and registers the gateway metrics
func NewMetrics(registry prometheus.Registerer) *Metrics {
	m := &Metrics{
		AuthenticationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authgate_authentications_total",
				Help: "Total number of authenticated requests by outcome",
			},
			[]string{"outcome"},
		),
		DecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authgate_decisions_total",
				Help: "Total number of route authorization decisions",
			},
			[]string{"decision"},
		),
		LoginsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "authgate_logins_total",
				Help: "Total number of login and registration attempts by result",
			},
			[]string{"operation", "result"},
		),
	}

	registry.MustRegister(
		m.AuthenticationsTotal,
		m.DecisionsTotal,
		m.LoginsTotal,
	)

	return m
}

// RecordAuthentication counts one authenticator outcome
func (m *Metrics) RecordAuthentication(sc SecurityContext, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeAnonymous
	switch {
	case IsAccountDisabled(err):
		outcome = OutcomeDisabled
	case sc.IsAuthenticated():
		outcome = OutcomeAuthenticated
	}
	m.AuthenticationsTotal.WithLabelValues(outcome).Inc()
}

// RecordDecision counts one policy decision
func (m *Metrics) RecordDecision(d Decision) {
	if m == nil {
		return
	}
	m.DecisionsTotal.WithLabelValues(d.String()).Inc()
}

// RecordLogin counts one account operation, operation is login or register
func (m *Metrics) RecordLogin(operation string, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.LoginsTotal.WithLabelValues(operation, result).Inc()
}
