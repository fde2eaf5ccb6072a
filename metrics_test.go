package authgate_test

import (
	"testing"

	"github.com/goliatone/go-authgate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecord(t *testing.T) {
	m := authgate.NewMetrics(prometheus.NewRegistry())

	m.RecordAuthentication(authgate.Anonymous(), nil)
	m.RecordAuthentication(user("1"), nil)
	m.RecordAuthentication(user("1"), nil)
	m.RecordAuthentication(authgate.Anonymous(), authgate.ErrAccountDisabled.Clone())

	assert.Equal(t, float64(1), testutil.ToFloat64(m.AuthenticationsTotal.WithLabelValues(authgate.OutcomeAnonymous)))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.AuthenticationsTotal.WithLabelValues(authgate.OutcomeAuthenticated)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AuthenticationsTotal.WithLabelValues(authgate.OutcomeDisabled)))

	m.RecordDecision(authgate.Allow)
	m.RecordDecision(authgate.DenyForbidden)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.DecisionsTotal.WithLabelValues("allow")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.DecisionsTotal.WithLabelValues("deny_forbidden")))

	m.RecordLogin("login", nil)
	m.RecordLogin("login", authgate.ErrInvalidCredentials.Clone())
	assert.Equal(t, float64(1), testutil.ToFloat64(m.LoginsTotal.WithLabelValues("login", "success")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.LoginsTotal.WithLabelValues("login", "failure")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *authgate.Metrics

	assert.NotPanics(t, func() {
		m.RecordAuthentication(authgate.Anonymous(), nil)
		m.RecordDecision(authgate.Allow)
		m.RecordLogin("register", nil)
	})
}

func TestNewMetricsDuplicateRegistrationPanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	authgate.NewMetrics(registry)

	assert.Panics(t, func() {
		authgate.NewMetrics(registry)
	})
}
