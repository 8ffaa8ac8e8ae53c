package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetrics_RegistersCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.HTTPRequestsTotal.WithLabelValues("GET", "/v1/quotations", "200").Inc()
	m.QuotationsCreated.Inc()
	m.QuotationTransitions.WithLabelValues("sent").Add(2)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.QuotationsCreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.QuotationTransitions.WithLabelValues("sent")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["http_requests_total"])
	assert.True(t, names["quotations_created_total"])
}

func TestNewNop_IsolatedRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		NewNop()
		NewNop()
	})
}
