package audit

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetricsRegisters(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)
	require.NotNil(t, m)

	m.QueriesTotal.WithLabelValues("ok").Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("ok")))
}

func TestNewMetricsNilRegisterer(t *testing.T) {
	m := NewMetrics(nil)
	require.NotNil(t, m)
	m.LinesScanned.Inc()
}

func TestQueryCountsLinesAndOutcomes(t *testing.T) {
	registry := prometheus.NewRegistry()
	m := NewMetrics(registry)
	folder := writeFixture(t)
	e := NewEngine(NewLocator(folder, "audit"), seedDirectory(), nil, m, nil)

	_, err := e.Query(context.Background(), SearchCriteria{}, VisibilityScope{}, Page{Number: 1, Size: 10})
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.QueriesTotal.WithLabelValues("ok")))
	// 29 parseable events plus 2 malformed lines across the fixture files
	assert.Equal(t, 31.0, testutil.ToFloat64(m.LinesScanned))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.LinesMalformed))
}

func TestQueryOutcome(t *testing.T) {
	assert.Equal(t, "ok", queryOutcome(nil))
	assert.Equal(t, "cancelled", queryOutcome(context.Canceled))
	assert.Equal(t, "cancelled", queryOutcome(context.DeadlineExceeded))
	assert.Equal(t, "error", queryOutcome(ErrStorageUnavailable))
}
