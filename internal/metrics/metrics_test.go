package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegisterAndCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordStoreFallback("list")
	m.RecordStoreFallback("list")
	m.RecordProviderFallback("score")
	m.RecordIndexFailure()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.storeFallbacks.WithLabelValues("list")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.providerFallbacks.WithLabelValues("score")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.indexFailures))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordStoreFallback("get")
		m.RecordAnalysis(true, time.Second)
		m.ObserveFacet("swot", time.Millisecond)
		m.SetLocalProjects(3)
	})
}

func TestAnalysisTimings(t *testing.T) {
	timings := NewAnalysisTimings(9)
	timings.Track("swot", func() { time.Sleep(2 * time.Millisecond) })
	timings.Track("score", func() {})
	timings.Finalize()

	name, ms := timings.Slowest()
	assert.Equal(t, "swot", name)
	assert.Greater(t, ms, 0.0)
	assert.GreaterOrEqual(t, timings.TotalMs, ms)

	attrs := timings.LogAttrs()
	assert.Len(t, attrs, 4)
}

func TestSyncReportSummary(t *testing.T) {
	r := NewSyncReport()
	r.Scanned, r.Inserted, r.Skipped = 3, 2, 1
	r.Finish()

	assert.True(t, r.Success())
	assert.True(t, strings.HasPrefix(r.GetSummary(), "Sync Summary: 3 scanned, 2 inserted"))
}
