package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncrement_AccumulatesPerName(t *testing.T) {
	m := New(time.Now())
	m.Increment("requests_total")
	m.Increment("requests_total")
	m.IncrementBy("errors_total", 3)

	stats := m.Stats(time.Now())
	assert.Equal(t, int64(2), stats.Counters["requests_total"])
	assert.Equal(t, int64(3), stats.Counters["errors_total"])
}

func TestRecordDuration_ComputesSummaryStats(t *testing.T) {
	m := New(time.Now())
	for i := 1; i <= 10; i++ {
		m.RecordDuration("fetch_ms", float64(i*10))
	}

	stats := m.Stats(time.Now())
	h, ok := stats.Histograms["fetch_ms"]
	require.True(t, ok)
	assert.Equal(t, 10, h.Count)
	assert.Equal(t, 10.0, h.Min)
	assert.Equal(t, 100.0, h.Max)
	assert.InDelta(t, 55.0, h.Avg, 0.01)
	// small samples: below the p95/p99 thresholds, so both fall back to max
	assert.Equal(t, h.Max, h.P95)
	assert.Equal(t, h.Max, h.P99)
}

func TestRecordDuration_ReservoirCapsAtMaxSize(t *testing.T) {
	m := New(time.Now())
	for i := 0; i < reservoirSize+100; i++ {
		m.RecordDuration("fetch_ms", float64(i))
	}

	stats := m.Stats(time.Now())
	assert.Equal(t, reservoirSize, stats.Histograms["fetch_ms"].Count)
	// oldest samples were dropped, so the max should reflect the most recent
	assert.Equal(t, float64(reservoirSize+99), stats.Histograms["fetch_ms"].Max)
}

func TestStats_UptimeReflectsElapsedTime(t *testing.T) {
	start := time.Now()
	m := New(start)
	later := start.Add(90 * time.Second)

	stats := m.Stats(later)
	assert.InDelta(t, 90.0, stats.UptimeSeconds, 0.01)
}

func TestStats_EmptyHistogramOmitted(t *testing.T) {
	m := New(time.Now())
	stats := m.Stats(time.Now())
	assert.Empty(t, stats.Histograms)
}
