package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServiceCounters(t *testing.T) {
	m := NewMetricsService()

	m.RecordReply(StateAwaitingEntry)
	m.RecordReply(StateAwaitingEntry)
	m.RecordTokenAction("consume", "ok")
	m.RecordWebhookEvent("enqueued")
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.ObserveHTTPRequest(http.MethodPost, "/callback", http.StatusOK, time.Millisecond)

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	counters := map[string]float64{}
	for _, mf := range families {
		for _, metric := range mf.GetMetric() {
			if c := metric.GetCounter(); c != nil {
				counters[mf.GetName()] += c.GetValue()
			}
		}
	}
	assert.Equal(t, float64(2), counters["conversation_replies_total"])
	assert.Equal(t, float64(1), counters["auth_token_actions_total"])
	assert.Equal(t, float64(1), counters["webhook_events_total"])
	assert.Equal(t, float64(1), counters["cache_hits_total"])
	assert.Equal(t, float64(1), counters["cache_misses_total"])
	assert.Equal(t, float64(1), counters["http_requests_total"])

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `conversation_replies_total{state="awaiting_entry"} 2`)
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.RecordReply(StateRegistered)
	m.RecordTokenAction("issue", "ok")
	m.ObserveCacheWrite(time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
