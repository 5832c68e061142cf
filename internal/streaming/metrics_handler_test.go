package streaming

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsHandlerExportsPrometheusText(t *testing.T) {
	metrics := NewMetrics()
	metrics.IncActiveStreams()
	metrics.IncLimitExceeded()
	metrics.AddChunks(5)
	metrics.IncStreamsCompleted()
	metrics.IncStreamsCompleted()
	metrics.IncStreamsFailed()

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	MetricsHandler(metrics).ServeHTTP(recorder, request)

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Header().Get("Content-Type"), "text/plain")

	body := recorder.Body.String()
	assert.Contains(t, body, "streaming_active_streams 1")
	assert.Contains(t, body, "streaming_limit_exceeded_total 1")
	assert.Contains(t, body, "streaming_acquire_timeouts_total 0")
	assert.Contains(t, body, "streaming_chunks_emitted_total 5")
	assert.Contains(t, body, "streaming_streams_completed_total 2")
	assert.Contains(t, body, "streaming_streams_failed_total 1")
}
