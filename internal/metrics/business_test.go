package metrics

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scrape collects the current Prometheus exposition output.
func scrape(t *testing.T, provider *Provider) string {
	t.Helper()
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest("GET", "/metrics", nil)
	provider.Handler().ServeHTTP(recorder, request)
	body, err := io.ReadAll(recorder.Body)
	require.NoError(t, err)
	return string(body)
}

func TestNewBusinessMetrics(t *testing.T) {
	provider, err := NewProvider("test_app")
	require.NoError(t, err)

	businessMetrics, err := NewBusinessMetrics(provider.MeterProvider(), "test_app")
	require.NoError(t, err)
	assert.NotNil(t, businessMetrics)
}

func TestBusinessMetrics_RecordOperation(t *testing.T) {
	provider, err := NewProvider("test_app")
	require.NoError(t, err)

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "test_app")
	require.NoError(t, err)

	bm.RecordOperation(context.Background(), "sync", "vendor_create", "success")
	bm.RecordOperation(context.Background(), "sync", "vendor_create", "partial")
	bm.RecordOperation(context.Background(), "outbox", "entry_replay", "error")

	output := scrape(t, provider)
	assert.Contains(t, output, "test_app_operations_total")
	assert.Contains(t, output, `operation="vendor_create"`)
	assert.Contains(t, output, `status="partial"`)
}

func TestBusinessMetrics_RecordDuration(t *testing.T) {
	provider, err := NewProvider("test_app")
	require.NoError(t, err)

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "test_app")
	require.NoError(t, err)

	bm.RecordDuration(context.Background(), "sync", "vendor_create", 150*time.Millisecond, "success")

	output := scrape(t, provider)
	assert.Contains(t, output, "test_app_operation_duration_seconds")
}

func TestBusinessMetrics_RecordOutboxDepth(t *testing.T) {
	provider, err := NewProvider("test_app")
	require.NoError(t, err)

	bm, err := NewBusinessMetrics(provider.MeterProvider(), "test_app")
	require.NoError(t, err)

	bm.RecordOutboxDepth(context.Background(), 4, 1)

	output := scrape(t, provider)
	assert.Contains(t, output, "test_app_outbox_entries")
	assert.Contains(t, output, `state="pending"`)
	assert.Contains(t, output, `state="exhausted"`)
}

func TestNoOpBusinessMetrics(t *testing.T) {
	bm := NewNoOpBusinessMetrics()

	// None of these should panic
	bm.RecordOperation(context.Background(), "sync", "vendor_create", "success")
	bm.RecordDuration(context.Background(), "sync", "vendor_create", time.Second, "success")
	bm.RecordOutboxDepth(context.Background(), 0, 0)
}
