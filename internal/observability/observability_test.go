package observability

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "warn", FormatJSON)

	logger.Info().Msg("hidden")
	logger.Warn().Str("table", "sales.orders").Msg("shown")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "shown", entry["message"])
	assert.Equal(t, "sales.orders", entry["table"])
	assert.Equal(t, "tablectl", entry["app"])
}

func TestNewLoggerConsoleDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, "not-a-level", FormatConsole)

	logger.Debug().Msg("hidden")
	logger.Info().Msg("visible")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "visible")
}

func TestMetrics(t *testing.T) {
	m := NewMetrics()
	m.ObserveOperation("create", "succeeded", 10*time.Millisecond)
	m.ObserveOperation("create", "succeeded", 20*time.Millisecond)
	m.ObserveOperation("delete", "failed", time.Millisecond)
	m.ObserveRetry("create")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.operations.WithLabelValues("create", "succeeded")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operations.WithLabelValues("delete", "failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.retries.WithLabelValues("create")))
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveOperation("create", "succeeded", time.Second)
	m.ObserveRetry("create")
}

func TestMetricsPush(t *testing.T) {
	var (
		gotPath string
		gotBody string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	m := NewMetrics()
	m.ObserveOperation("create", "succeeded", time.Millisecond)

	require.NoError(t, m.Push(srv.URL, "tablectl", map[string]string{"pipeline": "42", "empty": ""}))
	assert.Equal(t, "/metrics/job/tablectl/pipeline/42", gotPath)
	assert.NotEmpty(t, gotBody)
}
