package api

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("columnar", reg)

	m.RecordRequest("tcp", 100, nil, 10*time.Millisecond)
	m.RecordRequest("zmq", 50, errors.New("boom"), time.Millisecond)
	m.RecordBatch([]ColumnSummary{
		{Type: "int32", Length: 4, NullCount: 1},
		{Type: "utf8", Length: 4, NullCount: 2},
	})
	m.RecordBatch(nil)

	require.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("tcp", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("zmq", "error")))
	require.Equal(t, 150.0, testutil.ToFloat64(m.BytesReceived))
	require.Equal(t, 2.0, testutil.ToFloat64(m.BatchesTotal))
	require.Equal(t, 3.0, testutil.ToFloat64(m.NullsTotal))
	require.Equal(t, 1.0, testutil.ToFloat64(m.ArraysTotal.WithLabelValues("utf8")))

	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP columnar_batches_total Total record batches decoded
# TYPE columnar_batches_total counter
columnar_batches_total 2
`), "columnar_batches_total"))
}

func TestNewMetricsUnregistered(t *testing.T) {
	m := NewMetrics("columnar", nil)
	m.ActiveConnections.Inc()
	require.Equal(t, 1.0, testutil.ToFloat64(m.ActiveConnections))
}

func TestMetricsServerHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("columnar", reg)
	m.AuthFailures.Inc()

	srv := httptest.NewServer(NewMetricsServer("", reg).Handler())
	defer srv.Close()

	get := func(path string) (int, string) {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(b)
	}

	code, body := get("/health")
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "OK", body)

	code, body = get("/metrics")
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, body, "columnar_auth_failures_total 1")
}
