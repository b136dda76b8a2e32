package api

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestBatchHandlerProcess(t *testing.T) {
	mem := memory.NewCheckedAllocator(memory.NewGoAllocator())
	defer mem.AssertSize(t, 0)

	metrics := NewMetrics("test", prometheus.NewRegistry())
	h := NewBatchHandler(mem, metrics, nil)

	got, err := h.Process(ipcPayload(t))
	require.NoError(t, err)
	if diff := cmp.Diff(wantSummary, withoutBytes(t, got)); diff != "" {
		t.Errorf("summary mismatch (-want +got):\n%s", diff)
	}

	require.Equal(t, 1.0, testutil.ToFloat64(metrics.BatchesTotal))
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.ArraysTotal.WithLabelValues("int32")))
	require.Equal(t, 1.0, testutil.ToFloat64(metrics.NullsTotal))
}

func TestBatchHandlerHandle(t *testing.T) {
	metrics := NewMetrics("test", prometheus.NewRegistry())
	h := NewBatchHandler(nil, metrics, nil)

	b, err := h.Handle("tcp", ipcPayload(t))
	require.NoError(t, err)
	var resp Response
	require.NoError(t, json.Unmarshal(b, &resp))
	require.True(t, resp.OK)
	require.Empty(t, resp.Error)
	require.Equal(t, wantSummary, withoutBytes(t, resp.Batches))

	b, err = h.Handle("tcp", []byte("garbage"))
	require.NoError(t, err)
	resp = Response{}
	require.NoError(t, json.Unmarshal(b, &resp))
	require.False(t, resp.OK)
	require.Contains(t, resp.Error, "failed to import batch")

	b, err = h.Handle("tcp", nil)
	require.NoError(t, err)
	require.Contains(t, string(b), "received empty data")

	require.Equal(t, 1.0, testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("tcp", "ok")))
	require.Equal(t, 2.0, testutil.ToFloat64(metrics.RequestsTotal.WithLabelValues("tcp", "error")))
}
