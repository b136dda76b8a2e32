package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus metrics of the batch servers.
type Metrics struct {
	// Request metrics, labelled by transport (tcp, zmq) and status
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	BytesReceived   prometheus.Counter

	// Batch content
	BatchesTotal prometheus.Counter
	BatchRows    prometheus.Histogram
	ArraysTotal  *prometheus.CounterVec
	NullsTotal   prometheus.Counter

	// Connections
	ActiveConnections prometheus.Gauge
	AuthFailures      prometheus.Counter
}

// NewMetrics registers the metrics with reg under namespace. A nil reg
// leaves them unregistered.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Total requests by transport and status",
		}, []string{"transport", "status"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Request processing latency by transport",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"transport"}),
		BytesReceived: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "received_bytes_total",
			Help:      "Total payload bytes received",
		}),

		BatchesTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Total record batches decoded",
		}),
		BatchRows: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_rows",
			Help:      "Number of rows per record batch",
			Buckets:   []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		ArraysTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "arrays_total",
			Help:      "Total arrays imported by data type",
		}, []string{"type"}),
		NullsTotal: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nulls_total",
			Help:      "Total null elements seen",
		}),

		ActiveConnections: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_connections",
			Help:      "Number of open TCP connections",
		}),
		AuthFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_failures_total",
			Help:      "Total rejected auth handshakes",
		}),
	}
}

// RecordRequest records one request of transport.
func (m *Metrics) RecordRequest(transport string, size int, err error, duration time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.RequestsTotal.WithLabelValues(transport, status).Inc()
	m.RequestDuration.WithLabelValues(transport).Observe(duration.Seconds())
	m.BytesReceived.Add(float64(size))
}

// RecordBatch records the columns of one decoded batch.
func (m *Metrics) RecordBatch(cols []ColumnSummary) {
	m.BatchesTotal.Inc()
	if len(cols) > 0 {
		m.BatchRows.Observe(float64(cols[0].Length))
	}
	for _, c := range cols {
		m.ArraysTotal.WithLabelValues(c.Type).Inc()
		m.NullsTotal.Add(float64(c.NullCount))
	}
}

// MetricsServer runs an HTTP server exposing /metrics and /health.
type MetricsServer struct {
	server *http.Server
}

// NewMetricsServer serves the metrics of g on addr.
func NewMetricsServer(addr string, g prometheus.Gatherer) *MetricsServer {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return &MetricsServer{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler returns the HTTP handler of the server.
func (s *MetricsServer) Handler() http.Handler { return s.server.Handler }

// Run serves until ctx is done, then shuts the server down.
func (s *MetricsServer) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() { errc <- s.server.ListenAndServe() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}
