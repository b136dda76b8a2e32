package api

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T, cfg ServerConfig, metrics *Metrics) *Server {
	t.Helper()
	s := NewServer(cfg, NewBatchHandler(nil, metrics, nil), metrics, nil)
	require.NoError(t, s.StartAsync("127.0.0.1:0"))
	t.Cleanup(s.Stop)
	return s
}

func exchange(t *testing.T, conn net.Conn, payload []byte) Response {
	t.Helper()
	require.NoError(t, WriteMessage(conn, payload, MaxMessageSize))
	b, err := ReadMessage(conn, MaxMessageSize)
	require.NoError(t, err)
	var resp Response
	require.NoError(t, json.Unmarshal(b, &resp))
	return resp
}

func TestServerBasicConnection(t *testing.T) {
	s := startServer(t, DefaultServerConfig(), nil)

	conn, err := net.Dial("tcp", s.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	payload := ipcPayload(t)
	for i := 0; i < 2; i++ {
		resp := exchange(t, conn, payload)
		require.True(t, resp.OK, resp.Error)
		require.Equal(t, wantSummary, withoutBytes(t, resp.Batches))
	}

	resp := exchange(t, conn, []byte("not arrow"))
	require.False(t, resp.OK)
}

func TestServerAuth(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.Auth = AuthConfig{Enabled: true, Token: "secret"}
	metrics := NewMetrics("test", prometheus.NewRegistry())
	s := startServer(t, cfg, metrics)

	conn, err := net.Dial("tcp", s.Addr().String())
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, ClientHandshake(conn, "secret", MaxMessageSize))
	require.True(t, exchange(t, conn, ipcPayload(t)).OK)

	bad, err := net.Dial("tcp", s.Addr().String())
	require.NoError(t, err)
	defer bad.Close()
	require.ErrorIs(t, ClientHandshake(bad, "guess", MaxMessageSize), ErrAuthFailed)

	// the server hangs up after a failed handshake
	_ = bad.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, err = ReadMessage(bad, MaxMessageSize)
	require.Error(t, err)
	require.Eventually(t, func() bool {
		return testutil.ToFloat64(metrics.AuthFailures) == 1
	}, 5*time.Second, 10*time.Millisecond)
}

func TestServerRejectsOversizedFrame(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.MaxMessageSize = 16
	s := startServer(t, cfg, nil)

	conn, err := net.Dial("tcp", s.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, WriteMessage(conn, make([]byte, 32), MaxMessageSize))
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, err = ReadMessage(conn, MaxMessageSize)
	require.Error(t, err, "connection closed without an answer")
}

func TestServerRunStopsWithContext(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.TCPAddress = "127.0.0.1:0"
	s := NewServer(cfg, NewBatchHandler(nil, nil, nil), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return s.Addr() != nil }, 5*time.Second, 10*time.Millisecond)
	conn, err := net.Dial("tcp", s.Addr().String())
	require.NoError(t, err)
	defer conn.Close()

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
