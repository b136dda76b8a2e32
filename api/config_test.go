package api

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultServerConfig(t *testing.T) {
	cfg := DefaultServerConfig()
	require.NoError(t, cfg.Validate())
	require.Equal(t, ":50051", cfg.TCPAddress)
	require.False(t, cfg.Auth.Enabled)
}

func TestLoadServerConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
tcp_address: 127.0.0.1:6000
zmq_endpoint: tcp://127.0.0.1:6001
read_timeout: 30s
log_level: debug
auth:
  enabled: true
  token: from-file
`), 0o600))

	t.Setenv("HIE_AUTH_TOKEN", "from-env")
	t.Setenv("HIE_MAX_MESSAGE_SIZE", "1024")

	cfg, err := LoadServerConfig(path)
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:6000", cfg.TCPAddress)
	require.Equal(t, "tcp://127.0.0.1:6001", cfg.ZmqEndpoint)
	require.Equal(t, ":9090", cfg.MetricsAddress, "defaults survive a partial file")
	require.Equal(t, 30*time.Second, cfg.ReadTimeout)
	require.Equal(t, 1024, cfg.MaxMessageSize)
	require.Equal(t, "debug", cfg.LogLevel)
	require.True(t, cfg.Auth.Enabled)
	require.Equal(t, "from-env", cfg.Auth.Token)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"HIE_AUTH_ENABLED": "1",
		"HIE_READ_TIMEOUT": "2s",
		"HIE_TCP_ADDRESS":  "",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := DefaultServerConfig()
	require.NoError(t, cfg.ApplyEnv(lookup))
	require.True(t, cfg.Auth.Enabled)
	require.Equal(t, 2*time.Second, cfg.ReadTimeout)
	require.Empty(t, cfg.TCPAddress)
	require.Error(t, cfg.Validate(), "no transport left")

	env["HIE_READ_TIMEOUT"] = "soon"
	require.Error(t, cfg.ApplyEnv(lookup))
}

func TestValidate(t *testing.T) {
	for name, mutate := range map[string]func(*ServerConfig){
		"message size": func(c *ServerConfig) { c.MaxMessageSize = MaxMessageSize + 1 },
		"timeout":      func(c *ServerConfig) { c.ReadTimeout = -time.Second },
		"level":        func(c *ServerConfig) { c.LogLevel = "trace" },
	} {
		cfg := DefaultServerConfig()
		mutate(&cfg)
		require.Error(t, cfg.Validate(), name)
	}
}

func TestLoadServerConfigErrors(t *testing.T) {
	_, err := LoadServerConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tcp_address: [unclosed"), 0o600))
	_, err = LoadServerConfig(path)
	require.Error(t, err)
}
