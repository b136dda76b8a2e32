package api

import (
	"net"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateToken(t *testing.T) {
	a := NewAuthenticator(AuthConfig{Enabled: true, Token: "secret"})
	require.NoError(t, a.ValidateToken("secret"))
	require.ErrorIs(t, a.ValidateToken(""), ErrAuthRequired)
	require.ErrorIs(t, a.ValidateToken("guess"), ErrAuthTokenMismatch)

	off := NewAuthenticator(AuthConfig{})
	require.False(t, off.IsEnabled())
	require.NoError(t, off.ValidateToken(""))
}

func TestGeneratedToken(t *testing.T) {
	a := NewAuthenticator(AuthConfig{Enabled: true})
	require.Len(t, a.Token(), 64)
	require.NotEqual(t, a.Token(), GenerateToken())
	require.NoError(t, a.ValidateToken(a.Token()))
}

func TestHandshake(t *testing.T) {
	a := NewAuthenticator(AuthConfig{Enabled: true, Token: "secret"})

	for _, tc := range []struct {
		token string
		ok    bool
	}{
		{"secret", true},
		{"wrong", false},
		{"", false},
	} {
		server, client := net.Pipe()
		errc := make(chan error, 1)
		go func() { errc <- a.Handshake(server, MaxMessageSize) }()

		err := ClientHandshake(client, tc.token, MaxMessageSize)
		serverErr := <-errc
		if tc.ok {
			require.NoError(t, err)
			require.NoError(t, serverErr)
		} else {
			require.ErrorIs(t, err, ErrAuthFailed)
			require.ErrorIs(t, serverErr, ErrAuthFailed)
		}
		server.Close()
		client.Close()
	}
}

func TestHandshakeRejectsGarbage(t *testing.T) {
	a := NewAuthenticator(AuthConfig{Enabled: true, Token: "secret"})
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	errc := make(chan error, 1)
	go func() { errc <- a.Handshake(server, MaxMessageSize) }()

	require.NoError(t, WriteMessage(client, []byte("not json"), MaxMessageSize))
	_, err := ReadMessage(client, MaxMessageSize)
	require.NoError(t, err)
	require.ErrorIs(t, <-errc, ErrAuthTokenInvalid)
}
