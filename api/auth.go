package api

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/goccy/go-json"
)

// Authentication errors
var (
	ErrAuthRequired      = errors.New("authentication required")
	ErrAuthFailed        = errors.New("authentication failed")
	ErrAuthTokenInvalid  = errors.New("invalid auth token format")
	ErrAuthTokenMismatch = errors.New("auth token mismatch")
)

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// Enabled makes every connection start with an auth handshake.
	Enabled bool `yaml:"enabled"`
	// Token is the secret clients must present.
	Token string `yaml:"token"`
}

// Authenticator checks client tokens.
type Authenticator struct {
	config AuthConfig
	mu     sync.RWMutex
}

// NewAuthenticator creates an Authenticator. When auth is enabled without a
// token a random one is generated; Token returns it.
func NewAuthenticator(config AuthConfig) *Authenticator {
	if config.Enabled && config.Token == "" {
		config.Token = GenerateToken()
	}
	return &Authenticator{config: config}
}

// IsEnabled returns true if authentication is enabled.
func (a *Authenticator) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.config.Enabled
}

// Token returns the configured token.
func (a *Authenticator) Token() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.config.Token
}

// ValidateToken compares token with the configured one in constant time.
func (a *Authenticator) ValidateToken(token string) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if !a.config.Enabled {
		return nil
	}
	if token == "" {
		return ErrAuthRequired
	}
	if subtle.ConstantTimeCompare([]byte(a.config.Token), []byte(token)) != 1 {
		return ErrAuthTokenMismatch
	}
	return nil
}

// GenerateToken returns 256 random bits, hex encoded.
func GenerateToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Errorf("failed to generate auth token: %w", err))
	}
	return hex.EncodeToString(b)
}

// AuthMessage is the first frame a client sends when auth is enabled.
type AuthMessage struct {
	Type  string `json:"type"` // always "auth"
	Token string `json:"token"`
}

// AuthResponse answers an AuthMessage.
type AuthResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Handshake reads an AuthMessage frame from rw, validates it and writes the
// AuthResponse. The returned error is nil only for an accepted token.
func (a *Authenticator) Handshake(rw io.ReadWriter, limit int) error {
	frame, err := ReadMessage(rw, limit)
	if err != nil {
		return err
	}
	authErr := a.check(frame)

	resp := AuthResponse{Success: authErr == nil}
	if authErr != nil {
		resp.Error = authErr.Error()
	}
	b, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	if err := WriteMessage(rw, b, limit); err != nil {
		return err
	}
	return authErr
}

func (a *Authenticator) check(frame []byte) error {
	var msg AuthMessage
	if err := json.Unmarshal(frame, &msg); err != nil || msg.Type != "auth" {
		return fmt.Errorf("%w: %w", ErrAuthFailed, ErrAuthTokenInvalid)
	}
	if err := a.ValidateToken(msg.Token); err != nil {
		return fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}
	return nil
}

// ClientHandshake sends token and waits for the server's answer.
func ClientHandshake(rw io.ReadWriter, token string, limit int) error {
	b, err := json.Marshal(AuthMessage{Type: "auth", Token: token})
	if err != nil {
		return err
	}
	if err := WriteMessage(rw, b, limit); err != nil {
		return err
	}
	frame, err := ReadMessage(rw, limit)
	if err != nil {
		return err
	}
	var resp AuthResponse
	if err := json.Unmarshal(frame, &resp); err != nil {
		return fmt.Errorf("failed to decode auth response: %w", err)
	}
	if !resp.Success {
		return fmt.Errorf("%w: %s", ErrAuthFailed, resp.Error)
	}
	return nil
}
