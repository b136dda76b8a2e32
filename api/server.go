package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Server is a TCP server reading framed Arrow IPC streams. Each frame is
// answered with one JSON Response frame.
type Server struct {
	cfg     ServerConfig
	handler *BatchHandler
	auth    *Authenticator
	metrics *Metrics
	logger  log.Logger

	listener net.Listener
	running  bool
	mu       sync.Mutex
	quit     chan struct{}
	conns    sync.WaitGroup
}

// NewServer creates a Server. metrics and logger may be nil.
func NewServer(cfg ServerConfig, handler *BatchHandler, metrics *Metrics, logger log.Logger) *Server {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Server{
		cfg:     cfg,
		handler: handler,
		auth:    NewAuthenticator(cfg.Auth),
		metrics: metrics,
		logger:  log.With(logger, "component", "tcp"),
		quit:    make(chan struct{}),
	}
}

// Authenticator returns the authenticator of the server.
func (s *Server) Authenticator() *Authenticator { return s.auth }

// Addr returns the listen address, or nil before the server is started.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

func (s *Server) listen(address string) (net.Listener, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil, fmt.Errorf("server is already running")
	}

	lis, err := net.Listen("tcp", address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", address, err)
	}
	s.listener = lis
	s.running = true
	return lis, nil
}

// Run listens on the configured address and serves until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	lis, err := s.listen(s.cfg.TCPAddress)
	if err != nil {
		return err
	}
	level.Info(s.logger).Log("msg", "listening", "addr", lis.Addr())

	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-s.quit:
		}
	}()
	s.serve(lis)
	return nil
}

// StartAsync listens on address and serves in a background goroutine.
func (s *Server) StartAsync(address string) error {
	lis, err := s.listen(address)
	if err != nil {
		return err
	}
	go s.serve(lis)
	return nil
}

func (s *Server) serve(lis net.Listener) {
	for {
		conn, err := lis.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return
			default:
			}
			level.Warn(s.logger).Log("msg", "accept failed", "err", err)
			if errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}
		s.conns.Add(1)
		go func() {
			defer s.conns.Done()
			s.handleConnection(conn)
		}()
	}
}

// Stop closes the listener and waits for open connections to finish their
// current request.
func (s *Server) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.quit)
	if err := s.listener.Close(); err != nil {
		level.Warn(s.logger).Log("msg", "failed to close listener", "err", err)
	}
	s.mu.Unlock()

	s.conns.Wait()
}

func (s *Server) handleConnection(conn net.Conn) {
	defer conn.Close()
	if s.metrics != nil {
		s.metrics.ActiveConnections.Inc()
		defer s.metrics.ActiveConnections.Dec()
	}
	logger := log.With(s.logger, "remote", conn.RemoteAddr())

	// unblock a pending read on shutdown
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-s.quit:
			_ = conn.SetReadDeadline(time.Now())
		case <-done:
		}
	}()

	if s.auth.IsEnabled() {
		s.setDeadline(conn)
		if err := s.auth.Handshake(conn, s.cfg.MaxMessageSize); err != nil {
			if s.metrics != nil {
				s.metrics.AuthFailures.Inc()
			}
			level.Warn(logger).Log("msg", "auth handshake failed", "err", err)
			return
		}
	}

	for !isClosing(s.quit) {
		s.setDeadline(conn)
		data, err := ReadMessage(conn, s.cfg.MaxMessageSize)
		if err != nil {
			if !errors.Is(err, io.EOF) && !isClosing(s.quit) {
				level.Debug(logger).Log("msg", "read failed", "err", err)
			}
			return
		}

		response, err := s.handler.Handle("tcp", data)
		if err != nil {
			level.Error(logger).Log("msg", "failed to encode response", "err", err)
			return
		}
		if err := WriteMessage(conn, response, s.cfg.MaxMessageSize); err != nil {
			level.Debug(logger).Log("msg", "write failed", "err", err)
			return
		}
	}
}

func (s *Server) setDeadline(conn net.Conn) {
	if s.cfg.ReadTimeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout))
	}
}

func isClosing(quit <-chan struct{}) bool {
	select {
	case <-quit:
		return true
	default:
		return false
	}
}
