package api

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/go-zeromq/zmq4"
)

// ErrEndpointNotListening is returned by Serve before Listen.
var ErrEndpointNotListening = errors.New("zmq endpoint is not listening")

// ZmqEndpoint serves the batch handler on a ZeroMQ REP socket. A request is
// one message: the IPC stream as its last frame, preceded by the auth token
// frame when auth is enabled. The reply is the JSON Response.
type ZmqEndpoint struct {
	handler *BatchHandler
	auth    *Authenticator
	logger  log.Logger

	mu  sync.Mutex
	rep zmq4.Socket
}

// NewZmqEndpoint creates an endpoint. logger may be nil.
func NewZmqEndpoint(handler *BatchHandler, auth *Authenticator, logger log.Logger) *ZmqEndpoint {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	if auth == nil {
		auth = NewAuthenticator(AuthConfig{})
	}
	return &ZmqEndpoint{handler: handler, auth: auth, logger: log.With(logger, "component", "zmq")}
}

// Listen binds the REP socket to endpoint. The socket lives until ctx is
// done.
func (e *ZmqEndpoint) Listen(ctx context.Context, endpoint string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rep != nil {
		return errors.New("zmq endpoint already listening")
	}

	rep := zmq4.NewRep(ctx)
	if err := rep.Listen(endpoint); err != nil {
		_ = rep.Close()
		return fmt.Errorf("failed to bind %s: %w", endpoint, err)
	}
	e.rep = rep
	level.Info(e.logger).Log("msg", "listening", "endpoint", endpoint)
	return nil
}

// Serve answers requests until ctx is done, then closes the socket.
func (e *ZmqEndpoint) Serve(ctx context.Context) error {
	e.mu.Lock()
	rep := e.rep
	e.mu.Unlock()
	if rep == nil {
		return ErrEndpointNotListening
	}
	defer rep.Close()

	for {
		msg, err := rep.Recv()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("zmq receive: %w", err)
		}

		reply, err := e.reply(msg.Frames)
		if err != nil {
			return err
		}
		if err := rep.Send(zmq4.NewMsg(reply)); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("zmq send: %w", err)
		}
	}
}

func (e *ZmqEndpoint) reply(frames [][]byte) ([]byte, error) {
	if len(frames) == 0 {
		return e.handler.Handle("zmq", nil)
	}
	payload := frames[len(frames)-1]
	if e.auth.IsEnabled() {
		var token string
		if len(frames) > 1 {
			token = string(frames[0])
		}
		if err := e.auth.ValidateToken(token); err != nil {
			level.Warn(e.logger).Log("msg", "rejected request", "err", err)
			if e.handler.metrics != nil {
				e.handler.metrics.AuthFailures.Inc()
			}
			return marshalResponse(Response{Error: fmt.Errorf("%w: %w", ErrAuthFailed, err).Error()})
		}
	}
	return e.handler.Handle("zmq", payload)
}
