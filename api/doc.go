// Package api serves array imports over the network.
//
// This package implements:
//   - Server: TCP server reading length-prefixed Arrow IPC frames
//   - ZmqEndpoint: the same requests over a ZeroMQ REP socket
//   - BatchHandler: imports each batch and answers with column summaries
//   - Authenticator: token handshake for both transports
//   - Metrics / MetricsServer: Prometheus metrics and /health
//   - ServerConfig: YAML configuration with HIE_* environment overrides
package api
