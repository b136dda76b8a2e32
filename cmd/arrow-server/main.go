package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kingpin/v2"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/VanDung-dev/HieraChain-Columnar/api"
)

func main() {
	app := kingpin.New("arrow-server", "Serves Arrow IPC record batches over TCP and ZeroMQ.")
	configFile := app.Flag("config.file", "YAML configuration file.").Envar("HIE_CONFIG_FILE").String()
	tcpAddr := app.Flag("tcp.address", "TCP listen address; empty disables TCP.").String()
	zmqEndpoint := app.Flag("zmq.endpoint", "ZeroMQ REP endpoint, e.g. tcp://*:5555.").String()
	metricsAddr := app.Flag("metrics.address", "Address of the /metrics and /health server.").String()
	logLevel := app.Flag("log.level", "One of debug, info, warn or error.").String()
	kingpin.MustParse(app.Parse(os.Args[1:]))

	cfg, err := api.LoadServerConfig(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	for _, o := range []struct {
		flag string
		dst  *string
	}{
		{*tcpAddr, &cfg.TCPAddress},
		{*zmqEndpoint, &cfg.ZmqEndpoint},
		{*metricsAddr, &cfg.MetricsAddress},
		{*logLevel, &cfg.LogLevel},
	} {
		if o.flag != "" {
			*o.dst = o.flag
		}
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	if err := run(cfg, logger); err != nil {
		level.Error(logger).Log("msg", "server failed", "err", err)
		os.Exit(1)
	}
}

func newLogger(lvl string) log.Logger {
	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = level.NewFilter(logger, level.Allow(level.ParseDefault(lvl, level.InfoValue())))
	return log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
}

func run(cfg api.ServerConfig, logger log.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := api.NewMetrics("columnar", reg)
	handler := api.NewBatchHandler(memory.NewGoAllocator(), metrics, logger)

	server := api.NewServer(cfg, handler, metrics, logger)
	if auth := server.Authenticator(); auth.IsEnabled() {
		level.Info(logger).Log("msg", "auth enabled", "token", auth.Token())
	}

	g, ctx := errgroup.WithContext(ctx)
	if cfg.TCPAddress != "" {
		g.Go(func() error { return server.Run(ctx) })
	}
	if cfg.ZmqEndpoint != "" {
		zmq := api.NewZmqEndpoint(handler, server.Authenticator(), logger)
		if err := zmq.Listen(ctx, cfg.ZmqEndpoint); err != nil {
			return err
		}
		g.Go(func() error { return zmq.Serve(ctx) })
	}
	if cfg.MetricsAddress != "" {
		ms := api.NewMetricsServer(cfg.MetricsAddress, reg)
		g.Go(func() error { return ms.Run(ctx) })
		level.Info(logger).Log("msg", "serving metrics", "addr", cfg.MetricsAddress)
	}

	err := g.Wait()
	level.Info(logger).Log("msg", "shut down")
	return err
}
