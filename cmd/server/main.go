package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/eugenenazirov/relay-service/internal/api"
	"github.com/eugenenazirov/relay-service/internal/application"
	"github.com/eugenenazirov/relay-service/internal/config"
	"github.com/eugenenazirov/relay-service/internal/logging"
	"github.com/eugenenazirov/relay-service/internal/metrics"
)

const shutdownGracePeriod = 10 * time.Second

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("relay-service", "Multi-tenant API relay service")
	envFile := kingpinApp.Flag("env-file", "Path to a dotenv file read beneath the process environment").Default(".env").String()
	check := kingpinApp.Flag("check-config", "Resolve configuration, print it with secrets redacted, and exit").Bool()
	rateLimitRPSFlag := kingpinApp.Flag("rate-limit-rps", "Requests per second allowed on the status API (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := kingpinApp.Flag("rate-limit-burst", "Burst capacity for the status API rate limiter (set 0 to disable)").Default("-1").Int()

	kingpin.MustParse(kingpinApp.Parse(os.Args[1:]))

	dotenv, err := config.LoadDotEnv(*envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load env file: %v\n", err)
		os.Exit(1)
	}

	resolveLogger := zap.NewNop()
	if *check {
		if dev, devErr := zap.NewDevelopment(); devErr == nil {
			resolveLogger = dev
		}
	}

	collector := metrics.NewCollector(prometheus.NewRegistry())
	cfg, err := config.Resolve(config.Layered(config.OSEnv{}, dotenv),
		config.WithLogger(resolveLogger),
		config.WithReporter(collector),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to resolve configuration: %v\n", err)
		os.Exit(1)
	}

	if *check {
		_ = resolveLogger.Sync()
		os.Exit(checkConfig(os.Stdout, cfg))
	}

	logger, err := logging.New(cfg.Logging, cfg.Development.Debug)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()

	for _, warning := range cfg.Warnings() {
		logger.Warn("insecure configuration", zap.String("detail", warning))
	}

	collector.ObserveConfig(cfg)
	routerOpts := []api.RouterOption{api.WithMetrics(collector)}
	if *rateLimitRPSFlag >= 0 && *rateLimitBurstFlag >= 0 {
		routerOpts = append(routerOpts, api.WithRateLimit(*rateLimitRPSFlag, *rateLimitBurstFlag))
	}

	app, err := application.New(cfg, logger, routerOpts...)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), shutdownGracePeriod, logger)
}

// checkConfig prints the redacted record followed by any warnings and
// returns the process exit code.
func checkConfig(w io.Writer, cfg *config.Config) int {
	if err := cfg.WriteYAML(w); err != nil {
		fmt.Fprintf(w, "# failed to render configuration: %v\n", err)
		return 1
	}
	for _, warning := range cfg.Warnings() {
		fmt.Fprintf(w, "# warning: %s\n", warning)
	}
	return 0
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
