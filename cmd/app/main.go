package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Domenick1991/farefinder/config"
	"github.com/Domenick1991/farefinder/internal/amadeus"
	"github.com/Domenick1991/farefinder/internal/bootstrap"
	"github.com/Domenick1991/farefinder/internal/kafka"
	"github.com/Domenick1991/farefinder/internal/service/search"
	"github.com/Domenick1991/farefinder/internal/telemetry"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const version = "1.0.0"

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Error("load config", "error", err)
		os.Exit(1)
	}
	if cfg.DebugMode {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
		slog.SetDefault(logger)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, cfg.Telemetry.OTLPEndpoint, cfg.Telemetry.ServiceName, version)
	if err != nil {
		logger.Error("init tracer provider", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownTracer(context.Background()) }()

	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(cfg.Telemetry.ServiceName, version)
	if err != nil {
		logger.Error("init meter provider", "error", err)
		os.Exit(1)
	}
	defer func() { _ = shutdownMeter(context.Background()) }()

	baseURL := cfg.Amadeus.BaseURL()
	logger.Info("amadeus configuration",
		"env", cfg.Amadeus.Env,
		"base_url", baseURL,
		"has_api_key", cfg.Amadeus.ClientID != "",
		"has_api_secret", cfg.Amadeus.ClientSecret != "",
	)

	transport := otelhttp.NewTransport(http.DefaultTransport)
	tokens := amadeus.NewTokenCache(
		amadeus.NewClientCredentials(baseURL, cfg.Amadeus.ClientID, cfg.Amadeus.ClientSecret,
			&http.Client{Transport: transport, Timeout: cfg.Amadeus.Timeout()}),
		cfg.Amadeus.TokenSkew(),
		amadeus.WithLogger(logger),
	)
	factory := amadeus.NewClientFactory(baseURL, tokens, cfg.Amadeus.Timeout(), transport)

	opts := []search.SearchServiceOption{search.WithLogger(logger)}
	if len(cfg.Kafka.Brokers) > 0 {
		producer := kafka.NewProducer(cfg.Kafka.Brokers)
		defer producer.Close()
		if err := producer.CheckConnection(ctx); err != nil {
			logger.Warn("kafka unreachable, search events may be dropped", "error", err)
		}
		opts = append(opts, search.WithEvents(producer, cfg.Kafka.SearchEventsTopic))
	}
	searchService := search.NewSearchService(factory, opts...)

	if err := bootstrap.Run(ctx, cfg, searchService, metricsHandler, logger); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}
