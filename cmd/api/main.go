package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	api "todoapi/internal/adapter/http"
	"todoapi/pkg/config"
	"todoapi/pkg/tracing"
)

func main() {
	ctx := context.Background()

	lokiURL := os.Getenv("LOKI_URL")

	if lokiURL == "" {
		lokiURL = "http://localhost:3100"
	}

	logger, err := config.NewLokiLogger("todoapi", lokiURL)

	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	defer logger.Sync()

	otlpEndpoint := os.Getenv("OTLP_ENDPOINT")

	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	telemetry, err := tracing.InitTelemetry(tracing.TelemetryConfig{
		ServiceName:    "todoapi",
		ServiceVersion: "1.0.0",
		MetricsPort:    "9091",
		OTLPEndpoint:   otlpEndpoint,
	})

	if err != nil {
		log.Fatal("Failed to initialize telemetry:", err)
	}

	defer telemetry.Shutdown(ctx)

	metrics := tracing.NewAppMetrics(telemetry.PrometheusRegistry)
	metrics.StartSystemMetrics(ctx)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		appConfig := config.GetDefaultConfig()

		if os.Getenv("GIN_MODE") == "release" {
			appConfig.Environment = "production"
			appConfig.EnforceHTTPS = true
		}

		api.StartServerWithConfig(metrics, logger, appConfig)
	}()

	<-c
	logger.Logger.Info("Shutting down gracefully...")
}
