package http

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"todoapi/internal/adapter/database/postgres"
	pgrepository "todoapi/internal/adapter/database/postgres/repository"
	database "todoapi/internal/adapter/database/sqlite"
	"todoapi/internal/adapter/http/routes"
	"todoapi/internal/core/telemetry"
	"todoapi/pkg/config"
	"todoapi/pkg/tracing"
)

func StartServer(metrics *tracing.AppMetrics, logger *config.LokiLogger) {
	StartServerWithConfig(metrics, logger, config.GetDefaultConfig())
}

func StartServerWithConfig(metrics *tracing.AppMetrics, logger *config.LokiLogger, appConfig *config.AppConfig) {
	var container *Container

	// DATABASE_URL selects postgres; the default is the embedded sqlite file.
	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		db, err := postgres.NewDB(context.Background())

		if err != nil {
			slog.Error("Failed to connect to postgres", "error", err)
			return
		}
		defer db.Close()

		probe := telemetry.NewOTELProbe(slog.Default())
		container = NewContainerWithRepo(pgrepository.NewTaskRepository(db, probe), logger)
	} else {
		db, err := database.NewDB()

		if err != nil {
			slog.Error("Failed to open database", "error", err)
			return
		}
		defer db.Close()

		container = NewContainer(db, logger)
	}

	router := routes.SetupRouterWithConfig(routes.HandlersConfig{
		HealthHandler: container.HealthHandler,
		TaskHandler:   container.TaskHandler,
	}, metrics, logger, appConfig)

	port := os.Getenv("PORT")

	if port == "" {
		port = "8080"
	}

	slog.Info("Server starting",
		"port", port,
		"environment", appConfig.Environment,
		"rate_limit_enabled", appConfig.RateLimitEnabled,
		"https_enforced", appConfig.EnforceHTTPS)

	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Server failed to start", "error", err)
	}
}
