package http

import (
	"log/slog"

	database "todoapi/internal/adapter/database/sqlite"
	repository "todoapi/internal/adapter/database/sqlite/repository"

	"todoapi/internal/adapter/http/handler"
	"todoapi/internal/core/port"
	"todoapi/internal/core/service"
	"todoapi/internal/core/telemetry"
	"todoapi/pkg/config"
)

type Container struct {
	TaskRepo    port.TaskRepository
	TaskUseCase port.TaskService

	TaskHandler   *handler.TaskHandler
	HealthHandler *handler.HealthHandler
}

func NewContainer(db *database.DB, logger *config.LokiLogger) *Container {
	probe := telemetry.NewOTELProbe(slog.Default())

	return NewContainerWithRepo(repository.NewTaskRepository(db, probe), logger)
}

// NewContainerWithRepo wires the handlers over an already built store, so
// the sqlite and postgres backends share the rest of the graph.
func NewContainerWithRepo(taskRepo port.TaskRepository, logger *config.LokiLogger) *Container {
	probe := telemetry.NewOTELProbe(slog.Default())

	taskSvc := service.NewTaskService(taskRepo, probe)

	return &Container{
		TaskRepo:    taskRepo,
		TaskUseCase: taskSvc,

		TaskHandler:   handler.NewTaskHandler(taskSvc, logger),
		HealthHandler: handler.NewHealthHandler(),
	}
}
