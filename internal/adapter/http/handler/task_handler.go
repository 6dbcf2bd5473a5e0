package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"todoapi/internal/adapter/http/helper"
	"todoapi/internal/adapter/http/middleware"
	"todoapi/internal/core/domain"
	"todoapi/internal/core/model/request"
	"todoapi/internal/core/port"
	"todoapi/pkg/config"
	"todoapi/pkg/tracing"
)

// TaskHandler exposes the task operations over HTTP. The owner id is read
// from the authenticated context on every request; nothing in the payload
// can redirect an operation at another user's data.
type TaskHandler struct {
	service port.TaskService
	logger  *config.LokiLogger
}

func NewTaskHandler(service port.TaskService, logger *config.LokiLogger) *TaskHandler {
	return &TaskHandler{service: service, logger: logger}
}

func (h *TaskHandler) GetAllTasks(c *gin.Context) {
	ctx, span := tracing.CreateChildSpan(c.Request.Context(), "handler.task.GetAllTasks", []attribute.KeyValue{
		attribute.String("handler.operation", "GetAllTasks"),
		attribute.String("handler.method", c.Request.Method),
		attribute.String("handler.path", c.FullPath()),
	})
	defer span.End()

	ownerID := middleware.OwnerID(c)

	tasks, err := h.service.List(ctx, ownerID)

	if err != nil {
		tracing.AddSpanError(span, err)
		h.logError(c, "Failed to list tasks", err)
		helper.SendInternalError(c, "Failed to list tasks")
		return
	}

	span.SetAttributes(attribute.Int("task.count", len(tasks)))

	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) GetCompletedTasks(c *gin.Context) {
	ownerID := middleware.OwnerID(c)

	tasks, err := h.service.ListCompleted(c.Request.Context(), ownerID)

	if err != nil {
		h.logError(c, "Failed to list completed tasks", err)
		helper.SendInternalError(c, "Failed to list completed tasks")
		return
	}

	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) GetPendingTasks(c *gin.Context) {
	ownerID := middleware.OwnerID(c)

	tasks, err := h.service.ListPending(c.Request.Context(), ownerID)

	if err != nil {
		h.logError(c, "Failed to list pending tasks", err)
		helper.SendInternalError(c, "Failed to list pending tasks")
		return
	}

	c.JSON(http.StatusOK, tasks)
}

func (h *TaskHandler) GetTask(c *gin.Context) {
	id, ok := taskID(c)

	if !ok {
		return
	}

	ownerID := middleware.OwnerID(c)

	task, err := h.service.Get(c.Request.Context(), id, ownerID)

	if errors.Is(err, domain.ErrTaskNotFound) {
		helper.SendNotFoundError(c, "Task not found")
		return
	}

	if err != nil {
		h.logError(c, "Failed to get task", err)
		helper.SendInternalError(c, "Failed to get task")
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req request.CreateTaskRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		helper.SendBadRequestError(c, "body", "Invalid request body")
		return
	}

	ctx, span := tracing.CreateChildSpan(c.Request.Context(), "handler.task.CreateTask", []attribute.KeyValue{
		attribute.String("handler.operation", "CreateTask"),
		attribute.String("handler.method", c.Request.Method),
		attribute.String("handler.path", c.FullPath()),
	})
	defer span.End()

	ownerID := middleware.OwnerID(c)

	task, err := h.service.Create(ctx, domain.Task{
		Title:       req.Title,
		Description: req.Description,
		IsCompleted: req.IsCompleted,
		OwnerID:     ownerID,
	})

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		helper.SendValidationError(c, err)
		return
	}

	if err != nil {
		tracing.AddSpanError(span, err)
		h.logError(c, "Failed to create task", err)
		helper.SendInternalError(c, "Failed to create task")
		return
	}

	span.SetAttributes(attribute.Int("task.id", task.ID))

	c.Header("Location", fmt.Sprintf("/todos/%d", task.ID))
	c.JSON(http.StatusCreated, task)
}

func (h *TaskHandler) UpdateTask(c *gin.Context) {
	id, ok := taskID(c)

	if !ok {
		return
	}

	var req request.UpdateTaskRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		helper.SendBadRequestError(c, "body", "Invalid request body")
		return
	}

	// The body must name the same task as the path; an omitted id reads as
	// zero and fails the same way. Rejected before touching the store.
	if req.ID != id {
		helper.SendBadRequestError(c, "id", "Body id does not match the path")
		return
	}

	ownerID := middleware.OwnerID(c)

	_, err := h.service.Update(c.Request.Context(), domain.Task{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		IsCompleted: req.IsCompleted,
		OwnerID:     ownerID,
	})

	if errors.Is(err, domain.ErrTaskNotFound) {
		helper.SendNotFoundError(c, "Task not found")
		return
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		helper.SendValidationError(c, err)
		return
	}

	if err != nil {
		h.logError(c, "Failed to update task", err)
		helper.SendInternalError(c, "Failed to update task")
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *TaskHandler) DeleteTask(c *gin.Context) {
	id, ok := taskID(c)

	if !ok {
		return
	}

	ownerID := middleware.OwnerID(c)

	err := h.service.Delete(c.Request.Context(), id, ownerID)

	if errors.Is(err, domain.ErrTaskNotFound) {
		helper.SendNotFoundError(c, "Task not found")
		return
	}

	if err != nil {
		h.logError(c, "Failed to delete task", err)
		helper.SendInternalError(c, "Failed to delete task")
		return
	}

	c.Status(http.StatusNoContent)
}

// taskID parses the :id route param. A non-numeric id can never name an
// existing task, so it reads as not found rather than malformed.
func taskID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))

	if err != nil || id <= 0 {
		helper.SendNotFoundError(c, "Task not found")
		return 0, false
	}

	return id, true
}

func (h *TaskHandler) logError(c *gin.Context, msg string, err error) {
	if h.logger == nil {
		return
	}

	h.logger.ErrorWithTrace(c.Request.Context(), msg,
		zap.Error(err),
		zap.String("path", c.FullPath()),
		zap.String("request_id", c.GetString("request_id")),
	)
}
