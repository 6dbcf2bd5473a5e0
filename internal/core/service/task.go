package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"

	"todoapi/internal/core/domain"
	"todoapi/internal/core/port"
	tel "todoapi/internal/core/telemetry"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// TaskService enforces the ownership and completion rules. The owner id is
// always the authenticated subject handed in by the caller, never a value
// taken from a request body.
type TaskService struct {
	repo  port.TaskRepository
	probe port.Telemetry
}

func NewTaskService(repo port.TaskRepository, probe port.Telemetry) *TaskService {
	if probe == nil {
		probe = tel.NewNoOpProbe()
	}

	return &TaskService{repo: repo, probe: probe}
}

func (s *TaskService) List(ctx context.Context, ownerID string) ([]domain.Task, error) {
	ctx, span := s.probe.StartServiceSpan(ctx, "task", "List", ownerID, nil)
	defer span.End()

	tasks, err := s.repo.GetAllByOwner(ctx, ownerID)

	if err != nil {
		span.RecordError(err)
		span.SetStatus("error", err.Error())
		return nil, err
	}

	span.SetAttributes(map[string]interface{}{"task.count": len(tasks)})

	return tasks, nil
}

func (s *TaskService) ListCompleted(ctx context.Context, ownerID string) ([]domain.Task, error) {
	return s.repo.GetByCompletion(ctx, ownerID, true)
}

func (s *TaskService) ListPending(ctx context.Context, ownerID string) ([]domain.Task, error) {
	return s.repo.GetByCompletion(ctx, ownerID, false)
}

func (s *TaskService) Get(ctx context.Context, id int, ownerID string) (domain.Task, error) {
	return s.repo.GetByID(ctx, id, ownerID)
}

func (s *TaskService) Create(ctx context.Context, task domain.Task) (domain.Task, error) {
	ctx, span := s.probe.StartServiceSpan(ctx, "task", "Create", task.OwnerID, map[string]interface{}{
		"task.title": task.Title,
	})
	defer span.End()

	start := time.Now()

	newTask := domain.Task{
		Title:       task.Title,
		Description: task.Description,
		OwnerID:     task.OwnerID,
		CreatedAt:   start.UTC(),
	}

	// A task created already completed is stamped at creation time.
	newTask.SetCompleted(task.IsCompleted, newTask.CreatedAt)

	if err := validate.Struct(newTask); err != nil {
		span.SetStatus("error", err.Error())
		return domain.Task{}, err
	}

	saved, err := s.repo.Create(ctx, newTask)

	if err != nil {
		slog.Error("Repository create failed", "error", err, "title", newTask.Title)
		s.probe.RecordServiceOperation(ctx, "task", "Create", task.OwnerID, time.Since(start), err)
		return domain.Task{}, err
	}

	s.probe.RecordBusinessEvent(ctx, "created", "task", fmt.Sprintf("%d", saved.ID), saved.OwnerID, map[string]interface{}{
		"title":     saved.Title,
		"completed": saved.IsCompleted,
	})
	s.probe.RecordServiceOperation(ctx, "task", "Create", task.OwnerID, time.Since(start), nil)

	return saved, nil
}

func (s *TaskService) Update(ctx context.Context, task domain.Task) (domain.Task, error) {
	ctx, span := s.probe.StartServiceSpan(ctx, "task", "Update", task.OwnerID, map[string]interface{}{
		"task.id": task.ID,
	})
	defer span.End()

	existing, err := s.repo.GetByID(ctx, task.ID, task.OwnerID)

	if err != nil {
		return domain.Task{}, err
	}

	existing.Title = task.Title
	existing.Description = task.Description
	existing.SetCompleted(task.IsCompleted, time.Now().UTC())

	if err := validate.Struct(existing); err != nil {
		span.SetStatus("error", err.Error())
		return domain.Task{}, err
	}

	err = s.repo.Update(ctx, existing)

	if errors.Is(err, domain.ErrConflict) {
		// A concurrent delete explains the conflict; anything else does not
		// and must surface as a server failure.
		if _, recheck := s.repo.GetByID(ctx, task.ID, task.OwnerID); errors.Is(recheck, domain.ErrTaskNotFound) {
			return domain.Task{}, domain.ErrTaskNotFound
		}

		s.probe.RecordError(ctx, "task.Update", err, map[string]interface{}{"task.id": task.ID})
		return domain.Task{}, fmt.Errorf("unexpected conflict updating task %d: %w", task.ID, err)
	}

	if err != nil {
		return domain.Task{}, err
	}

	s.probe.RecordBusinessEvent(ctx, "updated", "task", fmt.Sprintf("%d", existing.ID), existing.OwnerID, map[string]interface{}{
		"completed": existing.IsCompleted,
	})

	return existing, nil
}

func (s *TaskService) Delete(ctx context.Context, id int, ownerID string) error {
	ctx, span := s.probe.StartServiceSpan(ctx, "task", "Delete", ownerID, map[string]interface{}{
		"task.id": id,
	})
	defer span.End()

	deleted, err := s.repo.Delete(ctx, id, ownerID)

	if err != nil {
		span.RecordError(err)
		span.SetStatus("error", err.Error())
		return err
	}

	if !deleted {
		return domain.ErrTaskNotFound
	}

	s.probe.RecordBusinessEvent(ctx, "deleted", "task", fmt.Sprintf("%d", id), ownerID, nil)

	return nil
}
