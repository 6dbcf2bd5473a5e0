package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"

	"todoapi/internal/adapter/database/sqlite"
	"todoapi/internal/core/domain"
	"todoapi/internal/core/port"
	tel "todoapi/internal/core/telemetry"
)

const taskColumns = "id, title, description, is_completed, created_at, completed_at, owner_id"

// TaskRepository is the sqlite-backed task store. Every statement filters
// by owner_id; there is no way to read or touch another owner's rows.
type TaskRepository struct {
	db    *sqlite.DB
	probe port.Telemetry
}

func NewTaskRepository(db *sqlite.DB, probe port.Telemetry) port.TaskRepository {
	if probe == nil {
		probe = tel.NewNoOpProbe()
	}

	return &TaskRepository{db: db, probe: probe}
}

func scanTask(scanner interface{ Scan(...any) error }) (domain.Task, error) {
	var task domain.Task

	err := scanner.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&task.IsCompleted,
		&task.CreatedAt,
		&task.CompletedAt,
		&task.OwnerID,
	)

	return task, err
}

func (tr *TaskRepository) GetAllByOwner(ctx context.Context, ownerID string) ([]domain.Task, error) {
	ctx, span := tr.probe.StartRepositorySpan(ctx, "GetAllByOwner", "task", map[string]interface{}{
		"db.system": "sqlite",
		"db.table":  "tasks",
		"owner.id":  ownerID,
	})
	defer span.End()

	startTime := time.Now()

	query := tr.db.QueryBuilder.Select(taskColumns).
		From("tasks").
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("created_at DESC", "id DESC")

	stmt, args, err := query.ToSql()

	if err != nil {
		span.SetStatus("error", err.Error())
		span.RecordError(err)
		return nil, err
	}

	rows, err := tr.db.QueryContext(ctx, stmt, args...)

	if err != nil {
		span.SetStatus("error", err.Error())
		span.RecordError(err)
		tr.probe.RecordRepositoryOperation(ctx, "GetAllByOwner", "task", time.Since(startTime), err)
		return nil, err
	}

	defer rows.Close()

	tasks := []domain.Task{}

	for rows.Next() {
		task, err := scanTask(rows)

		if err != nil {
			span.RecordError(err)
			return nil, err
		}

		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	span.SetAttributes(map[string]interface{}{"db.rows_returned": len(tasks)})
	span.SetStatus("ok", "")
	tr.probe.RecordRepositoryOperation(ctx, "GetAllByOwner", "task", time.Since(startTime), nil)

	return tasks, nil
}

func (tr *TaskRepository) GetByID(ctx context.Context, id int, ownerID string) (domain.Task, error) {
	query := tr.db.QueryBuilder.Select(taskColumns).
		From("tasks").
		Where(sq.Eq{"id": id}).
		Where(sq.Eq{"owner_id": ownerID}).
		Limit(1)

	stmt, args, err := query.ToSql()

	if err != nil {
		return domain.Task{}, err
	}

	task, err := scanTask(tr.db.QueryRowContext(ctx, stmt, args...))

	if errors.Is(err, sql.ErrNoRows) {
		return domain.Task{}, domain.ErrTaskNotFound
	}

	if err != nil {
		return domain.Task{}, err
	}

	return task, nil
}

func (tr *TaskRepository) Create(ctx context.Context, task domain.Task) (domain.Task, error) {
	ctx, span := tr.probe.StartRepositorySpan(ctx, "Create", "task", map[string]interface{}{
		"db.system":    "sqlite",
		"db.table":     "tasks",
		"db.operation": "INSERT",
		"owner.id":     task.OwnerID,
	})
	defer span.End()

	startTime := time.Now()

	stmt, args, err := tr.db.QueryBuilder.Insert("tasks").
		Columns("title", "description", "is_completed", "created_at", "completed_at", "owner_id").
		Values(task.Title, task.Description, task.IsCompleted, task.CreatedAt, task.CompletedAt, task.OwnerID).
		ToSql()

	if err != nil {
		span.SetStatus("error", err.Error())
		span.RecordError(err)
		return domain.Task{}, err
	}

	result, err := tr.db.ExecContext(ctx, stmt, args...)

	if err != nil {
		span.SetStatus("error", err.Error())
		span.RecordError(err)
		tr.probe.RecordRepositoryOperation(ctx, "Create", "task", time.Since(startTime), err)
		return domain.Task{}, err
	}

	id, err := result.LastInsertId()

	if err != nil {
		return domain.Task{}, err
	}

	saved, err := tr.GetByID(ctx, int(id), task.OwnerID)

	if err != nil {
		span.SetStatus("error", err.Error())
		span.RecordError(err)
		return domain.Task{}, err
	}

	span.SetAttributes(map[string]interface{}{"task.id": saved.ID})
	span.SetStatus("ok", "")
	tr.probe.RecordRepositoryOperation(ctx, "Create", "task", time.Since(startTime), nil)

	return saved, nil
}

func (tr *TaskRepository) Update(ctx context.Context, task domain.Task) error {
	ctx, span := tr.probe.StartRepositorySpan(ctx, "Update", "task", map[string]interface{}{
		"db.system":    "sqlite",
		"db.table":     "tasks",
		"db.operation": "UPDATE",
		"task.id":      task.ID,
		"owner.id":     task.OwnerID,
	})
	defer span.End()

	stmt, args, err := tr.db.QueryBuilder.Update("tasks").
		Set("title", task.Title).
		Set("description", task.Description).
		Set("is_completed", task.IsCompleted).
		Set("completed_at", task.CompletedAt).
		Where(sq.Eq{"id": task.ID}).
		Where(sq.Eq{"owner_id": task.OwnerID}).
		ToSql()

	if err != nil {
		return err
	}

	result, err := tr.db.ExecContext(ctx, stmt, args...)

	if err != nil {
		span.SetStatus("error", err.Error())
		span.RecordError(err)
		return err
	}

	rowsAffected, err := result.RowsAffected()

	if err != nil {
		return err
	}

	// The row was read moments ago, so zero rows means it vanished under
	// us; the service decides whether that is a not-found or a failure.
	if rowsAffected == 0 {
		span.SetStatus("error", domain.ErrConflict.Error())
		return domain.ErrConflict
	}

	span.SetStatus("ok", "")

	return nil
}

func (tr *TaskRepository) Delete(ctx context.Context, id int, ownerID string) (bool, error) {
	stmt, args, err := tr.db.QueryBuilder.Delete("tasks").
		Where(sq.Eq{"id": id}).
		Where(sq.Eq{"owner_id": ownerID}).
		ToSql()

	if err != nil {
		return false, err
	}

	result, err := tr.db.ExecContext(ctx, stmt, args...)

	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()

	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

func (tr *TaskRepository) GetByCompletion(ctx context.Context, ownerID string, completed bool) ([]domain.Task, error) {
	ordering := "created_at DESC"

	if completed {
		ordering = "completed_at DESC"
	}

	query := tr.db.QueryBuilder.Select(taskColumns).
		From("tasks").
		Where(sq.Eq{"owner_id": ownerID}).
		Where(sq.Eq{"is_completed": completed}).
		OrderBy(ordering, "id DESC")

	stmt, args, err := query.ToSql()

	if err != nil {
		return nil, err
	}

	rows, err := tr.db.QueryContext(ctx, stmt, args...)

	if err != nil {
		return nil, err
	}

	defer rows.Close()

	tasks := []domain.Task{}

	for rows.Next() {
		task, err := scanTask(rows)

		if err != nil {
			return nil, err
		}

		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}
