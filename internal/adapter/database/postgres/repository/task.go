package repository

import (
	"context"
	"errors"
	"log/slog"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"todoapi/internal/adapter/database/postgres"
	"todoapi/internal/core/domain"
	"todoapi/internal/core/port"
	tel "todoapi/internal/core/telemetry"
)

const taskColumns = "id, title, description, is_completed, created_at, completed_at, owner_id"

// TaskRepository is the pgx-backed task store, interchangeable with the
// sqlite adapter behind the same port. All statements carry the owner_id
// filter.
type TaskRepository struct {
	db    *postgres.DB
	probe port.Telemetry
}

func NewTaskRepository(db *postgres.DB, probe port.Telemetry) port.TaskRepository {
	if probe == nil {
		probe = tel.NewNoOpProbe()
	}

	return &TaskRepository{db: db, probe: probe}
}

func scanTask(row pgx.Row) (domain.Task, error) {
	var task domain.Task

	err := row.Scan(
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

func (tr *TaskRepository) collect(ctx context.Context, stmt string, args []interface{}) ([]domain.Task, error) {
	rows, err := tr.db.Query(ctx, stmt, args...)

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

func (tr *TaskRepository) GetAllByOwner(ctx context.Context, ownerID string) ([]domain.Task, error) {
	ctx, span := tr.probe.StartRepositorySpan(ctx, "GetAllByOwner", "task", map[string]interface{}{
		"db.system": "postgresql",
		"db.table":  "tasks",
		"owner.id":  ownerID,
	})
	defer span.End()

	stmt, args, err := tr.db.QueryBuilder.Select(taskColumns).
		From("tasks").
		Where(sq.Eq{"owner_id": ownerID}).
		OrderBy("created_at DESC", "id DESC").
		ToSql()

	if err != nil {
		return nil, err
	}

	tasks, err := tr.collect(ctx, stmt, args)

	if err != nil {
		span.SetStatus("error", err.Error())
		span.RecordError(err)
		return nil, err
	}

	span.SetAttributes(map[string]interface{}{"db.rows_returned": len(tasks)})
	span.SetStatus("ok", "")

	return tasks, nil
}

func (tr *TaskRepository) GetByID(ctx context.Context, id int, ownerID string) (domain.Task, error) {
	stmt, args, err := tr.db.QueryBuilder.Select(taskColumns).
		From("tasks").
		Where(sq.Eq{"id": id}).
		Where(sq.Eq{"owner_id": ownerID}).
		Limit(1).
		ToSql()

	if err != nil {
		return domain.Task{}, err
	}

	task, err := scanTask(tr.db.QueryRow(ctx, stmt, args...))

	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Task{}, domain.ErrTaskNotFound
	}

	if err != nil {
		return domain.Task{}, err
	}

	return task, nil
}

func (tr *TaskRepository) Create(ctx context.Context, task domain.Task) (domain.Task, error) {
	stmt, args, err := tr.db.QueryBuilder.Insert("tasks").
		Columns("title", "description", "is_completed", "created_at", "completed_at", "owner_id").
		Values(task.Title, task.Description, task.IsCompleted, task.CreatedAt, task.CompletedAt, task.OwnerID).
		Suffix("RETURNING " + taskColumns).
		ToSql()

	if err != nil {
		return domain.Task{}, err
	}

	saved, err := scanTask(tr.db.QueryRow(ctx, stmt, args...))

	if err != nil {
		slog.Error("Error creating task", "error", err)
		return domain.Task{}, err
	}

	return saved, nil
}

func (tr *TaskRepository) Update(ctx context.Context, task domain.Task) error {
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

	tag, err := tr.db.Exec(ctx, stmt, args...)

	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrConflict
	}

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

	tag, err := tr.db.Exec(ctx, stmt, args...)

	if err != nil {
		return false, err
	}

	return tag.RowsAffected() > 0, nil
}

func (tr *TaskRepository) GetByCompletion(ctx context.Context, ownerID string, completed bool) ([]domain.Task, error) {
	ordering := "created_at DESC"

	if completed {
		ordering = "completed_at DESC"
	}

	stmt, args, err := tr.db.QueryBuilder.Select(taskColumns).
		From("tasks").
		Where(sq.Eq{"owner_id": ownerID}).
		Where(sq.Eq{"is_completed": completed}).
		OrderBy(ordering, "id DESC").
		ToSql()

	if err != nil {
		return nil, err
	}

	return tr.collect(ctx, stmt, args)
}
