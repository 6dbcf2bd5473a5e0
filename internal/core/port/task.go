package port

import (
	"context"

	"todoapi/internal/core/domain"
)

// TaskRepository is the persistence contract over the tasks table. Every
// accessor takes the owner id and filters by it; there is no unscoped
// variant. This is the load-bearing security invariant of the system.
type TaskRepository interface {
	// GetAllByOwner returns the owner's tasks ordered by created_at descending.
	GetAllByOwner(ctx context.Context, ownerID string) ([]domain.Task, error)

	// GetByID returns domain.ErrTaskNotFound when no row matches (id, owner).
	GetByID(ctx context.Context, id int, ownerID string) (domain.Task, error)

	// Create assigns the id and persists the task.
	Create(ctx context.Context, task domain.Task) (domain.Task, error)

	// Update overwrites the mutable columns of the row matching
	// (task.ID, task.OwnerID). Returns domain.ErrConflict when the row no
	// longer exists at write time.
	Update(ctx context.Context, task domain.Task) error

	// Delete removes the row and reports whether one was removed.
	Delete(ctx context.Context, id int, ownerID string) (bool, error)

	// GetByCompletion filters on is_completed. Completed tasks are ordered
	// by completed_at descending, pending ones by created_at descending.
	GetByCompletion(ctx context.Context, ownerID string, completed bool) ([]domain.Task, error)
}

// TaskService applies ownership and completion rules on top of the store.
type TaskService interface {
	List(ctx context.Context, ownerID string) ([]domain.Task, error)
	ListCompleted(ctx context.Context, ownerID string) ([]domain.Task, error)
	ListPending(ctx context.Context, ownerID string) ([]domain.Task, error)
	Get(ctx context.Context, id int, ownerID string) (domain.Task, error)
	Create(ctx context.Context, task domain.Task) (domain.Task, error)
	Update(ctx context.Context, task domain.Task) (domain.Task, error)
	Delete(ctx context.Context, id int, ownerID string) error
}
