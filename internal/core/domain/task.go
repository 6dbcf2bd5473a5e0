package domain

import "time"

// Task is the single persisted entity: a to-do item owned by the
// authenticated principal that created it. OwnerID and CreatedAt are
// write-once; CompletedAt is derived from IsCompleted transitions and is
// never accepted from the client.
type Task struct {
	ID          int        `json:"id"`
	Title       string     `json:"title" validate:"required,max=200"`
	Description string     `json:"description,omitempty" validate:"max=500"`
	IsCompleted bool       `json:"isCompleted"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	OwnerID     string     `json:"ownerId" validate:"required,max=100"`
}

// SetCompleted applies the completion transition. Marking an already
// completed task keeps its original CompletedAt; unmarking clears it.
func (t *Task) SetCompleted(completed bool, now time.Time) {
	t.IsCompleted = completed

	if completed && t.CompletedAt == nil {
		t.CompletedAt = &now
	}

	if !completed {
		t.CompletedAt = nil
	}
}

func (t *Task) BelongsTo(ownerID string) bool {
	return t.OwnerID == ownerID
}
