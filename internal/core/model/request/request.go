package request

// CreateTaskRequest is the create payload. The owner is never part of the
// body; it always comes from the authenticated identity.
type CreateTaskRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description,omitempty" validate:"max=500"`
	IsCompleted bool   `json:"isCompleted"`
}

// UpdateTaskRequest carries the id so the handler can reject a body whose
// id disagrees with the path.
type UpdateTaskRequest struct {
	ID          int    `json:"id"`
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description,omitempty" validate:"max=500"`
	IsCompleted bool   `json:"isCompleted"`
}
