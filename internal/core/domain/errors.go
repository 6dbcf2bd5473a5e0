package domain

import "errors"

var (
	// ErrTaskNotFound covers both a truly absent id and a task owned by
	// somebody else. The two are deliberately indistinguishable so the API
	// never leaks that another user's task exists.
	ErrTaskNotFound = errors.New("task not found")

	// ErrConflict is returned by a store when the row vanished between
	// read and write, usually a concurrent delete.
	ErrConflict = errors.New("concurrent modification conflict")
)
