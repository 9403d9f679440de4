package task

import "errors"

var (
	// ErrNotFound reports a referenced task or parent id that does not exist.
	ErrNotFound = errors.New("task not found")

	// ErrInvalid reports an operation rejected before any mutation: empty
	// titles, self-parenting, cycle-creating moves, bad reorder sets,
	// completion of a task that still has subtasks.
	ErrInvalid = errors.New("invalid argument")

	// ErrCorruptStore reports a store file whose top-level shape is not an
	// array. Inconsistent-but-well-formed content is self-healed on load
	// instead and never raises this.
	ErrCorruptStore = errors.New("task store file is corrupted: expected an array")
)
