package repositories

import "errors"

var (
	// ErrNotFound is returned when the referenced document does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique key is already taken.
	ErrDuplicate = errors.New("duplicate key")
)
