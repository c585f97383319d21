package models

import "errors"

var (
	// ErrNotFound covers an id that never existed, was already consumed,
	// or was reclaimed by the sweep, and a blob missing behind a live
	// record. Callers cannot tell these cases apart.
	ErrNotFound = errors.New("file not found")

	// ErrConflict signals an identifier collision on insert
	ErrConflict = errors.New("file id already exists")

	// ErrRetriesExhausted signals that identifier generation kept
	// colliding past the attempt bound
	ErrRetriesExhausted = errors.New("exhausted file id generation attempts")
)
