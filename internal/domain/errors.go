package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSourceNotFound is returned when a selection names a quiz document
	// that cannot be located.
	ErrSourceNotFound = errors.New("quiz source not found")
	// ErrQuizNotFound indicates a referenced quiz is not part of the set.
	ErrQuizNotFound = errors.New("quiz not found in set")
	// ErrMissingIdentity flags an operation that needs a quiz UUID on a quiz
	// that has none. Local recording still happens; sync never will.
	ErrMissingIdentity = errors.New("quiz has no uuid")
	// ErrSyncUnavailable is the transient failure of a push or pull. Records
	// stay pending and are retried on the next attempt.
	ErrSyncUnavailable = errors.New("sync endpoint unavailable")
	// ErrSelectionMismatch indicates a selection whose shape does not match
	// the quiz's option form.
	ErrSelectionMismatch = errors.New("selection does not match options")
)

// DocumentError reports an invalid quiz document, naming the offending field
// by its path, e.g. "quizzes[2].options".
type DocumentError struct {
	Path   string
	Reason string
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("invalid quiz document: %s: %s", e.Path, e.Reason)
}
