package memory

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by preference lookups when the key is absent.
// Callers treat it as "no such preference", not as a failure.
var ErrNotFound = errors.New("preference not found")

// ErrEmptyContent is returned by AddEntry for an empty content string.
// Empty records are also dropped on load, so accepting one would break the
// write-then-reload contract.
var ErrEmptyContent = errors.New("entry content is empty")

// StorageError reports a failure to read or write the backing file. The
// store does not retry; the caller decides whether to retry, fall back to
// in-memory-only operation, or surface the error.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("memory storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
