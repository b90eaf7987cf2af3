package store

import (
	"errors"
	"fmt"
)

// ErrNotFound is matched by every NotFoundError via errors.Is
var ErrNotFound = errors.New("not found")

// NotFoundError reports a missing record
type NotFoundError struct {
	Kind string // "word", "image", "category", ...
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}

// Is makes errors.Is(err, ErrNotFound) true
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// StorageError reports a failure of the underlying database
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return "storage: " + e.Op + ": " + e.Err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ProtectedError is returned when a change targets a system record
type ProtectedError struct {
	Key    string
	Reason string
}

func (e *ProtectedError) Error() string {
	return fmt.Sprintf("%s: %s", e.Key, e.Reason)
}

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
