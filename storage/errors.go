package storage

import (
	"errors"
	"fmt"
)

// ErrObjectNotFound is returned when a requested object does not exist in
// the store. Compare with errors.Is.
var ErrObjectNotFound = errors.New("git object not found")

// ErrCorruptObject is returned when a loose object file cannot be decoded:
// a malformed header, an unknown kind, or a length disagreeing with the
// payload.
var ErrCorruptObject = errors.New("corrupt git object")

// ObjectNotFoundError provides structured information about a missing
// object. It supports errors.Is with ErrObjectNotFound.
type ObjectNotFoundError struct {
	ObjectID string
	Err      error
}

func (e *ObjectNotFoundError) Error() string {
	return fmt.Sprintf("object %s not found: %v", e.ObjectID, e.Err)
}

func (e *ObjectNotFoundError) Unwrap() error {
	return e.Err
}

// NewObjectNotFoundError creates an ObjectNotFoundError for the given
// object ID.
func NewObjectNotFoundError(objectID string) *ObjectNotFoundError {
	return &ObjectNotFoundError{
		ObjectID: objectID,
		Err:      ErrObjectNotFound,
	}
}

// CorruptObjectError provides structured information about an undecodable
// loose object. It supports errors.Is with ErrCorruptObject.
type CorruptObjectError struct {
	ObjectID string
	Reason   string
	Err      error
}

func (e *CorruptObjectError) Error() string {
	return fmt.Sprintf("object %s is corrupt (%s): %v", e.ObjectID, e.Reason, e.Err)
}

func (e *CorruptObjectError) Unwrap() error {
	return e.Err
}

// NewCorruptObjectError creates a CorruptObjectError with a short reason.
func NewCorruptObjectError(objectID, reason string) *CorruptObjectError {
	return &CorruptObjectError{
		ObjectID: objectID,
		Reason:   reason,
		Err:      ErrCorruptObject,
	}
}
