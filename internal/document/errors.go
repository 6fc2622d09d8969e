package document

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when no document exists for an id, including
	// ids that are not syntactically valid for the backing store.
	ErrNotFound = errors.New("document not found")
	// ErrValidation matches every *ValidationError via errors.Is.
	ErrValidation = errors.New("document validation failed")
	// ErrStore matches every *StoreError via errors.Is.
	ErrStore = errors.New("document store failure")
)

// FieldError is a single field level constraint violation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists the fields of an input that violate the entity
// constraints.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// InvalidTransition builds the validation error for a forbidden status change.
func InvalidTransition(from, to Status) error {
	return &ValidationError{Fields: []FieldError{{
		Field:   "status",
		Message: fmt.Sprintf("cannot change status from %s to %s", from, to),
	}}}
}

// StoreError wraps a failure of the underlying storage. Callers treat it as
// opaque.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *StoreError) Unwrap() error { return e.Err }

func (e *StoreError) Is(target error) bool { return target == ErrStore }

// WrapStore tags err as a storage failure of operation op. Domain errors
// (not found, validation) pass through untouched.
func WrapStore(op string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrValidation) || errors.Is(err, ErrStore) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}
