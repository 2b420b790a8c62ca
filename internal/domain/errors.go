package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals an issuer or document resolution miss.
	ErrNotFound = errors.New("not found")
	// ErrInvalidQuery signals an empty or malformed query.
	ErrInvalidQuery = errors.New("invalid query")
	// ErrRateLimited signals the document source throttled the request.
	ErrRateLimited = errors.New("rate limited")
	// ErrUpstream signals a network or server failure at the document source.
	ErrUpstream = errors.New("upstream error")
	// ErrUnknownOperation signals a plan step naming an operation nobody implements.
	ErrUnknownOperation = errors.New("unknown operation")
	// ErrDependencyNotMet signals a step whose declared dependencies produced nothing.
	ErrDependencyNotMet = errors.New("dependency not met")
	// ErrEmptyUniverse signals discovery had no issuers to scan.
	ErrEmptyUniverse = errors.New("empty issuer universe")
	// ErrNotImplemented signals an unimplemented feature.
	ErrNotImplemented = errors.New("not implemented")
)

// ClassificationError is returned when a query cannot be classified at all.
type ClassificationError struct {
	Query  string
	Reason string
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classify query %q: %s", e.Query, e.Reason)
}

func (e *ClassificationError) Unwrap() error { return ErrInvalidQuery }

// NewClassificationError creates a classification error.
func NewClassificationError(query, reason string) error {
	return &ClassificationError{Query: query, Reason: reason}
}

// ExecutionError wraps a failure of a single plan step.
type ExecutionError struct {
	Step      string
	Operation string
	Err       error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("step %s (%s): %v", e.Step, e.Operation, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

// NewExecutionError creates an execution error for the given step.
func NewExecutionError(step, operation string, err error) error {
	return &ExecutionError{Step: step, Operation: operation, Err: err}
}
