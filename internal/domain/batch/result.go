// Package batch holds per-item outcomes of bounded fan-out runs.
package batch

// ItemStatus is the processing outcome of a single batch item.
type ItemStatus string

// Batch item status values.
const (
	StatusOK    ItemStatus = "ok"
	StatusError ItemStatus = "error"
)

// Result is the outcome of processing one item. Items fail independently.
type Result[T any] struct {
	key   string
	value T
	err   error
}

// NewOK creates a successful result carrying value.
func NewOK[T any](key string, value T) Result[T] { return Result[T]{key: key, value: value} }

// NewError creates a failed result.
func NewError[T any](key string, err error) Result[T] { return Result[T]{key: key, err: err} }

// Key returns the item label.
func (r Result[T]) Key() string { return r.key }

// Value returns the produced value; zero on failure.
func (r Result[T]) Value() T { return r.value }

// Status returns the processing outcome.
func (r Result[T]) Status() ItemStatus {
	if r.err != nil {
		return StatusError
	}
	return StatusOK
}

// Err returns the error, if any.
func (r Result[T]) Err() error { return r.err }
