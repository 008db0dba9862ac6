package entities

import (
	"fmt"
	"runtime/debug"
)

// ResultStatus represents the outcome status of a portal operation.
type ResultStatus string

const (
	// ResultStatusSuccess indicates the operation completed successfully.
	ResultStatusSuccess ResultStatus = "success"

	// ResultStatusFailure indicates the operation failed.
	ResultStatusFailure ResultStatus = "failure"
)

// Result is the two-variant outcome of a portal operation: either a value of
// type T or an error. The zero value is a success carrying the zero T.
type Result[T any] struct {
	value T
	err   error
}

// Success creates a successful Result carrying v.
func Success[T any](v T) Result[T] {
	return Result[T]{value: v}
}

// Failure creates a failed Result carrying err.
// A nil err is replaced so that a failure always carries an error.
func Failure[T any](err error) Result[T] {
	if err == nil {
		err = fmt.Errorf("unspecified failure")
	}
	return Result[T]{err: err}
}

// IsSuccess returns true if the result carries a value.
func (r Result[T]) IsSuccess() bool {
	return r.err == nil
}

// IsFailure returns true if the result carries an error.
func (r Result[T]) IsFailure() bool {
	return r.err != nil
}

// Status reports the variant as a ResultStatus.
func (r Result[T]) Status() ResultStatus {
	if r.err != nil {
		return ResultStatusFailure
	}
	return ResultStatusSuccess
}

// Value returns the carried value. It is the zero T for failures.
func (r Result[T]) Value() T {
	return r.value
}

// Err returns the carried error, or nil for successes.
func (r Result[T]) Err() error {
	return r.err
}

// Get unpacks the result into the conventional (value, error) pair.
func (r Result[T]) Get() (T, error) {
	return r.value, r.err
}

// GetOrElse returns the value on success and def on failure.
func (r Result[T]) GetOrElse(def T) T {
	if r.err != nil {
		return def
	}
	return r.value
}

// PanicError carries a value recovered from a panicking function.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unwrap exposes the recovered value when it is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// MapResult applies fn to the value of a successful result.
// Failures pass through untouched and fn is not called. An error returned by
// fn, or a panic raised inside it, yields a failure.
func MapResult[T, U any](r Result[T], fn func(T) (U, error)) (out Result[U]) {
	if r.err != nil {
		return Failure[U](r.err)
	}

	defer func() {
		if p := recover(); p != nil {
			out = Failure[U](&PanicError{Value: p, Stack: debug.Stack()})
		}
	}()

	v, err := fn(r.value)
	if err != nil {
		return Failure[U](err)
	}
	return Success(v)
}
