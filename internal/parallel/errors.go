package parallel

import (
	"errors"
	"fmt"
)

// Kind identifies which stage of a dispatch failed.
type Kind int

const (
	KindAllocation Kind = iota + 1
	KindThreadCreation
	KindThreadJoin
)

var (
	ErrAllocation     = errors.New("allocation failure")
	ErrThreadCreation = errors.New("thread creation failure")
	ErrThreadJoin     = errors.New("thread join failure")
)

func (k Kind) String() string {
	switch k {
	case KindAllocation:
		return "allocation_failure"
	case KindThreadCreation:
		return "thread_creation_failure"
	case KindThreadJoin:
		return "thread_join_failure"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindAllocation:
		return ErrAllocation
	case KindThreadCreation:
		return ErrThreadCreation
	default:
		return ErrThreadJoin
	}
}

// Error reports a failed dispatch. Outputs written by a failed call must be
// treated as unreliable in their entirety.
type Error struct {
	Kind Kind
	// Worker is the index of the first failing worker, or -1 when the failure
	// is not attributable to a single worker.
	Worker int
	Err    error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.sentinel().Error()
	}
	if e.Worker >= 0 {
		return fmt.Sprintf("%s (worker %d): %v", e.Kind.sentinel(), e.Worker, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind.sentinel(), e.Err)
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Err}
}

// KindOf returns the failure kind carried by err, or 0 if err is not a
// dispatch error.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}

type workerError struct {
	worker int
	err    error
}

func (e workerError) Error() string { return e.err.Error() }

func (e workerError) Unwrap() error { return e.err }

func panicError(rec any) error {
	if recErr, ok := rec.(error); ok {
		return fmt.Errorf("worker panicked: %w", recErr)
	}
	return fmt.Errorf("worker panicked: %v", rec)
}
