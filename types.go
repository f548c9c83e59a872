package taskscheduler

import (
	"errors"
)

var (
	// ErrNilConverter is returned when a Scheduler is built without an
	// item-to-task conversion function.
	ErrNilConverter = errors.New("taskscheduler: converter is nil")

	// ErrNilDispatcher is returned when a Scheduler is built without a
	// dispatch function.
	ErrNilDispatcher = errors.New("taskscheduler: dispatcher is nil")

	ErrUnknownProbeMode = errors.New("taskscheduler: unknown probe mode")

	// ErrTaskPanicked wraps a value recovered from a task by Recover.
	ErrTaskPanicked = errors.New("taskscheduler: task panicked")

	// ErrRetriesExhausted is reported by WithRetry when every attempt failed.
	ErrRetriesExhausted = errors.New("taskscheduler: retries exhausted")

	// ErrPinUnsupported is reported by the Pinned dispatcher on platforms
	// without CPU affinity support.
	ErrPinUnsupported = errors.New("taskscheduler: cpu pinning not supported")
)

// Task is an invokable unit of work.
type Task func()

// Converter turns a submitted item into the Task that processes it.
//
// It runs inside a drain loop and has no error path: a converter that
// panics takes the drain loop down with it.
type Converter[T any] func(T) Task

// Dispatcher runs a drain loop somewhere: inline, on a goroutine, on a
// pinned OS thread. It must execute the passed Task exactly once.
type Dispatcher func(Task)
