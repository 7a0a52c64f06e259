// Package bark adds call-site context to errors at panic boundaries.
//
// warehouse panics only at a few documented boundaries (an invalid query
// item type, too many component types, too many concurrent locks, a
// queued operation failing once the last lock is released); bark.AddTrace
// wraps the underlying error with the file:line of the panic so the
// stack trace printed by the runtime still shows where the bad input
// was detected, not just where the panic macro lives.
package bark

import (
	"fmt"
	"runtime"
)

// TracedError wraps an error with the call site that raised it.
type TracedError struct {
	File string
	Line int
	Err  error
}

func (e *TracedError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.File, e.Line, e.Err)
}

func (e *TracedError) Unwrap() error {
	return e.Err
}

// AddTrace annotates err with its caller's file and line. It returns nil
// if err is nil, so it is safe to wrap a call result unconditionally.
func AddTrace(err error) error {
	if err == nil {
		return nil
	}
	_, file, line, ok := runtime.Caller(1)
	if !ok {
		return err
	}
	return &TracedError{File: file, Line: line, Err: err}
}
