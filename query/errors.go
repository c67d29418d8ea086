package query

import (
	"errors"
	"fmt"
)

// ParseError reports a malformed or unsupported query shape.
type ParseError struct {
	Pos int    // byte offset of the offending token
	Msg string // what was wrong
	Err error  // optional wrapped cause
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse error at offset %d: %v: %s", e.Pos, e.Err, e.Msg)
	}
	return fmt.Sprintf("parse error at offset %d: %s", e.Pos, e.Msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ExecutionError reports an unexpected failure while a plan runs.
type ExecutionError struct {
	Stage string // filter, aggregate, project, sort, limit
	Err   error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution error in %s: %v", e.Stage, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// ErrNilPlan is returned by Run when no plan is given.
var ErrNilPlan = errors.New("nil plan")

// IsParseError reports whether err is, or wraps, a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}

// IsExecutionError reports whether err is, or wraps, an *ExecutionError.
func IsExecutionError(err error) bool {
	var ee *ExecutionError
	return errors.As(err, &ee)
}
