package fsops

import (
	"errors"
	"fmt"
)

// Sentinel causes wrapped by [OpError].
var (
	ErrTargetExists = errors.New("target already exists")
	ErrNotDir       = errors.New("not a directory")
)

// OpError records a failed mutation or comparison with enough context to
// repair it by hand: the operation, the path acted on, the intended target
// (empty for single-path operations) and the underlying cause.
type OpError struct {
	Op     string
	Path   string
	Target string
	Err    error
}

func (e *OpError) Error() string {
	if e.Target != "" {
		return fmt.Sprintf("%s %q -> %q: %v", e.Op, e.Path, e.Target, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.Path, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

func opErr(op, path, target string, err error) error {
	return &OpError{Op: op, Path: path, Target: target, Err: err}
}
