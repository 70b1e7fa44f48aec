package render

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrNoDevice        = errors.New("no Vulkan physical devices found")
	ErrNoQueueFamily   = errors.New("no queue family supports both graphics and present")
	ErrNoSurfaceFormat = errors.New("surface reports no supported formats")
	ErrFenceTimeout    = errors.New("timed out waiting for the in-flight fence")
	ErrClosed          = errors.New("renderer is closed")
)

// Results names failing results. Every Driver is one; vkdriver answers with
// vulkan.Error.
type Results interface {
	ResultError(r Result) error
}

// DriverError is a driver call that returned a failing Result.
type DriverError struct {
	Op     string
	Result Result
	Err    error
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("vulkan error: %s: %v (%d)", e.Op, e.Err, int32(e.Result))
}

func (e *DriverError) Unwrap() error {
	return e.Err
}

// NewError is the single funnel from a driver Result to an error. It returns
// nil for Success and a *DriverError carrying the caller's stack otherwise.
// The cause is the error names reports for r.
func NewError(names Results, op string, r Result) error {
	if !IsError(r) {
		return nil
	}
	var cause error
	if names != nil {
		cause = names.ResultError(r)
	}
	if cause == nil {
		cause = errors.New(r.String())
	}
	return errors.WithStack(&DriverError{Op: op, Result: r, Err: cause})
}

func IsError(r Result) bool {
	return r != Success
}

// IsStale reports whether r says the chain no longer matches the surface.
func IsStale(r Result) bool {
	return r == ErrorOutOfDate || r == Suboptimal
}

// ResultOf extracts the driver Result carried by err, if any.
func ResultOf(err error) (Result, bool) {
	var de *DriverError
	if errors.As(err, &de) {
		return de.Result, true
	}
	return Success, false
}

// CheckError converts a panic into an error. It must be deferred directly.
func CheckError(err *error) {
	if v := recover(); v != nil {
		*err = errors.Errorf("%+v", v)
	}
}
