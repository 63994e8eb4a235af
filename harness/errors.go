package harness

import (
	"fmt"
	"time"
)

// UsageError indicates that a case or suite was configured or used
// incorrectly. It is surfaced eagerly, at construction or first use, and is
// never recorded as an ordinary test failure.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return "harness usage error: " + e.Message
}

func usageErrorf(format string, args ...interface{}) *UsageError {
	return &UsageError{Message: fmt.Sprintf(format, args...)}
}

// ContractViolationError indicates that a generator-shaped application
// constructor broke the single-yield protocol by producing a second value.
// It propagates out of resource disposal, after the case's original method
// bindings have been restored.
type ContractViolationError struct {
	Message string
}

func (e *ContractViolationError) Error() string {
	return "fixture contract violation: " + e.Message
}

// ReadinessTimeoutError indicates that a live endpoint never accepted a
// connection within the configured timeout. It is fatal to the whole suite:
// no contained test runs.
type ReadinessTimeoutError struct {
	Addr    string
	Timeout time.Duration
}

func (e *ReadinessTimeoutError) Error() string {
	return fmt.Sprintf("server at %s did not accept a connection within %s", e.Addr, e.Timeout)
}
