package framework

import (
	"errors"
	"fmt"
	"runtime/debug"
)

type environment struct {
	results    Results
	testLogger TestLogger
	filter     Filter
}

// T is the test context passed to every piece of test logic. It is used
// similarly to *testing.T: it has a Run method for subtests, records failures
// via Errorf/FailNow, and can skip tests. It implements require.TestingT so
// standard testify assertions can be used against it.
type T struct {
	env         *environment
	id          TestID
	debugLogger CapturingLogger
	failed      bool
	skipped     bool
	skipReason  string
	errors      []error
}

// Run executes action under a fresh root context and returns the accumulated
// results of every test it started.
func Run(filter Filter, testLogger TestLogger, action func(*T)) Results {
	if testLogger == nil {
		testLogger = nullTestLogger{}
	}
	env := &environment{
		filter:     filter,
		testLogger: testLogger,
	}
	t := &T{env: env}
	t.run(action)
	return env.results
}

func (t *T) run(action func(*T)) {
	defer func() {
		if r := recover(); r != nil {
			if t.skipped {
				return
			}
			t.failed = true
			var addError error
			if _, ok := r.(*T); ok {
				if len(t.errors) == 0 {
					addError = errors.New("test failed with no failure message")
				}
			} else {
				addError = fmt.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack()))
			}
			if addError != nil {
				t.errors = append(t.errors, addError)
				t.env.testLogger.TestError(t.id, addError)
			}
		}
		result := TestResult{TestID: t.id, Errors: t.errors}
		t.env.results.Tests = append(t.env.results.Tests, result)
		if t.failed {
			t.env.results.Failures = append(t.env.results.Failures, result)
		}
	}()

	action(t)
}

// ID returns the identifier of the current test.
func (t *T) ID() TestID {
	return t.id
}

// Run executes action as a subtest of the current test.
func (t *T) Run(name string, action func(*T)) {
	id := TestID{Path: append(append([]string(nil), t.id.Path...), name)}

	t.env.testLogger.TestStarted(id)
	if t.env.filter != nil && !t.env.filter(id) {
		t.env.testLogger.TestSkipped(id, "excluded by filter parameters")
		return
	}
	t1 := &T{
		id:  id,
		env: t.env,
	}
	t1.run(action)
	if t1.skipped {
		t.env.testLogger.TestSkipped(id, t1.skipReason)
	} else {
		t.env.testLogger.TestFinished(id, t1.failed, t1.debugLogger.Output())
	}
}

// Errorf records a failure without stopping the test.
func (t *T) Errorf(format string, args ...interface{}) {
	t.failed = true
	err := fmt.Errorf(format, args...)
	t.errors = append(t.errors, err)
	t.env.testLogger.TestError(t.id, err)
}

// FailNow stops the current test immediately. A failure message should have
// been recorded with Errorf first.
func (t *T) FailNow() {
	panic(t)
}

// Failed reports whether the current test has recorded any failure.
func (t *T) Failed() bool {
	return t.failed
}

// Errors returns the failures recorded so far.
func (t *T) Errors() []error {
	return append([]error(nil), t.errors...)
}

// Skip stops the current test and marks it as skipped.
func (t *T) Skip() {
	t.skipped = true
	panic(t)
}

// SkipWithReason is Skip with an explanation for the test log.
func (t *T) SkipWithReason(reason string) {
	t.skipReason = reason
	t.Skip()
}

// Debug adds a message to the test's captured debug output.
func (t *T) Debug(message string, args ...interface{}) {
	t.debugLogger.Printf(message, args...)
}

// DebugLogger returns a Logger that writes to the test's captured debug
// output.
func (t *T) DebugLogger() Logger {
	return &t.debugLogger
}
