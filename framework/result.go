package framework

import (
	"fmt"
	"strings"
)

// Results accumulates the outcome of every test in a run.
type Results struct {
	Tests    []TestResult
	Failures []TestResult
}

// TestResult is the outcome of a single test.
type TestResult struct {
	TestID TestID
	Errors []error
}

// OK reports whether the run had no failures.
func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// TestID identifies a test by its path in the suite tree.
type TestID struct {
	Path []string
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

// TestFailure associates an error with the test that produced it.
type TestFailure struct {
	ID  TestID
	Err error
}

func (f TestFailure) Error() string {
	return fmt.Sprintf("[%s]: %s", f.ID, f.Err)
}

func (f TestFailure) Unwrap() error {
	return f.Err
}
