package harness

import (
	"github.com/appunit/appunit/framework"
)

// Case is a single runnable test case: a named collection of test methods
// sharing one fixture shape. The implementations are the four variants in
// this package (AppCase, ClientCase, AppClientCase, LiveCase).
type Case interface {
	CaseName() string

	// testNames lists the case's tests in declaration order.
	testNames() []string
	// validate reports configuration problems before any test of the case
	// runs.
	validate() error
	// runTest provisions this variant's resources, executes one named test
	// with them injected, and releases them. The returned error is a harness
	// error (usage, contract violation, or a re-raised failure in debug
	// mode), never an ordinary recorded assertion failure.
	runTest(t *framework.T, name string, debug bool) error
}
