// Package framework contains the host test-runner that the fixture harness
// drives.
//
// The general model is:
//
// 1. There is a test context type T which is similar to Go's *testing.T,
// allowing pieces of test logic to be associated with a test identifier and to
// accumulate success/failure results. T implements require.TestingT, so
// standard assertions from testify's assert and require packages work
// against it.
//
// 2. Tests are executed strictly sequentially. A run produces a Results value
// listing every test outcome; progress is reported through a TestLogger.
//
// 3. A test whose methods have already been bound to their fixture arguments
// is represented by the Bound interface, and can be executed either through
// the result-recording entry point (RunBound) or the re-raising entry point
// (DebugBound).
//
// The harness package is responsible for deciding which fixtures a test needs,
// constructing them, and binding them to the test's methods before handing the
// test to this package for execution.
package framework
