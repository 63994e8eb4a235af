// Package harness provides fixture-lifecycle injection for the framework
// test-runner: a test case declares which externally constructed resources its
// tests need (an application handle, a simulated client bound to that
// application, or a live network endpoint serving it), and the harness
// constructs the resources before each test, passes them into the test's
// setup/body/teardown, and tears them down afterward.
//
// Four case variants cover the possible resource sets:
//
//   - AppCase: each test receives a freshly provisioned application.
//   - ClientCase: each test receives a client opened from one application that
//     is bound to the case when it is constructed.
//   - AppClientCase: each test receives both, with the client always released
//     before the application.
//   - LiveCase: tests receive no per-test resources; an enclosing LiveSuite
//     serves one shared application over a real socket and injects its base
//     URL and handle before any test runs.
//
// Application constructors may be plain functions or single-yield fixture
// sequences whose post-yield code runs at disposal; see the AppCase
// documentation.
package harness
