package harness

import (
	"github.com/appunit/appunit/framework"
)

// LiveEnv carries the suite-level resources injected into a live case: the
// shared application and the base URL of the live endpoint serving it. The
// accessors fail fast when the case runs outside a LiveSuite, rather than
// handing the test an empty value.
type LiveEnv struct {
	app       App
	serverURL string
	injected  bool
}

// App returns the application serving the live endpoint.
func (e *LiveEnv) App() App {
	e.require()
	return e.app
}

// ServerURL returns the base URL of the live endpoint, in the form
// "http://host:port".
func (e *LiveEnv) ServerURL() string {
	e.require()
	return e.serverURL
}

func (e *LiveEnv) require() {
	if e == nil || !e.injected {
		panic(usageErrorf("live endpoint not injected; live cases must run inside a LiveSuite"))
	}
}

// LiveTest is one test method of a LiveCase.
type LiveTest struct {
	Name string
	Run  func(t *framework.T, env *LiveEnv)
}

// LiveCase contains tests that issue real network requests against a live
// endpoint. It provisions nothing per test; an enclosing LiveSuite injects
// the shared application and server URL once, before any test runs.
type LiveCase struct {
	name     string
	env      LiveEnv
	setUp    func(t *framework.T, env *LiveEnv)
	tearDown func(t *framework.T, env *LiveEnv)
	tests    []LiveTest
	bind     bindings
}

// NewLiveCase creates an empty live case.
func NewLiveCase(name string) *LiveCase {
	return &LiveCase{name: name}
}

// SetUp registers a setup method run before each test.
func (c *LiveCase) SetUp(fn func(*framework.T, *LiveEnv)) *LiveCase {
	c.setUp = fn
	return c
}

// TearDown registers a teardown method run after each test.
func (c *LiveCase) TearDown(fn func(*framework.T, *LiveEnv)) *LiveCase {
	c.tearDown = fn
	return c
}

// Test adds a test method to the case.
func (c *LiveCase) Test(name string, fn func(*framework.T, *LiveEnv)) *LiveCase {
	c.tests = append(c.tests, LiveTest{Name: name, Run: fn})
	return c
}

func (c *LiveCase) CaseName() string { return c.name }

// Method returns the author's original test method, never a resource-bound
// form.
func (c *LiveCase) Method(name string) func(*framework.T, *LiveEnv) {
	for _, tt := range c.tests {
		if tt.Name == name {
			return tt.Run
		}
	}
	return nil
}

// inject is called by LiveSuite before any test runs.
func (c *LiveCase) inject(app App, serverURL string) {
	c.env = LiveEnv{app: app, serverURL: serverURL, injected: true}
}

func (c *LiveCase) testNames() []string {
	names := make([]string, 0, len(c.tests))
	for _, tt := range c.tests {
		names = append(names, tt.Name)
	}
	return names
}

func (c *LiveCase) validate() error { return nil }

func (c *LiveCase) runTest(t *framework.T, name string, debug bool) error {
	fn := c.Method(name)
	if fn == nil {
		return usageErrorf("case %q has no test named %q", c.name, name)
	}
	env := &c.env
	bound := framework.Binding{
		SetUp:    bindLive(c.setUp, env),
		Test:     bindLive(fn, env),
		TearDown: bindLive(c.tearDown, env),
	}
	return runOverridden(t, &c.bind, bound, debug)
}

func bindLive(fn func(*framework.T, *LiveEnv), env *LiveEnv) func(*framework.T) {
	if fn == nil {
		return nil
	}
	return func(t *framework.T) { fn(t, env) }
}
