package harness

import (
	"github.com/appunit/appunit/framework"
)

// ClientTest is one test method of a ClientCase.
type ClientTest struct {
	Name string
	Run  func(t *framework.T, client Client)
}

// ClientCase injects a per-test client opened from a single application that
// is bound to the case at construction time. The application itself is shared
// across the case's tests; the client never is.
type ClientCase struct {
	name     string
	app      App
	cfg      ClientConfig
	setUp    func(t *framework.T, client Client)
	tearDown func(t *framework.T, client Client)
	tests    []ClientTest
	bind     bindings
}

// NewClientCase creates a case whose tests each receive a client opened from
// app. A nil application is rejected here, before any test runs.
func NewClientCase(name string, app App, opts ...ClientOption) (*ClientCase, error) {
	if app == nil {
		return nil, usageErrorf("client case %q requires an application; none was bound", name)
	}
	cfg := defaultClientConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &ClientCase{name: name, app: app, cfg: cfg}, nil
}

// SetUp registers a setup method run before each test, with the same injected
// client the test will receive.
func (c *ClientCase) SetUp(fn func(*framework.T, Client)) *ClientCase {
	c.setUp = fn
	return c
}

// TearDown registers a teardown method run after each test, before the client
// is closed.
func (c *ClientCase) TearDown(fn func(*framework.T, Client)) *ClientCase {
	c.tearDown = fn
	return c
}

// Test adds a test method to the case.
func (c *ClientCase) Test(name string, fn func(*framework.T, Client)) *ClientCase {
	c.tests = append(c.tests, ClientTest{Name: name, Run: fn})
	return c
}

func (c *ClientCase) CaseName() string { return c.name }

// Method returns the author's original test method, never a resource-bound
// form.
func (c *ClientCase) Method(name string) func(*framework.T, Client) {
	for _, tt := range c.tests {
		if tt.Name == name {
			return tt.Run
		}
	}
	return nil
}

func (c *ClientCase) testNames() []string {
	names := make([]string, 0, len(c.tests))
	for _, tt := range c.tests {
		names = append(names, tt.Name)
	}
	return names
}

func (c *ClientCase) validate() error {
	if c.app == nil {
		return usageErrorf("client case %q requires an application; none was bound", c.name)
	}
	return nil
}

func (c *ClientCase) runTest(t *framework.T, name string, debug bool) error {
	fn := c.Method(name)
	if fn == nil {
		return usageErrorf("case %q has no test named %q", c.name, name)
	}
	client, release, err := openClient(c.app, c.cfg)
	if err != nil {
		return err
	}
	bound := framework.Binding{
		SetUp:    bindClient(c.setUp, client),
		Test:     bindClient(fn, client),
		TearDown: bindClient(c.tearDown, client),
	}
	return runOverridden(t, &c.bind, bound, debug, release)
}

func bindClient(fn func(*framework.T, Client), client Client) func(*framework.T) {
	if fn == nil {
		return nil
	}
	return func(t *framework.T) { fn(t, client) }
}
