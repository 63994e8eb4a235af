package harness

import (
	"errors"

	"github.com/appunit/appunit/framework"
)

// AppClientTest is one test method of an AppClientCase.
type AppClientTest struct {
	Name string
	Run  func(t *framework.T, app App, client Client)
}

// AppClientCase injects both a freshly provisioned application and a client
// opened from it into every test. The application is acquired first and the
// client second; teardown is strictly the reverse, client then application.
type AppClientCase struct {
	name     string
	newApp   any
	cfg      ClientConfig
	setUp    func(t *framework.T, app App, client Client)
	tearDown func(t *framework.T, app App, client Client)
	tests    []AppClientTest
	bind     bindings
}

// NewAppClientCase creates a case whose tests each receive an application
// built by newApp plus a client opened from it. newApp accepts the same
// shapes as NewAppCase.
func NewAppClientCase(name string, newApp any, opts ...ClientOption) (*AppClientCase, error) {
	if err := checkAppConstructor(newApp); err != nil {
		return nil, err
	}
	cfg := defaultClientConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return &AppClientCase{name: name, newApp: newApp, cfg: cfg}, nil
}

// SetUp registers a setup method run before each test.
func (c *AppClientCase) SetUp(fn func(*framework.T, App, Client)) *AppClientCase {
	c.setUp = fn
	return c
}

// TearDown registers a teardown method run after each test, before either
// resource is released.
func (c *AppClientCase) TearDown(fn func(*framework.T, App, Client)) *AppClientCase {
	c.tearDown = fn
	return c
}

// Test adds a test method to the case.
func (c *AppClientCase) Test(name string, fn func(*framework.T, App, Client)) *AppClientCase {
	c.tests = append(c.tests, AppClientTest{Name: name, Run: fn})
	return c
}

func (c *AppClientCase) CaseName() string { return c.name }

// Method returns the author's original test method, never a resource-bound
// form.
func (c *AppClientCase) Method(name string) func(*framework.T, App, Client) {
	for _, tt := range c.tests {
		if tt.Name == name {
			return tt.Run
		}
	}
	return nil
}

func (c *AppClientCase) testNames() []string {
	names := make([]string, 0, len(c.tests))
	for _, tt := range c.tests {
		names = append(names, tt.Name)
	}
	return names
}

func (c *AppClientCase) validate() error {
	return checkAppConstructor(c.newApp)
}

func (c *AppClientCase) runTest(t *framework.T, name string, debug bool) error {
	fn := c.Method(name)
	if fn == nil {
		return usageErrorf("case %q has no test named %q", c.name, name)
	}
	app, releaseApp, err := provisionApp(c.newApp)
	if err != nil {
		return err
	}
	client, releaseClient, err := openClient(app, c.cfg)
	if err != nil {
		return errors.Join(err, releaseApp())
	}
	bound := framework.Binding{
		SetUp:    bindAppClient(c.setUp, app, client),
		Test:     bindAppClient(fn, app, client),
		TearDown: bindAppClient(c.tearDown, app, client),
	}
	// Disposers in acquisition order; runOverridden releases in reverse.
	return runOverridden(t, &c.bind, bound, debug, releaseApp, releaseClient)
}

func bindAppClient(fn func(*framework.T, App, Client), app App, client Client) func(*framework.T) {
	if fn == nil {
		return nil
	}
	return func(t *framework.T) { fn(t, app, client) }
}
