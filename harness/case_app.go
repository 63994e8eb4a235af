package harness

import (
	"github.com/appunit/appunit/framework"
)

// AppTest is one test method of an AppCase.
type AppTest struct {
	Name string
	Run  func(t *framework.T, app App)
}

// AppCase injects a freshly provisioned application into every test. The
// application is constructed immediately before each test and disposed of
// immediately after it, so tests never share application state.
type AppCase struct {
	name     string
	newApp   any
	setUp    func(t *framework.T, app App)
	tearDown func(t *framework.T, app App)
	tests    []AppTest
	bind     bindings
}

// NewAppCase creates a case whose tests each receive an application built by
// newApp. The constructor may be plain:
//
//	func() harness.App
//	func() (harness.App, error)
//
// or generator-shaped, with teardown code after a single yield:
//
//	func(yield func(harness.App) bool) {
//		app := buildApp()
//		yield(app)
//		app.Cleanup()
//	}
//
// An unsupported constructor shape fails here, before any test runs.
func NewAppCase(name string, newApp any) (*AppCase, error) {
	if err := checkAppConstructor(newApp); err != nil {
		return nil, err
	}
	return &AppCase{name: name, newApp: newApp}, nil
}

// SetUp registers a setup method run before each test, with the same injected
// application the test will receive.
func (c *AppCase) SetUp(fn func(*framework.T, App)) *AppCase {
	c.setUp = fn
	return c
}

// TearDown registers a teardown method run after each test, before the
// application is disposed of.
func (c *AppCase) TearDown(fn func(*framework.T, App)) *AppCase {
	c.tearDown = fn
	return c
}

// Test adds a test method to the case.
func (c *AppCase) Test(name string, fn func(*framework.T, App)) *AppCase {
	c.tests = append(c.tests, AppTest{Name: name, Run: fn})
	return c
}

func (c *AppCase) CaseName() string { return c.name }

// Method returns the author's original test method, never a resource-bound
// form: bindings are fully restored after every test invocation.
func (c *AppCase) Method(name string) func(*framework.T, App) {
	for _, tt := range c.tests {
		if tt.Name == name {
			return tt.Run
		}
	}
	return nil
}

func (c *AppCase) testNames() []string {
	names := make([]string, 0, len(c.tests))
	for _, tt := range c.tests {
		names = append(names, tt.Name)
	}
	return names
}

func (c *AppCase) validate() error {
	return checkAppConstructor(c.newApp)
}

func (c *AppCase) runTest(t *framework.T, name string, debug bool) error {
	fn := c.Method(name)
	if fn == nil {
		return usageErrorf("case %q has no test named %q", c.name, name)
	}
	app, release, err := provisionApp(c.newApp)
	if err != nil {
		return err
	}
	bound := framework.Binding{
		SetUp:    bindApp(c.setUp, app),
		Test:     bindApp(fn, app),
		TearDown: bindApp(c.tearDown, app),
	}
	return runOverridden(t, &c.bind, bound, debug, release)
}

func bindApp(fn func(*framework.T, App), app App) func(*framework.T) {
	if fn == nil {
		return nil
	}
	return func(t *framework.T) { fn(t, app) }
}
