package harness

import (
	"iter"
)

// disposer releases a provisioned resource. Each disposer is called at most
// once, after the test that used the resource has finished.
type disposer func() error

func noopDispose() error { return nil }

const appConstructorShapes = "func() harness.App, func() (harness.App, error), or iter.Seq[harness.App]"

// checkAppConstructor validates a constructor's shape without invoking it, so
// that a misconfigured case fails at construction rather than mid-run.
func checkAppConstructor(ctor any) error {
	switch ctor.(type) {
	case func() App, func() (App, error), iter.Seq[App], func(func(App) bool):
		return nil
	case nil:
		return usageErrorf("an application constructor is required")
	default:
		return usageErrorf("unsupported application constructor type %T (want %s)", ctor, appConstructorShapes)
	}
}

// provisionApp invokes an author-supplied application constructor and returns
// the application together with its matching disposer.
//
// Three constructor shapes are accepted:
//
//	func() App           plain; disposal is a no-op
//	func() (App, error)  plain with an error return
//	iter.Seq[App]        generator-shaped: the sequence must yield the
//	                     application exactly once, and any code after the
//	                     yield runs at disposal
//
// A sequence that terminates without yielding is a UsageError; one that
// yields a second value causes its disposer to return a
// ContractViolationError.
func provisionApp(ctor any) (App, disposer, error) {
	switch c := ctor.(type) {
	case func() App:
		app := c()
		if app == nil {
			return nil, nil, usageErrorf("application constructor returned nil")
		}
		return app, noopDispose, nil
	case func() (App, error):
		app, err := c()
		if err != nil {
			return nil, nil, err
		}
		if app == nil {
			return nil, nil, usageErrorf("application constructor returned nil")
		}
		return app, noopDispose, nil
	case iter.Seq[App]:
		return provisionFromSeq(c)
	case func(func(App) bool):
		return provisionFromSeq(c)
	case nil:
		return nil, nil, usageErrorf("an application constructor is required")
	default:
		return nil, nil, usageErrorf("unsupported application constructor type %T (want %s)", ctor, appConstructorShapes)
	}
}

// provisionFromSeq drives a single-yield fixture sequence. The sequence is
// advanced once to obtain the application and then left paused; disposal
// resumes it exactly once and requires it to terminate without producing
// another value.
func provisionFromSeq(seq iter.Seq[App]) (App, disposer, error) {
	next, stop := iter.Pull(seq)
	app, ok := next()
	if !ok {
		stop()
		return nil, nil, usageErrorf("application fixture terminated without yielding an application")
	}
	if app == nil {
		stop()
		return nil, nil, usageErrorf("application fixture yielded nil")
	}
	released := false
	dispose := func() error {
		if released {
			return usageErrorf("application fixture released twice")
		}
		released = true
		defer stop()
		if _, again := next(); again {
			return &ContractViolationError{
				Message: "application fixture yielded a second value; a fixture must yield exactly once",
			}
		}
		return nil
	}
	return app, dispose, nil
}

// openClient opens the per-test client for app and pairs it with a disposer
// that closes it.
func openClient(app App, cfg ClientConfig) (Client, disposer, error) {
	client, err := app.Client(cfg.UseCookies, cfg.Options)
	if err != nil {
		return nil, nil, err
	}
	if client == nil {
		return nil, nil, usageErrorf("application returned a nil client")
	}
	return client, client.Close, nil
}
