package harness

import (
	"errors"

	"github.com/appunit/appunit/framework"
)

// bindings guards a case's method set with a small idle/active state machine.
// While a test is in flight, the author's resource-taking methods are rebound
// to nullary closures over the provisioned resources; the override is undone
// on every exit path so the case instance is pristine for its next test.
type bindings struct {
	active *framework.Binding
}

// CurrentBinding implements framework.Bound. Outside an active test it
// returns an empty binding: the original author methods are never executable
// without their resources.
func (b *bindings) CurrentBinding() framework.Binding {
	if b.active == nil {
		return framework.Binding{}
	}
	return *b.active
}

func (b *bindings) overridden() bool {
	return b.active != nil
}

// override installs the bound form of the current test's methods. Only one
// test may be active per case instance.
func (b *bindings) override(bound framework.Binding) (*overrideScope, error) {
	if b.active != nil {
		return nil, usageErrorf("a test is already active on this case; re-entrant execution is not supported")
	}
	b.active = &bound
	return &overrideScope{owner: b}, nil
}

type overrideScope struct {
	owner *bindings
}

// restore returns the case to its original, unbound method set.
func (s *overrideScope) restore() {
	s.owner.active = nil
}

// runOverridden is the single-test execution path shared by all case
// variants. The resources have already been provisioned by the caller;
// disposers are given in acquisition order.
//
// It installs bound on the case, invokes the host execution primitive exactly
// once against the case's current binding, and then, on every exit path
// including panics, disposes the resources in reverse acquisition order and
// restores the original bindings. A disposal error is returned only after the
// bindings have been restored.
func runOverridden(t *framework.T, b *bindings, bound framework.Binding, debug bool, disposers ...disposer) error {
	scope, err := b.override(bound)
	if err != nil {
		// The override never happened; still release what was provisioned.
		return errors.Join(err, disposeAll(disposers))
	}

	var execErr, dispErr error
	func() {
		defer scope.restore()
		defer func() { dispErr = disposeAll(disposers) }()
		if debug {
			execErr = t.DebugBound(b)
		} else {
			t.RunBound(b)
		}
	}()
	return errors.Join(execErr, dispErr)
}

// disposeAll releases resources in reverse acquisition order, keeping every
// error.
func disposeAll(disposers []disposer) error {
	var errs []error
	for i := len(disposers) - 1; i >= 0; i-- {
		if err := disposers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
