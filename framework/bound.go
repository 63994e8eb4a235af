package framework

import (
	"fmt"
	"runtime/debug"
)

// Binding is a test's method set after its fixture arguments have been bound:
// each function takes only the test context, so the runner can execute it
// without knowing which fixtures the test wanted. SetUp and TearDown may be
// nil.
type Binding struct {
	SetUp    func(*T)
	Test     func(*T)
	TearDown func(*T)
}

// Bound supplies the currently bound form of a test's methods. The binding is
// looked up at execution time, not captured in advance, so that whatever is
// bound on the owning case when execution starts is what runs.
type Bound interface {
	CurrentBinding() Binding
}

// RunBound executes a bound test with ordinary failure recording: a failure in
// any phase is recorded against t and does not escape. SetUp runs first; if it
// does not complete, the test body and TearDown are skipped. TearDown runs
// whenever SetUp completed, even if the test body failed.
func (t *T) RunBound(b Bound) {
	bd := b.CurrentBinding()
	if bd.Test == nil {
		t.Errorf("no test method is bound")
		return
	}
	if bd.SetUp != nil && !t.protect(bd.SetUp) {
		return
	}
	func() {
		if bd.TearDown != nil {
			defer t.protect(bd.TearDown)
		}
		t.protect(bd.Test)
	}()
}

// DebugBound executes a bound test like RunBound but re-raises the first
// failure to the caller as an error instead of leaving it only in the result
// sink. Phase ordering matches RunBound.
func (t *T) DebugBound(b Bound) (err error) {
	bd := b.CurrentBinding()
	if bd.Test == nil {
		return fmt.Errorf("no test method is bound")
	}
	defer func() {
		if r := recover(); r != nil {
			if t.skipped {
				return
			}
			if _, ok := r.(*T); ok {
				err = TestFailure{ID: t.id, Err: firstError(t.errors)}
			} else {
				err = fmt.Errorf("unexpected panic in test: %+v", r)
			}
		}
	}()
	if bd.SetUp != nil {
		bd.SetUp(t)
	}
	func() {
		if bd.TearDown != nil {
			defer bd.TearDown(t)
		}
		bd.Test(t)
	}()
	if t.failed {
		return TestFailure{ID: t.id, Err: firstError(t.errors)}
	}
	return nil
}

// protect runs one phase of a test, converting FailNow panics and unexpected
// panics into recorded failures. Skips propagate to the enclosing run. It
// reports whether the phase ran to completion.
func (t *T) protect(phase func(*T)) (completed bool) {
	defer func() {
		if r := recover(); r != nil {
			if t.skipped {
				panic(r)
			}
			if _, ok := r.(*T); ok {
				t.failed = true
				if len(t.errors) == 0 {
					t.Errorf("test failed with no failure message")
				}
			} else {
				t.Errorf("unexpected panic in test: %+v\n%s", r, string(debug.Stack()))
			}
			completed = false
		}
	}()
	phase(t)
	return true
}

func firstError(errs []error) error {
	if len(errs) == 0 {
		return fmt.Errorf("test failed with no failure message")
	}
	return errs[0]
}
