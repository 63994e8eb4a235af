package harness

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/appunit/appunit/framework"
)

func newTestRunner() *Runner {
	return &Runner{Logger: framework.NullTestLogger()}
}

func TestAppCaseInjectsTheConstructedApplication(t *testing.T) {
	want := newFakeApp()
	var got App
	c, err := NewAppCase("app", func() App { return want })
	require.NoError(t, err)
	c.Test("receives app", func(t *framework.T, app App) { got = app })

	results, err := newTestRunner().Run(NewSuite("root", Leaf(c)))
	require.NoError(t, err)
	assert.True(t, results.OK())
	assert.Same(t, want, got)
	assert.False(t, c.bind.overridden(), "bindings must be restored after the run")
}

func TestAppCaseMethodReturnsTheOriginalFunction(t *testing.T) {
	fn := func(t *framework.T, app App) {}
	c, err := NewAppCase("app", func() App { return newFakeApp() })
	require.NoError(t, err)
	c.Test("original", fn)

	_, err = newTestRunner().Run(NewSuite("root", Leaf(c)))
	require.NoError(t, err)

	got := c.Method("original")
	assert.Equal(t, reflect.ValueOf(fn).Pointer(), reflect.ValueOf(got).Pointer(),
		"running a test must not replace the author's method")
	assert.Nil(t, c.Method("no such test"))
}

func TestAppCaseFreshApplicationPerTest(t *testing.T) {
	var seen []App
	c, err := NewAppCase("app", func() App { return newFakeApp() })
	require.NoError(t, err)
	record := func(t *framework.T, app App) { seen = append(seen, app) }
	c.Test("first", record)
	c.Test("second", record)

	results, err := newTestRunner().Run(NewSuite("root", Leaf(c)))
	require.NoError(t, err)
	assert.True(t, results.OK())
	require.Len(t, seen, 2)
	assert.NotSame(t, seen[0], seen[1])
}

func TestAppCaseGeneratorFixtureLifecycle(t *testing.T) {
	log := &eventLog{}
	ctor := func(yield func(App) bool) {
		app := newFakeApp()
		app.events = log
		log.add("build")
		yield(app)
		log.add("dispose")
	}

	c, err := NewAppCase("app", ctor)
	require.NoError(t, err)
	c.SetUp(func(t *framework.T, app App) { log.add("setUp") })
	c.TearDown(func(t *framework.T, app App) { log.add("tearDown") })
	c.Test("one", func(t *framework.T, app App) { log.add("test") })

	results, err := newTestRunner().Run(NewSuite("root", Leaf(c)))
	require.NoError(t, err)
	assert.True(t, results.OK())
	assert.Equal(t, []string{"build", "setUp", "test", "tearDown", "dispose"}, log.list())
}

func TestAppCaseSecondYieldSurfacesAsRunnerError(t *testing.T) {
	ctor := func(yield func(App) bool) {
		yield(newFakeApp())
		yield(newFakeApp())
	}
	c, err := NewAppCase("app", ctor)
	require.NoError(t, err)
	c.Test("one", func(t *framework.T, app App) {})

	results, err := newTestRunner().Run(NewSuite("root", Leaf(c)))
	var cv *ContractViolationError
	require.ErrorAs(t, err, &cv)
	assert.True(t, results.OK(), "the test itself passed; only the fixture misbehaved")
	assert.False(t, c.bind.overridden(), "bindings must be restored before the violation propagates")
}

func TestNewAppCaseRejectsBadConstructorEagerly(t *testing.T) {
	_, err := NewAppCase("app", "not a constructor")
	var ue *UsageError
	require.ErrorAs(t, err, &ue)
}

func TestNewClientCaseRejectsNilApplication(t *testing.T) {
	_, err := NewClientCase("client", nil)
	var ue *UsageError
	require.ErrorAs(t, err, &ue)
	assert.Contains(t, ue.Message, "requires an application")
}

func TestClientCaseOpensAndClosesClientPerTest(t *testing.T) {
	app := newFakeApp()
	c, err := NewClientCase("client", app)
	require.NoError(t, err)
	c.Test("first", func(t *framework.T, client Client) { app.events.add("test 1") })
	c.Test("second", func(t *framework.T, client Client) { app.events.add("test 2") })

	results, err := newTestRunner().Run(NewSuite("root", Leaf(c)))
	require.NoError(t, err)
	assert.True(t, results.OK())
	assert.Equal(t, []string{
		"open client-1 cookies=true", "test 1", "close client-1",
		"open client-2 cookies=true", "test 2", "close client-2",
	}, app.events.list())
}

func TestClientCaseHonorsCookieOption(t *testing.T) {
	app := newFakeApp()
	c, err := NewClientCase("client", app, WithCookies(false))
	require.NoError(t, err)
	c.Test("one", func(t *framework.T, client Client) {})

	results, err := newTestRunner().Run(NewSuite("root", Leaf(c)))
	require.NoError(t, err)
	assert.True(t, results.OK())
	assert.Equal(t, []string{"open client-1 cookies=false", "close client-1"}, app.events.list())
}

func TestAppClientCaseReleasesClientBeforeApplication(t *testing.T) {
	log := &eventLog{}
	ctor := func(yield func(App) bool) {
		app := newFakeApp()
		app.events = log
		yield(app)
		log.add("dispose app")
	}
	c, err := NewAppClientCase("both", ctor)
	require.NoError(t, err)
	c.Test("one", func(t *framework.T, app App, client Client) { log.add("test") })

	results, err := newTestRunner().Run(NewSuite("root", Leaf(c)))
	require.NoError(t, err)
	assert.True(t, results.OK())
	assert.Equal(t, []string{
		"open client-1 cookies=true", "test", "close client-1", "dispose app",
	}, log.list())
}

func TestAppClientCaseTearsDownAfterFailingTest(t *testing.T) {
	log := &eventLog{}
	ctor := func(yield func(App) bool) {
		app := newFakeApp()
		app.events = log
		yield(app)
		log.add("dispose app")
	}
	c, err := NewAppClientCase("both", ctor)
	require.NoError(t, err)
	c.TearDown(func(t *framework.T, app App, client Client) { log.add("tearDown") })
	c.Test("fails", func(t *framework.T, app App, client Client) {
		log.add("test")
		t.Errorf("deliberate failure")
		t.FailNow()
	})

	results, err := newTestRunner().Run(NewSuite("root", Leaf(c)))
	require.NoError(t, err)
	assert.False(t, results.OK())
	assert.Equal(t, []string{
		"open client-1 cookies=true", "test", "tearDown", "close client-1", "dispose app",
	}, log.list())
	assert.False(t, c.bind.overridden())
}

func TestLiveCaseFailsOutsideALiveSuite(t *testing.T) {
	c := NewLiveCase("live")
	c.Test("needs injection", func(t *framework.T, env *LiveEnv) {
		_ = env.ServerURL()
	})

	results, err := newTestRunner().Run(NewSuite("root", Leaf(c)))
	require.NoError(t, err)
	require.Len(t, results.Failures, 1)
	assert.Contains(t, results.Failures[0].Errors[0].Error(), "live endpoint not injected")
}

func TestRunnerGroupsNestSuiteNamesIntoTestIDs(t *testing.T) {
	c, err := NewAppCase("app", func() App { return newFakeApp() })
	require.NoError(t, err)
	c.Test("one", func(t *framework.T, app App) {})

	var ids []string
	logger := &idRecorder{ids: &ids}
	runner := &Runner{Logger: logger}
	_, err = runner.Run(NewSuite("root", Group(NewSuite("inner", Leaf(c)))))
	require.NoError(t, err)
	assert.Contains(t, ids, "inner/app/one")
}

type idRecorder struct {
	ids *[]string
}

func (l *idRecorder) TestStarted(id framework.TestID) { *l.ids = append(*l.ids, id.String()) }
func (l *idRecorder) TestError(id framework.TestID, err error) {}
func (l *idRecorder) TestFinished(id framework.TestID, failed bool, debugOutput framework.CapturedOutput) {
}
func (l *idRecorder) TestSkipped(id framework.TestID, reason string) {}
