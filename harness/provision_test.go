package harness

import (
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvisionPlainConstructor(t *testing.T) {
	want := newFakeApp()
	app, release, err := provisionApp(func() App { return want })
	require.NoError(t, err)
	assert.Same(t, want, app)
	assert.NoError(t, release())
}

func TestProvisionConstructorWithErrorReturn(t *testing.T) {
	want := newFakeApp()
	app, release, err := provisionApp(func() (App, error) { return want, nil })
	require.NoError(t, err)
	assert.Same(t, want, app)
	assert.NoError(t, release())

	boom := errors.New("no database")
	_, _, err = provisionApp(func() (App, error) { return nil, boom })
	assert.Equal(t, boom, err)
}

func TestProvisionRejectsUnsupportedConstructor(t *testing.T) {
	_, _, err := provisionApp(42)
	var ue *UsageError
	require.ErrorAs(t, err, &ue)
	assert.Contains(t, ue.Message, "int")

	_, _, err = provisionApp(nil)
	require.ErrorAs(t, err, &ue)
}

func TestProvisionRejectsNilApplication(t *testing.T) {
	_, _, err := provisionApp(func() App { return nil })
	var ue *UsageError
	require.ErrorAs(t, err, &ue)
}

func TestProvisionGeneratorYieldsOnceAndCleansUpOnRelease(t *testing.T) {
	want := newFakeApp()
	cleanedUp := false
	ctor := func(yield func(App) bool) {
		yield(want)
		cleanedUp = true
	}

	app, release, err := provisionApp(ctor)
	require.NoError(t, err)
	assert.Same(t, want, app)
	assert.False(t, cleanedUp, "cleanup must not run until release")
	require.NoError(t, release())
	assert.True(t, cleanedUp)
}

func TestProvisionGeneratorSecondYieldIsContractViolation(t *testing.T) {
	ctor := func(yield func(App) bool) {
		yield(newFakeApp())
		yield(newFakeApp())
	}

	_, release, err := provisionApp(ctor)
	require.NoError(t, err)
	err = release()
	var cv *ContractViolationError
	require.ErrorAs(t, err, &cv)
}

func TestProvisionGeneratorZeroYieldsIsUsageError(t *testing.T) {
	_, _, err := provisionApp(func(yield func(App) bool) {})
	var ue *UsageError
	require.ErrorAs(t, err, &ue)
	assert.Contains(t, ue.Message, "without yielding")
}

func TestProvisionGeneratorDoubleReleaseIsUsageError(t *testing.T) {
	_, release, err := provisionApp(func(yield func(App) bool) { yield(newFakeApp()) })
	require.NoError(t, err)
	require.NoError(t, release())
	var ue *UsageError
	require.ErrorAs(t, release(), &ue)
}

func TestCheckAppConstructorAcceptsSeqType(t *testing.T) {
	var seq iter.Seq[App] = func(yield func(App) bool) { yield(newFakeApp()) }
	assert.NoError(t, checkAppConstructor(seq))
	assert.NoError(t, checkAppConstructor(func() App { return nil }))
	assert.NoError(t, checkAppConstructor(func() (App, error) { return nil, nil }))
	assert.Error(t, checkAppConstructor("not a constructor"))
}

func TestOpenClientPairsClientWithCloser(t *testing.T) {
	app := newFakeApp()
	client, release, err := openClient(app, defaultClientConfig())
	require.NoError(t, err)
	require.NoError(t, release())
	assert.True(t, client.(*fakeClient).closed)
}

func TestOpenClientPropagatesError(t *testing.T) {
	app := newFakeApp()
	app.clientErr = errors.New("client refused")
	_, _, err := openClient(app, defaultClientConfig())
	assert.Equal(t, app.clientErr, err)
}
