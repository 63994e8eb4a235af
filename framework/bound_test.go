package framework

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticBound struct {
	binding Binding
}

func (s staticBound) CurrentBinding() Binding { return s.binding }

func runBoundTest(phases *[]string, binding Binding) Results {
	return Run(nil, nil, func(c *T) {
		c.Run("test", func(c *T) {
			c.RunBound(staticBound{binding})
		})
	})
}

func phaseRecorder(phases *[]string, name string) func(*T) {
	return func(*T) { *phases = append(*phases, name) }
}

func TestRunBoundPhaseOrder(t *testing.T) {
	var phases []string
	results := runBoundTest(&phases, Binding{
		SetUp:    phaseRecorder(&phases, "setUp"),
		Test:     phaseRecorder(&phases, "test"),
		TearDown: phaseRecorder(&phases, "tearDown"),
	})

	assert.Equal(t, []string{"setUp", "test", "tearDown"}, phases)
	assert.True(t, results.OK())
}

func TestRunBoundSetUpFailureSkipsBodyAndTearDown(t *testing.T) {
	var phases []string
	results := runBoundTest(&phases, Binding{
		SetUp: func(c *T) {
			phases = append(phases, "setUp")
			c.Errorf("setup broke")
			c.FailNow()
		},
		Test:     phaseRecorder(&phases, "test"),
		TearDown: phaseRecorder(&phases, "tearDown"),
	})

	assert.Equal(t, []string{"setUp"}, phases)
	require.Len(t, results.Failures, 1)
}

func TestRunBoundTearDownRunsWhenBodyFails(t *testing.T) {
	var phases []string
	results := runBoundTest(&phases, Binding{
		Test: func(c *T) {
			phases = append(phases, "test")
			c.Errorf("body broke")
			c.FailNow()
		},
		TearDown: phaseRecorder(&phases, "tearDown"),
	})

	assert.Equal(t, []string{"test", "tearDown"}, phases)
	require.Len(t, results.Failures, 1)
	assert.EqualError(t, results.Failures[0].Errors[0], "body broke")
}

func TestRunBoundTearDownRunsWhenBodyPanics(t *testing.T) {
	var phases []string
	results := runBoundTest(&phases, Binding{
		Test:     func(c *T) { panic("unexpected") },
		TearDown: phaseRecorder(&phases, "tearDown"),
	})

	assert.Equal(t, []string{"tearDown"}, phases)
	require.Len(t, results.Failures, 1)
}

func TestRunBoundWithoutTestMethodFails(t *testing.T) {
	var phases []string
	results := runBoundTest(&phases, Binding{})

	require.Len(t, results.Failures, 1)
	assert.Contains(t, results.Failures[0].Errors[0].Error(), "no test method")
}

func TestDebugBoundReturnsFailureAsError(t *testing.T) {
	var phases []string
	var debugErr error
	Run(nil, nil, func(c *T) {
		c.Run("test", func(c *T) {
			debugErr = c.DebugBound(staticBound{Binding{
				Test: func(c *T) {
					c.Errorf("observed failure")
					c.FailNow()
				},
				TearDown: phaseRecorder(&phases, "tearDown"),
			}})
		})
	})

	require.Error(t, debugErr)
	assert.Contains(t, debugErr.Error(), "observed failure")
	assert.Equal(t, []string{"tearDown"}, phases)
}

func TestDebugBoundReturnsNilOnSuccess(t *testing.T) {
	var debugErr error
	Run(nil, nil, func(c *T) {
		c.Run("test", func(c *T) {
			debugErr = c.DebugBound(staticBound{Binding{
				Test: func(*T) {},
			}})
		})
	})

	assert.NoError(t, debugErr)
}
