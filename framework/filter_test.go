package framework

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegexFiltersSelectByMustMatch(t *testing.T) {
	var f RegexFilters
	require.NoError(t, f.MustMatch.Set("auth"))

	assert.True(t, f.AsFilter(TestID{Path: []string{"auth", "login"}}))
	assert.False(t, f.AsFilter(TestID{Path: []string{"blog", "create"}}))
}

func TestRegexFiltersExcludeByMustNotMatch(t *testing.T) {
	var f RegexFilters
	require.NoError(t, f.MustNotMatch.Set("slow"))

	assert.True(t, f.AsFilter(TestID{Path: []string{"fast", "one"}}))
	assert.False(t, f.AsFilter(TestID{Path: []string{"slow", "one"}}))
}

func TestRegexFiltersDefaultRunsEverything(t *testing.T) {
	var f RegexFilters
	assert.True(t, f.AsFilter(TestID{Path: []string{"anything"}}))
}

func TestRegexListRejectsInvalidPattern(t *testing.T) {
	var l RegexList
	assert.Error(t, l.Set("("))
	require.NoError(t, l.Set("a|b"))
	assert.True(t, l.IsDefined())
	assert.Equal(t, `"a|b"`, l.String())
}
