// Package testutil provides common test utilities and assertions for SDK tests
package testutil

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portal-sdk/portal-sdk-go/domain/entities"
)

// RequireSuccess fails the test immediately unless r is a success and
// returns the carried value.
func RequireSuccess[T any](t *testing.T, r entities.Result[T], msgAndArgs ...interface{}) T {
	t.Helper()
	if r.IsFailure() {
		require.FailNow(t, fmt.Sprintf("unexpected failure: %v", r.Err()), msgAndArgs...)
	}
	return r.Value()
}

// RequireFailure fails the test immediately unless r is a failure and
// returns the carried error.
func RequireFailure[T any](t *testing.T, r entities.Result[T], msgAndArgs ...interface{}) error {
	t.Helper()
	require.True(t, r.IsFailure(), msgAndArgs...)
	return r.Err()
}

// AssertFailureContains asserts that r failed with a message containing substr.
func AssertFailureContains[T any](t *testing.T, r entities.Result[T], substr string) {
	t.Helper()
	if assert.True(t, r.IsFailure(), "expected failure") {
		assert.Contains(t, r.Err().Error(), substr)
	}
}

// AssertCookieNames asserts the set of names in a cookie map, ignoring values.
func AssertCookieNames(t *testing.T, expected []string, cookies map[string]string, msgAndArgs ...interface{}) {
	t.Helper()
	names := make([]string, 0, len(cookies))
	for name := range cookies {
		names = append(names, name)
	}
	assert.ElementsMatch(t, expected, names, msgAndArgs...)
}

// AssertJSONEqual compares two JSON strings for equality, ignoring formatting
func AssertJSONEqual(t *testing.T, expected, actual string, msgAndArgs ...interface{}) {
	t.Helper()

	var expectedJSON, actualJSON interface{}
	require.NoError(t, json.Unmarshal([]byte(expected), &expectedJSON), "expected JSON is invalid")
	require.NoError(t, json.Unmarshal([]byte(actual), &actualJSON), "actual JSON is invalid")

	assert.Equal(t, expectedJSON, actualJSON, msgAndArgs...)
}

// AssertLinesContain asserts that every expected fragment appears on some
// line of out.
func AssertLinesContain(t *testing.T, out string, expected ...string) {
	t.Helper()
	lines := strings.Split(out, "\n")
	for _, want := range expected {
		found := false
		for _, line := range lines {
			if strings.Contains(line, want) {
				found = true
				break
			}
		}
		assert.True(t, found, "output should contain %q:\n%s", want, out)
	}
}
