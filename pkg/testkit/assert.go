package testkit

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// AssertAllCalled fails the test if any registered route was never hit.
func (mt *MockTransport) AssertAllCalled(t *testing.T) bool {
	t.Helper()
	missing := mt.Unmatched()
	return assert.Empty(t, missing, "mock routes never called")
}

// AssertCalledTimes checks how often method+path was requested.
func (mt *MockTransport) AssertCalledTimes(t *testing.T, method, path string, n int) bool {
	t.Helper()
	return assert.Len(t, mt.CallsTo(method, path), n, "calls to %s %s", method, path)
}

// AssertJSONBody deep-compares a recorded request body with expected after
// normalising both through JSON, so key order and whitespace never matter.
func AssertJSONBody(t *testing.T, expected interface{}, call Call) bool {
	t.Helper()

	want, err := json.Marshal(expected)
	require.NoError(t, err)

	var expVal, actVal interface{}
	require.NoError(t, json.Unmarshal(want, &expVal))
	if !assert.NoError(t, json.Unmarshal(call.Body, &actVal), "request body is not valid JSON: %s", call.Body) {
		return false
	}
	return assert.Equal(t, expVal, actVal, "%s %s body mismatch", call.Method, call.Path)
}

// LastCall returns the most recent request, failing the test when none was made.
func (mt *MockTransport) LastCall(t *testing.T) Call {
	t.Helper()
	calls := mt.Calls()
	require.NotEmpty(t, calls, "no HTTP calls recorded")
	return calls[len(calls)-1]
}
