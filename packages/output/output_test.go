package output

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/chainspec/chainspec/packages/assertions"
	"github.com/chainspec/chainspec/packages/core/runner"
	"github.com/chainspec/chainspec/packages/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRun() *runner.RunResult {
	return &runner.RunResult{
		Suite:       "users-crud",
		Path:        "suites/users.yaml",
		Environment: "staging",
		Duration:    150 * time.Millisecond,
		Passed:      1,
		Failed:      1,
		Skipped:     1,
		Results: []*runner.ScenarioResult{
			{
				Name:     "createUser",
				Status:   runner.StatusPassed,
				Duration: 80 * time.Millisecond,
				Request:  &http.Request{Method: "POST", Path: "/users"},
				Response: &http.Response{StatusCode: 201, Status: "201 Created"},
				Captures: map[string]any{"userId": "42"},
			},
			{
				Name:     "getUser",
				Status:   runner.StatusFailed,
				Duration: 40 * time.Millisecond,
				Request:  &http.Request{Method: "GET", Path: "/users/42"},
				Response: &http.Response{StatusCode: 500, Status: "500 Internal Server Error"},
				Assertions: []*assertions.Result{
					{Subject: "status", Operator: "equals", Expected: 200, Actual: 500, Passed: false, Message: "expected 200, got 500"},
				},
			},
			{
				Name:       "deleteUser",
				Status:     runner.StatusSkipped,
				SkipReason: "dependency getUser failed",
			},
		},
	}
}

func TestConsoleFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

	f.FormatResult(sampleRun())
	out := buf.String()

	assert.Contains(t, out, "Running: users-crud")
	assert.Contains(t, out, "[staging]")
	assert.Contains(t, out, "✓ createUser")
	assert.Contains(t, out, "✗ getUser")
	assert.Contains(t, out, "Expected: 200")
	assert.Contains(t, out, "Actual:   500")
	assert.Contains(t, out, "- deleteUser (dependency getUser failed)")
	assert.Contains(t, out, "1 passed 1 failed 1 skipped")
}

func TestConsoleFormatter_Error(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))

	f.FormatError(errors.New("boom"))
	assert.Contains(t, buf.String(), "Error: boom")
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(JSONWithWriter(&buf))

	f.FormatResult(sampleRun())
	require.NoError(t, f.Flush(150*time.Millisecond))

	out := buf.String()
	assert.Contains(t, out, `"total": 3`)
	assert.Contains(t, out, `"passed": 1`)
	assert.Contains(t, out, `"status": "skipped"`)
	assert.Contains(t, out, `"skipReason": "dependency getUser failed"`)
	assert.Contains(t, out, `"userId": "42"`)
}

func TestJUnitFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewJUnitFormatter(JUnitWithWriter(&buf))

	f.FormatResult(sampleRun())
	require.NoError(t, f.Flush(150*time.Millisecond))

	out := buf.String()
	assert.Contains(t, out, `<testsuites name="chainspec"`)
	assert.Contains(t, out, `tests="3"`)
	assert.Contains(t, out, `failures="1"`)
	assert.Contains(t, out, `<failure message="Assertion failed" type="AssertionMismatch">`)
	assert.Contains(t, out, `<skipped message="dependency getUser failed">`)
}

func TestJUnitFormatter_ConnectionError(t *testing.T) {
	var buf bytes.Buffer
	f := NewJUnitFormatter(JUnitWithWriter(&buf))

	run := &runner.RunResult{
		Suite:  "net",
		Failed: 1,
		Results: []*runner.ScenarioResult{
			{Name: "unreachable", Status: runner.StatusFailed, Err: errors.New("connection refused")},
		},
	}
	f.FormatResult(run)
	require.NoError(t, f.Flush(time.Millisecond))

	assert.Contains(t, buf.String(), `type="ConnectionError"`)
}

func TestTAPFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewTAPFormatter(TAPWithWriter(&buf))

	f.FormatResult(sampleRun())
	require.NoError(t, f.Flush(150*time.Millisecond))

	out := buf.String()
	assert.Contains(t, out, "TAP version 13")
	assert.Contains(t, out, "1..3")
	assert.Contains(t, out, "ok 1 - createUser")
	assert.Contains(t, out, "not ok 2 - getUser")
	assert.Contains(t, out, "ok 3 - deleteUser # SKIP")
}

func TestSummarize(t *testing.T) {
	tests := ConvertTests(sampleRun())
	s := Summarize(tests)

	assert.Equal(t, 3, s.Total)
	assert.Equal(t, 1, s.Passed)
	assert.Equal(t, 1, s.Failed)
	assert.Equal(t, 1, s.Skipped)
}
