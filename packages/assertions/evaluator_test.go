package assertions

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/chainspec/chainspec/packages/core/suite"
	"github.com/chainspec/chainspec/packages/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       []byte(body),
		Duration:   42 * time.Millisecond,
	}
}

func TestEvaluate_StatusEquals(t *testing.T) {
	e := NewEvaluator(jsonResponse(201, `{"id": "42"}`))

	r := e.Evaluate(&suite.Assertion{Subject: "status", Operator: suite.OpEquals, Expected: 201})
	assert.True(t, r.Passed)
	assert.Equal(t, 201, r.Actual)

	r = e.Evaluate(&suite.Assertion{Subject: "status", Operator: suite.OpEquals, Expected: 200})
	assert.False(t, r.Passed)
	assert.Equal(t, "expected 200, got 201", r.Message)
}

func TestEvaluate_BodyFieldEquals(t *testing.T) {
	e := NewEvaluator(jsonResponse(200, `{"id": "42", "name": "John Doe", "age": 30}`))

	r := e.Evaluate(&suite.Assertion{Subject: "body.name", Operator: suite.OpEquals, Expected: "John Doe"})
	assert.True(t, r.Passed)

	// YAML integers compare equal against JSON numbers
	r = e.Evaluate(&suite.Assertion{Subject: "body.age", Operator: suite.OpEquals, Expected: 30})
	assert.True(t, r.Passed)

	r = e.Evaluate(&suite.Assertion{Subject: "body.name", Operator: suite.OpEquals, Expected: "Jane"})
	assert.False(t, r.Passed)
}

func TestEvaluate_BracketNotation(t *testing.T) {
	e := NewEvaluator(jsonResponse(200, `{"items": [{"id": 1}, {"id": 2}]}`))

	r := e.Evaluate(&suite.Assertion{Subject: "body.items[1].id", Operator: suite.OpEquals, Expected: 2})
	assert.True(t, r.Passed)
}

func TestEvaluate_Header(t *testing.T) {
	resp := jsonResponse(200, `{}`)
	resp.Headers["Location"] = "/users/42"
	e := NewEvaluator(resp)

	r := e.Evaluate(&suite.Assertion{Subject: "header.Location", Operator: suite.OpEquals, Expected: "/users/42"})
	assert.True(t, r.Passed)

	r = e.Evaluate(&suite.Assertion{Subject: "header.Content-Type", Operator: suite.OpContains, Expected: "json"})
	assert.True(t, r.Passed)
}

func TestEvaluate_NotEquals(t *testing.T) {
	e := NewEvaluator(jsonResponse(200, `{"state": "active"}`))

	r := e.Evaluate(&suite.Assertion{Subject: "body.state", Operator: suite.OpNotEquals, Expected: "deleted"})
	assert.True(t, r.Passed)

	r = e.Evaluate(&suite.Assertion{Subject: "body.state", Operator: suite.OpNotEquals, Expected: "active"})
	assert.False(t, r.Passed)
}

func TestEvaluate_Matches(t *testing.T) {
	e := NewEvaluator(jsonResponse(200, `{"id": "a1b2c3"}`))

	r := e.Evaluate(&suite.Assertion{Subject: "body.id", Operator: suite.OpMatches, Expected: "^[a-z0-9]+$"})
	assert.True(t, r.Passed)

	r = e.Evaluate(&suite.Assertion{Subject: "body.id", Operator: suite.OpMatches, Expected: `^\d+$`})
	assert.False(t, r.Passed)
}

func TestEvaluate_Exists(t *testing.T) {
	e := NewEvaluator(jsonResponse(200, `{"id": "42"}`))

	r := e.Evaluate(&suite.Assertion{Subject: "body.id", Operator: suite.OpExists, Expected: true})
	assert.True(t, r.Passed)

	r = e.Evaluate(&suite.Assertion{Subject: "body.missing", Operator: suite.OpExists, Expected: true})
	assert.False(t, r.Passed)

	r = e.Evaluate(&suite.Assertion{Subject: "body.missing", Operator: suite.OpExists, Expected: false})
	assert.True(t, r.Passed)
}

func TestEvaluate_Schema(t *testing.T) {
	dir := t.TempDir()
	schemaPath := filepath.Join(dir, "user.json")
	require.NoError(t, os.WriteFile(schemaPath, []byte(`{
		"type": "object",
		"required": ["id", "name"],
		"properties": {
			"id": {"type": "string"},
			"name": {"type": "string"}
		}
	}`), 0644))

	e := NewEvaluatorWithBaseDir(jsonResponse(200, `{"id": "42", "name": "John Doe"}`), dir)

	r := e.Evaluate(&suite.Assertion{Subject: "body", Operator: suite.OpSchema, Expected: "user.json"})
	assert.True(t, r.Passed, r.Message)

	e = NewEvaluatorWithBaseDir(jsonResponse(200, `{"id": 42}`), dir)
	r = e.Evaluate(&suite.Assertion{Subject: "body", Operator: suite.OpSchema, Expected: "user.json"})
	assert.False(t, r.Passed)
	assert.Contains(t, r.Message, "schema validation failed")
}

func TestEvaluateAll_StopsAtFirstFailure(t *testing.T) {
	resp := jsonResponse(404, `{"error": "not found"}`)

	results := EvaluateAll(resp, []*suite.Assertion{
		{Subject: "status", Operator: suite.OpEquals, Expected: 200},
		{Subject: "body.error", Operator: suite.OpEquals, Expected: "not found"},
	}, "")

	// The second assertion never runs
	require.Len(t, results, 1)
	assert.False(t, results[0].Passed)
}

func TestEvaluateAll_AllPass(t *testing.T) {
	resp := jsonResponse(200, `{"name": "John Doe"}`)

	results := EvaluateAll(resp, []*suite.Assertion{
		{Subject: "status", Operator: suite.OpEquals, Expected: 200},
		{Subject: "body.name", Operator: suite.OpEquals, Expected: "John Doe"},
	}, "")

	require.Len(t, results, 2)
	assert.True(t, results[0].Passed)
	assert.True(t, results[1].Passed)
}

func TestEvaluate_NonJSONBody(t *testing.T) {
	resp := &http.Response{
		StatusCode: 200,
		Headers:    map[string]string{"Content-Type": "text/plain"},
		Body:       []byte("pong"),
	}
	e := NewEvaluator(resp)

	r := e.Evaluate(&suite.Assertion{Subject: "body", Operator: suite.OpEquals, Expected: "pong"})
	assert.True(t, r.Passed)
}
