package runner

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/chainspec/chainspec/packages/core/config"
	"github.com/chainspec/chainspec/packages/core/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// usersServer is a minimal in-memory users API: POST /users, GET and DELETE
// /users/{id}, unknown ids answer 404.
func usersServer(t *testing.T) *httptest.Server {
	t.Helper()

	var mu sync.Mutex
	users := make(map[string]map[string]any)
	nextID := 42

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		defer mu.Unlock()

		switch {
		case r.Method == "POST" && r.URL.Path == "/users":
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			id := fmt.Sprintf("%d", nextID)
			nextID++
			user := map[string]any{"id": id, "name": body["name"]}
			users[id] = user
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(user)

		case r.Method == "GET" && strings.HasPrefix(r.URL.Path, "/users/"):
			id := strings.TrimPrefix(r.URL.Path, "/users/")
			user, ok := users[id]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(user)

		case r.Method == "DELETE" && strings.HasPrefix(r.URL.Path, "/users/"):
			id := strings.TrimPrefix(r.URL.Path, "/users/")
			if _, ok := users[id]; !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			delete(users, id)
			w.WriteHeader(http.StatusNoContent)

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func runnerConfig(baseURL string) *config.Config {
	return &config.Config{
		BaseURL:         baseURL,
		Environment:     "test",
		Timeout:         config.DefaultTimeout,
		FollowRedirects: true,
		ValidateSSL:     true,
	}
}

func statusAssert(expected int) *suite.Assertion {
	return &suite.Assertion{Subject: "status", Operator: suite.OpEquals, Expected: expected}
}

func TestRun_ChainedCRUD(t *testing.T) {
	server := usersServer(t)
	defer server.Close()

	s := &suite.Suite{
		Name: "users-crud",
		Scenarios: []*suite.Scenario{
			{
				Name:     "createUser",
				Priority: 1,
				Request:  suite.RequestSpec{Method: "POST", Path: "/users", Body: `{"name": "John Doe"}`},
				Assert: []*suite.Assertion{
					statusAssert(201),
					{Subject: "body.name", Operator: suite.OpEquals, Expected: "John Doe"},
				},
				Capture: map[string]string{"userId": "body.id"},
			},
			{
				Name:      "getUser",
				Priority:  2,
				DependsOn: "createUser",
				Request:   suite.RequestSpec{Method: "GET", Path: "/users/{{userId}}"},
				Assert: []*suite.Assertion{
					statusAssert(200),
					{Subject: "body.name", Operator: suite.OpEquals, Expected: "John Doe"},
				},
			},
			{
				Name:      "deleteUser",
				Priority:  3,
				DependsOn: "getUser",
				Request:   suite.RequestSpec{Method: "DELETE", Path: "/users/{{userId}}"},
				Assert:    []*suite.Assertion{statusAssert(204)},
			},
			{
				Name:     "getUnknownUser",
				Priority: 4,
				Request:  suite.RequestSpec{Method: "GET", Path: "/users/invalidId"},
				Assert:   []*suite.Assertion{statusAssert(404)},
			},
		},
	}

	r := NewRunner(runnerConfig(server.URL), Options{})
	result, err := r.Run(s)

	require.NoError(t, err)
	assert.Equal(t, 4, result.Passed)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 0, result.Skipped)
	assert.True(t, result.OK())

	// The captured id flowed into the dependent request path.
	assert.Equal(t, "/users/42", result.Results[1].Request.Path)
	assert.Equal(t, map[string]any{"userId": "42"}, result.Results[0].Captures)
}

func TestRun_DependentSkippedOnFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	s := &suite.Suite{
		Scenarios: []*suite.Scenario{
			{
				Name:     "createUser",
				Priority: 1,
				Request:  suite.RequestSpec{Method: "POST", Path: "/users"},
				Assert:   []*suite.Assertion{statusAssert(201)},
				Capture:  map[string]string{"userId": "body.id"},
			},
			{
				Name:      "getUser",
				Priority:  2,
				DependsOn: "createUser",
				Request:   suite.RequestSpec{Method: "GET", Path: "/users/{{userId}}"},
				Assert:    []*suite.Assertion{statusAssert(200)},
			},
			{
				Name:      "deleteUser",
				Priority:  3,
				DependsOn: "getUser",
				Request:   suite.RequestSpec{Method: "DELETE", Path: "/users/{{userId}}"},
			},
		},
	}

	r := NewRunner(runnerConfig(server.URL), Options{})
	result, err := r.Run(s)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Passed)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 2, result.Skipped)
	assert.False(t, result.OK())

	assert.Equal(t, StatusFailed, result.Results[0].Status)
	assert.Equal(t, StatusSkipped, result.Results[1].Status)
	assert.Contains(t, result.Results[1].SkipReason, "createUser failed")
	// Transitive skip: deleteUser's dependency was itself skipped.
	assert.Equal(t, StatusSkipped, result.Results[2].Status)
	assert.Contains(t, result.Results[2].SkipReason, "was skipped")
}

func TestRun_IndependentScenariosStillRun(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := &suite.Suite{
		Scenarios: []*suite.Scenario{
			{
				Name:     "broken",
				Priority: 1,
				Request:  suite.RequestSpec{Method: "GET", Path: "/broken"},
				Assert:   []*suite.Assertion{statusAssert(200)},
			},
			{
				Name:     "healthy",
				Priority: 2,
				Request:  suite.RequestSpec{Method: "GET", Path: "/ok"},
				Assert:   []*suite.Assertion{statusAssert(200)},
			},
		},
	}

	r := NewRunner(runnerConfig(server.URL), Options{})
	result, err := r.Run(s)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.Passed)
}

func TestRun_Bail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	s := &suite.Suite{
		Scenarios: []*suite.Scenario{
			{Name: "first", Priority: 1, Request: suite.RequestSpec{Method: "GET", Path: "/a"}, Assert: []*suite.Assertion{statusAssert(200)}},
			{Name: "second", Priority: 2, Request: suite.RequestSpec{Method: "GET", Path: "/b"}},
		},
	}

	r := NewRunner(runnerConfig(server.URL), Options{Bail: true})
	result, err := r.Run(s)

	require.NoError(t, err)
	assert.Len(t, result.Results, 1)
	assert.Equal(t, 1, result.Failed)
}

func TestRun_NetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	s := &suite.Suite{
		Scenarios: []*suite.Scenario{
			{Name: "unreachable", Priority: 1, Request: suite.RequestSpec{Method: "GET", Path: "/"}},
		},
	}

	r := NewRunner(runnerConfig(url), Options{})
	result, err := r.Run(s)

	require.NoError(t, err)
	assert.Equal(t, StatusFailed, result.Results[0].Status)
	assert.Error(t, result.Results[0].Err)
}

func TestRun_SkipAnnotation(t *testing.T) {
	s := &suite.Suite{
		Scenarios: []*suite.Scenario{
			{Name: "wip", Priority: 1, Skip: "endpoint not deployed yet", Request: suite.RequestSpec{Method: "GET", Path: "/x"}},
		},
	}

	// No server needed: a skipped scenario never issues a call.
	r := NewRunner(runnerConfig("http://127.0.0.1:1"), Options{})
	result, err := r.Run(s)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, "endpoint not deployed yet", result.Results[0].SkipReason)
	assert.True(t, result.OK())
}

func TestRun_NoAssertionsDefaultsToSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	s := &suite.Suite{
		Scenarios: []*suite.Scenario{
			{Name: "teapot", Priority: 1, Request: suite.RequestSpec{Method: "GET", Path: "/"}},
		},
	}

	r := NewRunner(runnerConfig(server.URL), Options{})
	result, err := r.Run(s)

	require.NoError(t, err)
	assert.Equal(t, StatusFailed, result.Results[0].Status)
}

func TestRun_NameFilter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := &suite.Suite{
		Scenarios: []*suite.Scenario{
			{Name: "createUser", Priority: 1, Request: suite.RequestSpec{Method: "GET", Path: "/a"}},
			{Name: "listOrders", Priority: 2, Request: suite.RequestSpec{Method: "GET", Path: "/b"}},
		},
	}

	r := NewRunner(runnerConfig(server.URL), Options{NameFilter: "create*"})
	result, err := r.Run(s)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Passed)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, SkipReasonFiltered, result.Results[1].SkipReason)
}

func TestRun_PlanErrorSurfaces(t *testing.T) {
	s := &suite.Suite{
		Scenarios: []*suite.Scenario{
			{Name: "orphan", Priority: 1, DependsOn: "ghost", Request: suite.RequestSpec{Method: "GET", Path: "/x"}},
		},
	}

	r := NewRunner(runnerConfig("http://127.0.0.1:1"), Options{})
	_, err := r.Run(s)
	assert.ErrorContains(t, err, "ghost")
}

func TestRun_CaptureOverwritesWithinRun(t *testing.T) {
	server := usersServer(t)
	defer server.Close()

	s := &suite.Suite{
		Scenarios: []*suite.Scenario{
			{
				Name:     "createFirst",
				Priority: 1,
				Request:  suite.RequestSpec{Method: "POST", Path: "/users", Body: `{"name": "A"}`},
				Capture:  map[string]string{"userId": "body.id"},
			},
			{
				Name:      "createSecond",
				Priority:  2,
				DependsOn: "createFirst",
				Request:   suite.RequestSpec{Method: "POST", Path: "/users", Body: `{"name": "B"}`},
				Capture:   map[string]string{"userId": "body.id"},
			},
			{
				Name:      "getSecond",
				Priority:  3,
				DependsOn: "createSecond",
				Request:   suite.RequestSpec{Method: "GET", Path: "/users/{{userId}}"},
				Assert: []*suite.Assertion{
					statusAssert(200),
					{Subject: "body.name", Operator: suite.OpEquals, Expected: "B"},
				},
			},
		},
	}

	r := NewRunner(runnerConfig(server.URL), Options{})
	result, err := r.Run(s)

	require.NoError(t, err)
	assert.Equal(t, 3, result.Passed, "later capture must overwrite the earlier one")
	assert.Equal(t, "/users/43", result.Results[2].Request.Path)
}
