package runner

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/chainspec/chainspec/packages/assertions"
	"github.com/chainspec/chainspec/packages/capture"
	"github.com/chainspec/chainspec/packages/core/config"
	"github.com/chainspec/chainspec/packages/core/suite"
	"github.com/chainspec/chainspec/packages/http"
)

// Status is a scenario's terminal state.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// SkipReasonFiltered marks scenarios excluded by name or tag filters, as
// opposed to skips the suite itself caused. Formatters elide it.
const SkipReasonFiltered = "filtered out"

// Runner executes a suite's scenarios strictly sequentially, in plan order,
// threading captured values from each successful scenario to its dependents.
type Runner struct {
	client *http.Client
	cfg    *config.Config
	opts   Options
}

// Options tune a run without touching the environment configuration.
type Options struct {
	NameFilter string
	TagsFilter []string
	Bail       bool
}

func NewRunner(cfg *config.Config, opts Options, clientOpts ...http.ClientOption) *Runner {
	return &Runner{
		client: http.NewClient(cfg, clientOpts...),
		cfg:    cfg,
		opts:   opts,
	}
}

// RunResult is the ordered outcome log of one suite run.
type RunResult struct {
	Suite       string
	Path        string
	Environment string
	Results     []*ScenarioResult
	Duration    time.Duration
	Passed      int
	Failed      int
	Skipped     int
}

// OK reports whether the run had no failures. Skipped scenarios do not fail
// a run.
func (r *RunResult) OK() bool {
	return r.Failed == 0
}

// ScenarioResult holds one scenario's terminal status and the evidence
// behind it.
type ScenarioResult struct {
	Name       string
	Status     Status
	SkipReason string
	Duration   time.Duration
	Request    *http.Request
	Response   *http.Response
	Assertions []*assertions.Result
	Captures   map[string]any
	Err        error
}

// Run builds the suite's plan and executes it. The captured-value store is
// scoped to this call and discarded when it returns.
func (r *Runner) Run(s *suite.Suite) (*RunResult, error) {
	plan, err := suite.BuildPlan(s)
	if err != nil {
		return nil, fmt.Errorf("building plan: %w", err)
	}

	start := time.Now()
	result := &RunResult{
		Suite:       s.Name,
		Path:        s.Path,
		Environment: r.cfg.Environment,
	}

	baseDir := filepath.Dir(s.Path)
	store := capture.NewStore()
	resolver := capture.NewResolver(store)

	statuses := make(map[string]Status, len(plan))

	for _, sc := range plan {
		scResult := r.dispatch(sc, statuses, store, resolver, baseDir)
		result.Results = append(result.Results, scResult)
		statuses[sc.Name] = scResult.Status

		switch scResult.Status {
		case StatusPassed:
			result.Passed++
		case StatusFailed:
			result.Failed++
		case StatusSkipped:
			result.Skipped++
		}

		if r.opts.Bail && scResult.Status == StatusFailed {
			break
		}
	}

	result.Duration = time.Since(start)
	return result, nil
}

// dispatch decides whether a scenario runs at all, then executes it.
func (r *Runner) dispatch(sc *suite.Scenario, statuses map[string]Status, store *capture.Store, resolver *capture.Resolver, baseDir string) *ScenarioResult {
	if !r.matchesFilters(sc) {
		return &ScenarioResult{
			Name:       sc.Name,
			Status:     StatusSkipped,
			SkipReason: SkipReasonFiltered,
		}
	}

	if sc.Skip != "" {
		return &ScenarioResult{
			Name:       sc.Name,
			Status:     StatusSkipped,
			SkipReason: sc.Skip,
		}
	}

	if sc.DependsOn != "" {
		depStatus, ran := statuses[sc.DependsOn]
		if !ran || depStatus != StatusPassed {
			reason := "dependency " + sc.DependsOn + " failed"
			if !ran {
				reason = "dependency " + sc.DependsOn + " did not run"
			} else if depStatus == StatusSkipped {
				reason = "dependency " + sc.DependsOn + " was skipped"
			}
			return &ScenarioResult{
				Name:       sc.Name,
				Status:     StatusSkipped,
				SkipReason: reason,
			}
		}
	}

	return r.execute(sc, store, resolver, baseDir)
}

func (r *Runner) execute(sc *suite.Scenario, store *capture.Store, resolver *capture.Resolver, baseDir string) *ScenarioResult {
	result := &ScenarioResult{
		Name:     sc.Name,
		Captures: make(map[string]any),
	}

	req := buildRequest(sc, resolver)
	result.Request = req

	start := time.Now()
	resp, err := r.client.Do(req)
	result.Duration = time.Since(start)

	if err != nil {
		result.Err = err
		result.Status = StatusFailed
		return result
	}
	result.Response = resp

	passed := true
	if len(sc.Assert) > 0 {
		result.Assertions = assertions.EvaluateAll(resp, sc.Assert, baseDir)
		for _, a := range result.Assertions {
			if !a.Passed {
				passed = false
			}
		}
	} else {
		passed = resp.IsSuccess()
	}

	if !passed {
		result.Status = StatusFailed
		return result
	}
	result.Status = StatusPassed

	// Captures publish only on success, so a dependent never sees values
	// from a failed predecessor.
	if len(sc.Capture) > 0 {
		for name, value := range capture.ExtractAll(resp, sc.Capture) {
			result.Captures[name] = value
			store.Set(name, value)
		}
	}

	return result
}

func buildRequest(sc *suite.Scenario, resolver *capture.Resolver) *http.Request {
	req := http.NewRequest(sc.Request.Method, resolver.Resolve(sc.Request.Path))
	for k, v := range resolver.ResolveAll(sc.Request.Headers) {
		req.SetHeader(k, v)
	}
	if sc.Request.Body != "" {
		req.SetBody(resolver.Resolve(sc.Request.Body))
	}
	return req
}

func (r *Runner) matchesFilters(sc *suite.Scenario) bool {
	if r.opts.NameFilter != "" && !matchesPattern(sc.Name, r.opts.NameFilter) {
		return false
	}
	if len(r.opts.TagsFilter) > 0 && !hasAnyTag(sc.Tags, r.opts.TagsFilter) {
		return false
	}
	return true
}

func matchesPattern(name, pattern string) bool {
	if pattern == "" {
		return true
	}

	if pattern[0] == '*' && pattern[len(pattern)-1] == '*' {
		substr := pattern[1 : len(pattern)-1]
		for i := 0; i <= len(name)-len(substr); i++ {
			if name[i:i+len(substr)] == substr {
				return true
			}
		}
		return false
	}

	if pattern[0] == '*' {
		suffix := pattern[1:]
		return len(name) >= len(suffix) && name[len(name)-len(suffix):] == suffix
	}

	if pattern[len(pattern)-1] == '*' {
		prefix := pattern[:len(pattern)-1]
		return len(name) >= len(prefix) && name[:len(prefix)] == prefix
	}

	return name == pattern
}

func hasAnyTag(tags []string, filters []string) bool {
	for _, filter := range filters {
		for _, tag := range tags {
			if tag == filter {
				return true
			}
		}
	}
	return false
}
