package report

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chainspec/chainspec/packages/core/runner"
	"github.com/chainspec/chainspec/packages/output"
	"github.com/google/uuid"
)

// Writer produces the report artifact: a uuid-named directory of structured
// result data under a base directory, consumed by an external report viewer.
// Each run directory contains run.json, junit.xml, and latency.json.
type Writer struct {
	baseDir string
}

func NewWriter(baseDir string) *Writer {
	return &Writer{baseDir: baseDir}
}

// RunDocument is the top-level schema of run.json.
type RunDocument struct {
	RunID       string             `json:"runId"`
	Environment string             `json:"environment"`
	Summary     output.JSONSummary `json:"summary"`
	Tests       []output.JSONTest  `json:"tests"`
	Duration    float64            `json:"duration"`
	Time        string             `json:"time"`
}

// Write renders the results of one invocation into a fresh run directory
// and returns its path.
func (w *Writer) Write(results []*runner.RunResult, totalDuration time.Duration) (string, error) {
	runID := uuid.NewString()
	dir := filepath.Join(w.baseDir, "run-"+runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}

	var tests []output.JSONTest
	var environment string
	stats := NewLatencyStats()
	junit := output.JUnitTestSuites{
		Name:      "chainspec",
		Timestamp: time.Now().Format(time.RFC3339),
		Time:      totalDuration.Seconds(),
	}

	for _, result := range results {
		environment = result.Environment
		tests = append(tests, output.ConvertTests(result)...)

		suite := output.BuildJUnitSuite(result)
		junit.Tests += suite.Tests
		junit.Failures += suite.Failures
		junit.Errors += suite.Errors
		junit.Skipped += suite.Skipped
		junit.TestSuites = append(junit.TestSuites, suite)

		for _, r := range result.Results {
			if r.Status != runner.StatusSkipped {
				stats.Record(r.Duration)
			}
		}
	}

	doc := RunDocument{
		RunID:       runID,
		Environment: environment,
		Summary:     output.Summarize(tests),
		Tests:       tests,
		Duration:    float64(totalDuration.Milliseconds()),
		Time:        time.Now().Format(time.RFC3339),
	}

	if err := writeJSON(filepath.Join(dir, "run.json"), doc); err != nil {
		return "", err
	}
	if err := writeJSON(filepath.Join(dir, "latency.json"), stats.Summarize()); err != nil {
		return "", err
	}
	if err := writeJUnit(filepath.Join(dir, "junit.xml"), junit); err != nil {
		return "", err
	}

	return dir, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

func writeJUnit(path string, suites output.JUnitTestSuites) error {
	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing junit.xml: %w", err)
	}
	content := append([]byte(xml.Header), data...)
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("writing junit.xml: %w", err)
	}
	return nil
}
