// Package report writes the per-run artifact directory.
//
// Each invocation with reporting enabled produces a run-<uuid> directory
// containing run.json (full structured results), junit.xml (for CI), and
// latency.json (duration percentiles). The directory's schema is what the
// external report viewer consumes.
package report
