// Package cmd implements the chainspec CLI commands using Cobra.
//
// Available commands:
//   - run: Execute scenario suites against a configured environment
//   - validate: Check suite files and resolve the plan without executing
//   - list: Display the scenarios defined in suite files
//   - init: Create a new chainspec project with example files
//   - history: Show runs recorded in the history database
//   - version: Show chainspec version information
//
// The CLI supports flags for filtering, output formatting, report
// artifacts, run history, and watch mode for development workflows.
package cmd
