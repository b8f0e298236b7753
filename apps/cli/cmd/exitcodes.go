package cmd

// Exit codes for the chainspec CLI
const (
	// ExitSuccess indicates all scenarios passed (or were acceptably skipped)
	ExitSuccess = 0

	// ExitScenarioFailure indicates one or more scenarios failed
	ExitScenarioFailure = 1

	// ExitSuiteError indicates a suite file could not be loaded or planned
	ExitSuiteError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)
