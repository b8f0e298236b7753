package cmd

import (
	"errors"
	"os"

	"github.com/chainspec/chainspec/packages/core/config"
	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "chainspec",
	Short: "Declarative API scenario suites with request chaining.",
	Long: `chainspec runs declarative HTTP scenario suites against a REST service.
Suites are plain YAML files: ordered scenarios with assertions, where a
scenario can capture a value (say, a created resource id) and hand it to
the scenarios that depend on it.`,
}

func Execute(v, bt string) {
	version = v
	buildTime = bt
	if err := rootCmd.Execute(); err != nil {
		var missing *config.MissingKeyError
		if errors.As(err, &missing) {
			os.Exit(ExitConfigError)
		}
		os.Exit(ExitUsageError)
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}
