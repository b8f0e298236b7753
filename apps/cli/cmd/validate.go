package cmd

import (
	"fmt"
	"os"

	"github.com/chainspec/chainspec/packages/core/suite"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <suite|directory>...",
	Short: "Validate suite files without executing them",
	Long: `Validate parses suite files, checks scenario definitions and
resolves the execution plan (priorities, dependencies, cycles) without
sending a single request.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := collectFiles(args)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			os.Exit(ExitSuiteError)
		}
		if len(files) == 0 {
			fmt.Fprintln(cmd.ErrOrStderr(), "Error: no .yaml or .yml suite files found")
			os.Exit(ExitSuiteError)
		}

		invalid := 0
		for _, file := range files {
			s, err := suite.Load(file)
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "✗ %s: %v\n", file, err)
				invalid++
				continue
			}
			if _, err := suite.BuildPlan(s); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "✗ %s: %v\n", file, err)
				invalid++
				continue
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s (%d scenarios)\n", file, len(s.Scenarios))
		}

		if invalid > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "\n%d of %d files invalid\n", invalid, len(files))
			os.Exit(ExitSuiteError)
		}
		return nil
	},
}
