package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/chainspec/chainspec/packages/core/suite"
	"github.com/spf13/cobra"
)

var listPlanFlag bool

var listCmd = &cobra.Command{
	Use:   "list <suite|directory>...",
	Short: "List the scenarios in suite files",
	Long: `List prints every scenario with its priority, dependency and tags.
With --plan the scenarios are printed in the order they would execute.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files, err := collectFiles(args)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
			os.Exit(ExitSuiteError)
		}

		for _, file := range files {
			s, err := suite.Load(file)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s: %v\n", file, err)
				os.Exit(ExitSuiteError)
			}

			scenarios := s.Scenarios
			if listPlanFlag {
				plan, err := suite.BuildPlan(s)
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Error: %s: %v\n", file, err)
					os.Exit(ExitSuiteError)
				}
				scenarios = plan
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", s.Name, file)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
			fmt.Fprintln(w, "  NAME\tPRIORITY\tMETHOD\tPATH\tDEPENDS ON\tTAGS")
			for _, sc := range scenarios {
				fmt.Fprintf(w, "  %s\t%d\t%s\t%s\t%s\t%s\n",
					sc.Name,
					sc.Priority,
					sc.Request.Method,
					sc.Request.Path,
					sc.DependsOn,
					strings.Join(sc.Tags, ", "))
			}
			w.Flush()
			fmt.Fprintln(cmd.OutOrStdout())
		}
		return nil
	},
}

func init() {
	listCmd.Flags().BoolVar(&listPlanFlag, "plan", false, "Print scenarios in execution order")
}
