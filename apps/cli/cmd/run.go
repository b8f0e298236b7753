package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chainspec/chainspec/packages/core/config"
	"github.com/chainspec/chainspec/packages/core/runner"
	"github.com/chainspec/chainspec/packages/core/suite"
	"github.com/chainspec/chainspec/packages/db"
	"github.com/chainspec/chainspec/packages/output"
	"github.com/chainspec/chainspec/packages/report"
	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run <suite|directory>...",
	Short: "Run scenario suites against the configured environment",
	Long: `Run scenario suites defined in YAML files.

Examples:
  chainspec run suites/users.yaml --config env/dev.properties
  chainspec run ./suites/ --config env/staging.properties
  chainspec run suites/users.yaml --name "create*"
  chainspec run suites/ --tags smoke --output junit --output-file results.xml
  chainspec run suites/users.yaml --watch`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	configFlag     string
	nameFlag       string
	tagsFlag       string
	verboseFlag    int
	quietFlag      bool
	bailFlag       bool
	noColorFlag    bool
	dryRunFlag     bool
	outputFlag     string
	outputFileFlag string
	watchFlag      bool
	reportDirFlag  string
	historyDBFlag  string
)

func init() {
	runCmd.Flags().StringVarP(&configFlag, "config", "c", getEnvString("CHAINSPEC_CONFIG", "chainspec.properties"), "Path to the environment properties file (env: CHAINSPEC_CONFIG)")
	runCmd.Flags().StringVarP(&nameFlag, "name", "n", "", "Run only scenarios matching name pattern")
	runCmd.Flags().StringVarP(&tagsFlag, "tags", "t", getEnvString("CHAINSPEC_TAGS", ""), "Run only scenarios with specified tags (comma-separated) (env: CHAINSPEC_TAGS)")

	runCmd.Flags().CountVarP(&verboseFlag, "verbose", "v", "Verbose output")
	runCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", getEnvBool("CHAINSPEC_QUIET", false), "Suppress all output except errors (env: CHAINSPEC_QUIET)")
	runCmd.Flags().BoolVar(&noColorFlag, "no-color", getEnvBool("CHAINSPEC_NO_COLOR", false), "Disable colored output (env: CHAINSPEC_NO_COLOR)")
	runCmd.Flags().StringVarP(&outputFlag, "output", "o", getEnvString("CHAINSPEC_OUTPUT", "console"), "Output format: console, json, junit, tap (env: CHAINSPEC_OUTPUT)")
	runCmd.Flags().StringVar(&outputFileFlag, "output-file", getEnvString("CHAINSPEC_OUTPUT_FILE", ""), "Write output to file (default: stdout) (env: CHAINSPEC_OUTPUT_FILE)")

	runCmd.Flags().BoolVar(&bailFlag, "bail", getEnvBool("CHAINSPEC_BAIL", false), "Stop on first failure (env: CHAINSPEC_BAIL)")
	runCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Load and plan suites without executing")
	runCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch suite files for changes and re-run")

	runCmd.Flags().StringVar(&reportDirFlag, "report-dir", "", "Write a report artifact directory (overrides report.dir)")
	runCmd.Flags().StringVar(&historyDBFlag, "history-db", "", "Record the run in a SQLite history database (overrides history.db)")
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

// Formatter interface for all output formatters
type Formatter interface {
	FormatResult(result *runner.RunResult)
	FormatError(err error)
	FormatHeader(version string)
}

// Flushable interface for formatters that need to flush output
type Flushable interface {
	Flush(totalDuration time.Duration) error
}

func newFormatter(w *os.File) Formatter {
	switch strings.ToLower(outputFlag) {
	case "json":
		opts := []output.JSONOption{}
		if w != nil {
			opts = append(opts, output.JSONWithWriter(w))
		}
		return output.NewJSONFormatter(opts...)
	case "junit":
		opts := []output.JUnitOption{}
		if w != nil {
			opts = append(opts, output.JUnitWithWriter(w))
		}
		return output.NewJUnitFormatter(opts...)
	case "tap":
		opts := []output.TAPOption{}
		if w != nil {
			opts = append(opts, output.TAPWithWriter(w))
		}
		return output.NewTAPFormatter(opts...)
	default: // "console"
		consoleOpts := []output.ConsoleOption{
			output.WithVerbose(verboseFlag > 0),
			output.WithNoColor(noColorFlag || quietFlag),
		}
		if w != nil {
			consoleOpts = append(consoleOpts, output.WithWriter(w))
		}
		return output.NewConsoleFormatter(consoleOpts...)
	}
}

func runCommand(cmd *cobra.Command, args []string) error {
	// Configuration loads before anything else; a missing required key
	// aborts the suite with zero network calls made.
	cfg, err := config.Load(configFlag)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		os.Exit(ExitConfigError)
	}

	var outWriter *os.File
	if outputFileFlag != "" {
		outWriter, err = os.Create(outputFileFlag)
		if err != nil {
			return fmt.Errorf("cannot create output file: %w", err)
		}
		defer outWriter.Close()
	}

	formatter := newFormatter(outWriter)
	formatter.FormatHeader(version)

	files, err := collectFiles(args)
	if err != nil {
		formatter.FormatError(err)
		os.Exit(ExitSuiteError)
	}
	if len(files) == 0 {
		formatter.FormatError(fmt.Errorf("no .yaml or .yml suite files found"))
		os.Exit(ExitSuiteError)
	}

	var tagsFilter []string
	if tagsFlag != "" {
		for _, t := range strings.Split(tagsFlag, ",") {
			t = strings.TrimSpace(t)
			if t != "" {
				tagsFilter = append(tagsFilter, t)
			}
		}
	}

	opts := runner.Options{
		NameFilter: nameFlag,
		TagsFilter: tagsFilter,
		Bail:       bailFlag,
	}
	r := runner.NewRunner(cfg, opts)

	reportDir := cfg.ReportDir
	if reportDirFlag != "" {
		reportDir = reportDirFlag
	}
	historyDB := cfg.HistoryDB
	if historyDBFlag != "" {
		historyDB = historyDBFlag
	}

	runSuites := func(formatter Formatter) (results []*runner.RunResult, failed int, duration time.Duration) {
		startTime := time.Now()

		for _, file := range files {
			s, err := suite.Load(file)
			if err != nil {
				formatter.FormatError(err)
				failed++
				if bailFlag {
					break
				}
				continue
			}

			if dryRunFlag {
				plan, err := suite.BuildPlan(s)
				if err != nil {
					formatter.FormatError(err)
					failed++
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Would run %s:\n", file)
				for _, sc := range plan {
					fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", sc.Name)
				}
				continue
			}

			result, err := r.Run(s)
			if err != nil {
				formatter.FormatError(err)
				failed++
				if bailFlag {
					break
				}
				continue
			}

			formatter.FormatResult(result)
			results = append(results, result)
			failed += result.Failed

			if bailFlag && result.Failed > 0 {
				break
			}
		}

		return results, failed, time.Since(startTime)
	}

	results, totalFailed, totalDuration := runSuites(formatter)

	if flushable, ok := formatter.(Flushable); ok {
		if err := flushable.Flush(totalDuration); err != nil {
			return fmt.Errorf("error writing output: %w", err)
		}
	}

	if !dryRunFlag {
		if err := persistRun(cmd, results, totalDuration, reportDir, historyDB); err != nil {
			formatter.FormatError(err)
			os.Exit(ExitSuiteError)
		}
	}

	if !watchFlag {
		if totalFailed > 0 {
			os.Exit(ExitScenarioFailure)
		}
		return nil
	}

	return watchAndRerun(cmd, files, func() {
		formatter := newFormatter(nil)
		results, _, duration := runSuites(formatter)
		if flushable, ok := formatter.(Flushable); ok {
			_ = flushable.Flush(duration)
		}
		_ = persistRun(cmd, results, duration, reportDir, historyDB)
	})
}

// persistRun writes the report artifact and records history, when either is
// configured.
func persistRun(cmd *cobra.Command, results []*runner.RunResult, duration time.Duration, reportDir, historyDB string) error {
	if len(results) == 0 {
		return nil
	}

	if reportDir != "" {
		dir, err := report.NewWriter(reportDir).Write(results, duration)
		if err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		if !quietFlag {
			fmt.Fprintf(cmd.OutOrStdout(), "\nReport written to %s\n", dir)
		}
	}

	if historyDB != "" {
		history, err := db.Open(historyDB)
		if err != nil {
			return fmt.Errorf("opening history database: %w", err)
		}
		defer history.Close()

		for _, result := range results {
			if err := history.RecordRun(uuid.NewString(), result); err != nil {
				return fmt.Errorf("recording history: %w", err)
			}
		}
	}

	return nil
}

func watchAndRerun(cmd *cobra.Command, files []string, rerun func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	watchedDirs := make(map[string]bool)
	for _, file := range files {
		dir := filepath.Dir(file)
		if !watchedDirs[dir] {
			if err := watcher.Add(dir); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "failed to watch %s: %v\n", dir, err)
			}
			watchedDirs[dir] = true
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n\n")

	var debounceTimer *time.Timer

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if event.Has(fsnotify.Write) && isSuiteFile(event.Name) {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
					fmt.Fprintf(cmd.OutOrStdout(), "\n\nFile changed: %s\nRe-running suites...\n\n", event.Name)
					rerun()
					fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n")
				})
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "watcher error: %v\n", err)
		}
	}
}

func collectFiles(args []string) ([]string, error) {
	var files []string

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}

		if info.IsDir() {
			err := filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && isSuiteFile(path) {
					files = append(files, path)
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
			continue
		}

		files = append(files, arg)
	}

	return files, nil
}

func isSuiteFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
