package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"bslint/internal/config"
	"bslint/internal/diag"
	"bslint/internal/diagfmt"
	"bslint/internal/driver"
	"bslint/internal/version"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file.bsl|directory|->",
	Short: "Run the rules on a BSL file or directory",
	Long: `Run the configured rules on a single module, on every *.bsl/*.os file of a
directory, or on standard input ("-", see --stdin-name). Exits with code 1 when a
finding reaches --fail-on.`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|short|golden|json|sarif)")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	checkCmd.Flags().Bool("parallel-rules", false, "also run the rules of one file concurrently")
	checkCmd.Flags().StringSlice("only", nil, "run only these rule ids")
	checkCmd.Flags().String("ui", "off", "progress UI mode (auto|on|off)")
	checkCmd.Flags().String("fail-on", "error", "lowest severity that fails the run (hint|info|warning|error|none)")
	checkCmd.Flags().Bool("with-notes", false, "include related locations in output")
	checkCmd.Flags().Bool("suggest", false, "include fix suggestions in output")
	checkCmd.Flags().Bool("preview", false, "show how fixes would change the lines")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths instead of paths relative to the configuration root")
	checkCmd.Flags().String("path-mode", "relative", "how paths are printed (relative|absolute|basename|auto); --fullpath means absolute")
	checkCmd.Flags().Bool("cache", false, "reuse results from the on-disk cache")
	checkCmd.Flags().Bool("clear-cache", false, "drop the on-disk cache before the run")
	checkCmd.Flags().String("stdin-name", "Module.bsl", "file name used for standard input")
}

// checkFlags is everything runCheck reads from the command line.
type checkFlags struct {
	format        string
	jobs          int
	parallelRules bool
	only          []string
	ui            uiMode
	failOn        diag.Severity
	failNever     bool
	withNotes     bool
	suggest       bool
	preview       bool
	paths         diagfmt.PathMode
	cache         bool
	clearCache    bool
	stdinName     string
	maxDiags      int
	timings       bool
	quiet         bool
}

func readCheckFlags(cmd *cobra.Command) (checkFlags, error) {
	var f checkFlags
	var err error
	flags := cmd.Flags()
	if f.format, err = flags.GetString("format"); err != nil {
		return f, fmt.Errorf("failed to get format flag: %w", err)
	}
	switch f.format {
	case "pretty", "short", "golden", "json", "sarif":
	default:
		return f, fmt.Errorf("unknown format: %s", f.format)
	}
	if f.jobs, err = flags.GetInt("jobs"); err != nil {
		return f, fmt.Errorf("failed to get jobs flag: %w", err)
	}
	if f.parallelRules, err = flags.GetBool("parallel-rules"); err != nil {
		return f, fmt.Errorf("failed to get parallel-rules flag: %w", err)
	}
	if f.only, err = flags.GetStringSlice("only"); err != nil {
		return f, fmt.Errorf("failed to get only flag: %w", err)
	}
	uiStr, err := flags.GetString("ui")
	if err != nil {
		return f, fmt.Errorf("failed to get ui flag: %w", err)
	}
	if f.ui, err = readUIMode(uiStr); err != nil {
		return f, err
	}
	failOn, err := flags.GetString("fail-on")
	if err != nil {
		return f, fmt.Errorf("failed to get fail-on flag: %w", err)
	}
	if failOn == "none" {
		f.failNever = true
	} else if sev, ok := diag.ParseSeverity(failOn); ok {
		f.failOn = sev
	} else {
		return f, fmt.Errorf("invalid --fail-on value %q", failOn)
	}
	if f.withNotes, err = flags.GetBool("with-notes"); err != nil {
		return f, fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	if f.suggest, err = flags.GetBool("suggest"); err != nil {
		return f, fmt.Errorf("failed to get suggest flag: %w", err)
	}
	if f.preview, err = flags.GetBool("preview"); err != nil {
		return f, fmt.Errorf("failed to get preview flag: %w", err)
	}
	fullPath, err := flags.GetBool("fullpath")
	if err != nil {
		return f, fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	pathMode, err := flags.GetString("path-mode")
	if err != nil {
		return f, fmt.Errorf("failed to get path-mode flag: %w", err)
	}
	if f.paths, err = diagfmt.ParsePathMode(pathMode); err != nil {
		return f, fmt.Errorf("invalid --path-mode: %w", err)
	}
	if fullPath {
		f.paths = diagfmt.PathModeAbsolute
	}
	if f.cache, err = flags.GetBool("cache"); err != nil {
		return f, fmt.Errorf("failed to get cache flag: %w", err)
	}
	if f.clearCache, err = flags.GetBool("clear-cache"); err != nil {
		return f, fmt.Errorf("failed to get clear-cache flag: %w", err)
	}
	if f.stdinName, err = flags.GetString("stdin-name"); err != nil {
		return f, fmt.Errorf("failed to get stdin-name flag: %w", err)
	}
	if f.maxDiags, err = cmd.Root().PersistentFlags().GetInt("max-diagnostics"); err != nil {
		return f, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if f.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return f, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if f.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return f, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	return f, nil
}

// runCheck executes the "check" command: it analyses the target, prints the
// findings in the chosen format and fails when one reaches --fail-on.
func runCheck(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	flags, err := readCheckFlags(cmd)
	if err != nil {
		return err
	}

	cleanup, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	started := time.Now()
	var res *driver.Result
	if args[0] == "-" {
		res, err = checkStdin(cmd, flags)
	} else {
		res, err = checkPath(cmd, args[0], flags)
	}
	if err != nil {
		return err
	}
	if res.Canceled() {
		return fmt.Errorf("check canceled: %w", cmd.Context().Err())
	}

	out := cmd.OutOrStdout()
	if err := renderCheck(cmd, out, res, flags); err != nil {
		return err
	}
	errOut := cmd.ErrOrStderr()
	reportProblems(errOut, res)
	if flags.timings {
		printTimings(errOut, res, time.Since(started))
	}
	if !flags.quiet && flags.format == "pretty" {
		fmt.Fprintln(errOut, summaryLine(res))
	}

	if !flags.failNever && res.Count(flags.failOn) > 0 {
		return errFindings
	}
	return nil
}

func driverOptions(cfg *config.Config, flags checkFlags, withFixes bool) driver.Options {
	return driver.Options{
		Config:         cfg,
		Only:           flags.only,
		Jobs:           flags.jobs,
		ParallelRules:  flags.parallelRules,
		Fixes:          withFixes,
		MaxDiagnostics: flags.maxDiags,
		ToolVersion:    version.Version,
	}
}

func checkStdin(cmd *cobra.Command, flags checkFlags) (*driver.Result, error) {
	content, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("failed to read stdin: %w", err)
	}
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(cmd, wd, true)
	if err != nil {
		return nil, err
	}
	opts := driverOptions(cfg, flags, flags.suggest || flags.preview)
	return driver.AnalyzeSource(cmd.Context(), filepath.Join(wd, flags.stdinName), content, opts)
}

func checkPath(cmd *cobra.Command, arg string, flags checkFlags) (*driver.Result, error) {
	target, isDir, err := statTarget(arg)
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(cmd, target, isDir)
	if err != nil {
		return nil, err
	}
	opts := driverOptions(cfg, flags, flags.suggest || flags.preview)

	if flags.cache || flags.clearCache {
		cache, err := driver.OpenDiskCache("bslint")
		if err != nil {
			return nil, fmt.Errorf("failed to open cache: %w", err)
		}
		if flags.clearCache {
			if err := cache.DropAll(); err != nil {
				return nil, fmt.Errorf("failed to clear cache: %w", err)
			}
		}
		if flags.cache {
			opts.Cache = cache
		}
	}

	if isDir && shouldUseTUI(flags.ui) {
		files, err := driver.ListFiles(target, cfg)
		if err != nil {
			return nil, err
		}
		if len(files) > 0 {
			return runAnalyzeWithUI(cmd.Context(), "bslint check", files, target, isDir, opts)
		}
	}
	res, err := driver.Analyze(cmd.Context(), target, isDir, opts)
	if err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}
	return res, nil
}

func renderCheck(cmd *cobra.Command, w io.Writer, res *driver.Result, flags checkFlags) error {
	bag := diag.NewBag(0)
	bag.AddAll(res.Diagnostics())
	showFixes := flags.suggest || flags.preview

	switch flags.format {
	case "pretty":
		colored, err := useColor(cmd, w)
		if err != nil {
			return err
		}
		diagfmt.Pretty(w, bag, res.FileSet, diagfmt.PrettyOpts{
			Color:       colored,
			Context:     1,
			PathMode:    flags.paths,
			ShowNotes:   flags.withNotes,
			ShowFixes:   showFixes,
			ShowPreview: flags.preview,
		})
		return nil
	case "short":
		diagfmt.Short(w, bag, res.FileSet, flags.paths)
		return nil
	case "golden":
		// позиции в рунах, пути от корня: вывод можно сравнивать между машинами
		out := diag.Golden(bag.Items(), res.FileSet, diag.GoldenOptions{Notes: flags.withNotes, Fixes: showFixes})
		if out != "" {
			fmt.Fprintln(w, out)
		}
		return nil
	case "json":
		jsonOpts := diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         flags.paths,
			IncludeNotes:     flags.withNotes,
			IncludeFixes:     showFixes,
			IncludePreviews:  flags.preview,
		}
		if len(res.Files) == 1 {
			return diagfmt.JSON(w, bag, res.FileSet, jsonOpts)
		}
		output := make(map[string]diagfmt.DiagnosticsOutput, len(res.Files))
		for _, f := range res.Files {
			fileBag := diag.NewBag(0)
			fileBag.AddAll(f.Diagnostics)
			output[displayName(f)] = diagfmt.BuildDiagnosticsOutput(fileBag, res.FileSet, jsonOpts)
		}
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(output); err != nil {
			return fmt.Errorf("failed to encode diagnostics output: %w", err)
		}
		return nil
	case "sarif":
		return diagfmt.Sarif(w, bag, res.FileSet, diagfmt.SarifRunMeta{
			ToolName:       "bslint",
			ToolVersion:    version.Version,
			InvocationArgs: os.Args[1:],
		})
	}
	return fmt.Errorf("unknown format: %s", flags.format)
}

// reportProblems prints rule faults and configuration issues; each issue
// once per rule and parameter.
func reportProblems(w io.Writer, res *driver.Result) {
	for _, f := range res.Faults() {
		fmt.Fprintf(w, "warning: %v\n", f)
	}
	seen := make(map[string]bool)
	var lines []string
	for _, f := range res.Files {
		for _, is := range f.Issues {
			line := fmt.Sprintf("config: %s: %v", is.RuleID, is.ParamIssue)
			if !seen[line] {
				seen[line] = true
				lines = append(lines, line)
			}
		}
	}
	sort.Strings(lines)
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}

func summaryLine(res *driver.Result) string {
	files := 0
	cached := 0
	for _, f := range res.Files {
		if len(f.Diagnostics) > 0 {
			files++
		}
		if f.Cached {
			cached++
		}
	}
	total := res.Count(diag.SevHint)
	line := fmt.Sprintf("%d problem(s) in %d of %d file(s)", total, files, len(res.Files))
	if cached > 0 {
		line += fmt.Sprintf(", %d from cache", cached)
	}
	return line
}
