package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"bslint/internal/diagfmt"
	"bslint/internal/driver"
	"bslint/internal/fix"
	"bslint/internal/version"
)

var fixCmd = &cobra.Command{
	Use:   "fix [flags] <file.bsl|directory>",
	Short: "Apply quick fixes to a BSL file or directory",
	Long:  "Run the rules with quick fixes enabled and apply them according to the chosen strategy.",
	Args:  cobra.ExactArgs(1),
	RunE:  runFix,
}

func init() {
	fixCmd.Flags().Bool("all", false, "apply all safe fixes")
	fixCmd.Flags().Bool("once", false, "apply the first available fix (default)")
	fixCmd.Flags().String("id", "", "apply fix with a specific identifier")
	fixCmd.Flags().Bool("preview", false, "print a unified diff instead of writing files")
	fixCmd.Flags().StringSlice("only", nil, "take fixes only from these rule ids")
	fixCmd.Flags().Int("jobs", 0, "max parallel workers for directory processing (0=auto)")
	fixCmd.MarkFlagsMutuallyExclusive("all", "once", "id")
}

// fixFlags: --all, --once and --id are exclusive, cobra enforces it.
type fixFlags struct {
	all     bool
	id      string
	preview bool
	only    []string
	jobs    int
}

func (f fixFlags) applyOptions() fix.ApplyOptions {
	opts := fix.ApplyOptions{Mode: fix.ApplyModeOnce, TargetID: f.id, DryRun: f.preview}
	switch {
	case f.id != "":
		opts.Mode = fix.ApplyModeID
	case f.all:
		opts.Mode = fix.ApplyModeAll
	}
	return opts
}

func readFixFlags(cmd *cobra.Command) (fixFlags, error) {
	var f fixFlags
	var err error
	flags := cmd.Flags()
	if f.all, err = flags.GetBool("all"); err != nil {
		return f, err
	}
	if f.id, err = flags.GetString("id"); err != nil {
		return f, err
	}
	if f.preview, err = flags.GetBool("preview"); err != nil {
		return f, err
	}
	if f.only, err = flags.GetStringSlice("only"); err != nil {
		return f, err
	}
	if f.jobs, err = flags.GetInt("jobs"); err != nil {
		return f, err
	}
	return f, nil
}

func runFix(cmd *cobra.Command, args []string) error {
	defer dumpTraceOnPanic()

	flags, err := readFixFlags(cmd)
	if err != nil {
		return err
	}
	opts := flags.applyOptions()

	target, isDir, err := statTarget(args[0])
	if err != nil {
		return fmt.Errorf("fix: %w", err)
	}
	// id уникален только в пределах одного файла
	if isDir && flags.id != "" {
		return fmt.Errorf("fix: id can only be used with a single file")
	}
	cfg, err := loadConfig(cmd, target, isDir)
	if err != nil {
		return err
	}

	cleanup, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	res, err := driver.Analyze(cmd.Context(), target, isDir, driver.Options{
		Config:      cfg,
		Only:        flags.only,
		Jobs:        flags.jobs,
		Fixes:       true,
		ToolVersion: version.Version,
	})
	if err != nil {
		return fmt.Errorf("fix: analysis failed: %w", err)
	}
	if res.Canceled() {
		return fmt.Errorf("fix canceled: %w", cmd.Context().Err())
	}

	applied, applyErr := fix.Apply(res.FileSet, res.Diagnostics(), opts)
	return handleApplyResult(cmd.OutOrStdout(), applied, applyErr, flags.preview)
}

func handleApplyResult(out io.Writer, res *fix.ApplyResult, applyErr error, preview bool) error {
	if res == nil {
		return applyErr
	}

	if len(res.Applied) > 0 {
		verb := "Applied"
		if preview {
			verb = "Would apply"
		}
		fmt.Fprintf(out, "%s %d fix(es):\n", verb, len(res.Applied))
		for _, item := range res.Applied {
			location := item.PrimaryPath
			if location == "" {
				location = "(unknown location)"
			}
			fmt.Fprintf(out, "  %s [%s] %s: %s (%d edits, %s)\n",
				item.Title, item.ID, item.Code, location, item.EditCount, item.Applicability.String())
		}
	}

	if len(res.FileChanges) > 0 {
		if preview {
			for _, change := range res.FileChanges {
				text, err := diagfmt.UnifiedDiff(change.Path, change.Before, change.After)
				if err != nil {
					return fmt.Errorf("fix: diff %s: %w", change.Path, err)
				}
				fmt.Fprint(out, text)
			}
		} else {
			fmt.Fprintln(out, "Updated files:")
			for _, change := range res.FileChanges {
				fmt.Fprintf(out, "  %s (%d edits)\n", change.Path, change.EditCount)
			}
		}
	}

	if len(res.Skipped) > 0 {
		fmt.Fprintln(out, "Skipped fixes:")
		for _, skip := range res.Skipped {
			id := skip.ID
			if id == "" {
				id = "(unnamed)"
			}
			if skip.Title != "" {
				fmt.Fprintf(out, "  %s [%s]: %s\n", skip.Title, id, skip.Reason)
			} else {
				fmt.Fprintf(out, "  [%s]: %s\n", id, skip.Reason)
			}
		}
	}

	if applyErr != nil {
		if errors.Is(applyErr, fix.ErrNoFixes) && len(res.Applied) == 0 {
			fmt.Fprintln(out, "No applicable fixes found.")
			return nil
		}
		return applyErr
	}

	if len(res.Applied) == 0 {
		fmt.Fprintln(out, "No fixes applied.")
	}
	return nil
}
