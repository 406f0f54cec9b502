package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"bslint/internal/diag"
	"bslint/internal/diagfmt"
	"bslint/internal/source"
)

// loadInput reads the single file argument of tokenize and parse; "-" reads
// standard input as a virtual Module.bsl.
func loadInput(cmd *cobra.Command, arg string) (*source.FileSet, *source.File, error) {
	fs := source.NewFileSet()
	if arg == "-" {
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		id := fs.AddVirtual("Module.bsl", content)
		return fs, fs.Get(id), nil
	}
	id, err := fs.Load(arg)
	if err != nil {
		return nil, nil, err
	}
	return fs, fs.Get(id), nil
}

// syntaxBag is the bag for lexer and parser errors, capped by --max-diagnostics.
func syntaxBag(cmd *cobra.Command) (*diag.Bag, error) {
	n, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return nil, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	if n < 0 {
		return nil, fmt.Errorf("--max-diagnostics must not be negative")
	}
	return diag.NewBag(n), nil
}

// printSyntax writes the syntax errors to stderr, keeping stdout for the dump.
func printSyntax(cmd *cobra.Command, bag *diag.Bag, fs *source.FileSet) error {
	if bag.Len() == 0 {
		return nil
	}
	colored, err := useColor(cmd, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	bag.Sort()
	diagfmt.Pretty(cmd.ErrOrStderr(), bag, fs, diagfmt.PrettyOpts{Color: colored, Context: 1, ShowNotes: true})
	return nil
}
