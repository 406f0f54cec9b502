package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bslint/internal/diag"
	"bslint/internal/diagfmt"
	"bslint/internal/parser"
)

var parseCmd = &cobra.Command{
	Use:   "parse [flags] file.bsl|-",
	Short: "Parse a BSL source file and dump its syntax tree",
	Long: `Parse builds the concrete syntax tree of a module and prints it. Syntax errors
go to stderr; the tree is printed anyway, with Error nodes where recovery happened.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	parseCmd.Flags().String("format", "tree", "output format (tree|sexpr|json)")
}

func runParse(cmd *cobra.Command, args []string) error {
	formatStr, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	format, err := diagfmt.ParseTreeFormat(formatStr)
	if err != nil {
		return err
	}
	bag, err := syntaxBag(cmd)
	if err != nil {
		return err
	}
	fs, file, err := loadInput(cmd, args[0])
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}

	res := parser.ParseFile(file, parser.Options{MaxErrors: uint(bag.Limit()), Reporter: diag.BagReporter{Bag: bag}})
	if err := diagfmt.FormatTree(cmd.OutOrStdout(), res.Tree.Root, file, format); err != nil {
		return err
	}
	if err := printSyntax(cmd, bag, fs); err != nil {
		return err
	}
	if bag.HasErrors() {
		return errFindings
	}
	return nil
}
