package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bslint/internal/diag"
	"bslint/internal/diagfmt"
	"bslint/internal/lexer"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] file.bsl|-",
	Short: "Tokenize a BSL source file",
	Long: `Tokenize prints the tokens of a module. Hidden tokens (whitespace, newlines,
comments) are shown with --hidden; lexical errors go to stderr.`,
	Args: cobra.ExactArgs(1),
	RunE: runTokenize,
}

func init() {
	tokenizeCmd.Flags().String("format", "pretty", "output format (pretty|json)")
	tokenizeCmd.Flags().Bool("hidden", false, "include whitespace, newlines and comments")
}

func runTokenize(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	hidden, err := cmd.Flags().GetBool("hidden")
	if err != nil {
		return fmt.Errorf("failed to get hidden flag: %w", err)
	}
	bag, err := syntaxBag(cmd)
	if err != nil {
		return err
	}
	fs, file, err := loadInput(cmd, args[0])
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}

	tokens := lexer.Tokenize(file, lexer.Options{Reporter: diag.BagReporter{Bag: bag}})
	if err := printSyntax(cmd, bag, fs); err != nil {
		return err
	}
	switch format {
	case "pretty":
		return diagfmt.FormatTokensPretty(cmd.OutOrStdout(), tokens, fs, hidden)
	case "json":
		return diagfmt.FormatTokensJSON(cmd.OutOrStdout(), tokens, hidden)
	}
	return fmt.Errorf("unknown format: %s", format)
}
