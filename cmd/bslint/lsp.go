package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"bslint/internal/lsp"
	"bslint/internal/version"
)

var lspCmd = &cobra.Command{
	Use:   "lsp",
	Short: "Run the bslint language server over stdio",
	Long: `Run a Language Server Protocol server on stdin/stdout. Open documents are
checked as they change; quick fixes are offered as code actions.`,
	Args: cobra.NoArgs,
	RunE: runLSP,
}

func init() {
	lspCmd.Flags().Duration("debounce", 0, "delay before re-checking an edited document (0 = 300ms)")
	lspCmd.Flags().Bool("log", false, "write server log to stderr")
}

func runLSP(cmd *cobra.Command, _ []string) error {
	debounce, err := cmd.Flags().GetDuration("debounce")
	if err != nil {
		return fmt.Errorf("failed to get debounce flag: %w", err)
	}
	withLog, err := cmd.Flags().GetBool("log")
	if err != nil {
		return fmt.Errorf("failed to get log flag: %w", err)
	}
	maxDiags, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	opts := lsp.ServerOptions{
		Debounce:       debounce,
		MaxDiagnostics: maxDiags,
		ToolVersion:    version.Version,
	}
	// явный --config действует на все документы, иначе ищем рядом с каждым
	if path, _ := cmd.Root().PersistentFlags().GetString("config"); path != "" {
		cfg, err := loadConfig(cmd, "", true)
		if err != nil {
			return err
		}
		opts.Config = cfg
	}
	if withLog {
		opts.Log = cmd.ErrOrStderr()
	} else {
		opts.Log = io.Discard
	}

	server := lsp.NewServer(cmd.InOrStdin(), cmd.OutOrStdout(), opts)
	if err := server.Run(cmd.Context()); err != nil {
		if errors.Is(err, lsp.ErrExit) || errors.Is(err, context.Canceled) {
			return nil
		}
		if errors.Is(err, lsp.ErrExitWithoutShutdown) {
			return fmt.Errorf("lsp exit without shutdown")
		}
		return err
	}
	return nil
}
