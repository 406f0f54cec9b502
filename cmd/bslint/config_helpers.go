package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"bslint/internal/config"
)

// loadConfig returns the configuration for target: the --config file when
// given, otherwise the nearest .bslint.* above target, otherwise defaults
// rooted at target (or its directory for a file).
func loadConfig(cmd *cobra.Command, target string, isDir bool) (*config.Config, error) {
	explicit, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	if explicit != "" {
		cfg, err := config.Load(explicit)
		if err != nil {
			return nil, err
		}
		if abs, err := filepath.Abs(cfg.Root); err == nil {
			cfg.Root = abs
		}
		return cfg, nil
	}
	start := target
	if !isDir {
		start = filepath.Dir(target)
	}
	cfg, _, err := config.Discover(start)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// statTarget resolves the positional argument to an absolute path.
func statTarget(arg string) (string, bool, error) {
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve %q: %w", arg, err)
	}
	st, err := os.Stat(abs)
	if err != nil {
		return "", false, fmt.Errorf("failed to stat path: %w", err)
	}
	return abs, st.IsDir(), nil
}
