package main

import (
	"cmp"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"bslint/internal/rules"
	"bslint/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show bslint build information",
	Args:  cobra.NoArgs,
	RunE:  runVersion,
}

func init() {
	versionCmd.Flags().Bool("hash", false, "include git commit hash")
	versionCmd.Flags().Bool("message", false, "include git commit message")
	versionCmd.Flags().Bool("date", false, "include build timestamp")
	versionCmd.Flags().Bool("full", false, "show every recorded bit of build metadata")
	versionCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

// versionPayload is also the pretty output model; empty optional fields are
// not printed.
type versionPayload struct {
	Tool       string `json:"tool"`
	Version    string `json:"version"`
	Rules      int    `json:"rules"`
	GitCommit  string `json:"git_commit,omitempty"`
	GitMessage string `json:"git_message,omitempty"`
	BuildDate  string `json:"build_date,omitempty"`
	GoVersion  string `json:"go_version"`
	Platform   string `json:"platform"`
}

func runVersion(cmd *cobra.Command, _ []string) error {
	flags := cmd.Flags()
	full, _ := flags.GetBool("full")
	show := func(name string) bool {
		on, _ := flags.GetBool(name)
		return on || full
	}
	format, _ := flags.GetString("format")

	info := version.Current()
	p := versionPayload{
		Tool:      "bslint",
		Version:   cmp.Or(strings.TrimSpace(info.Version), "dev"),
		Rules:     len(rules.Default().All()),
		GoVersion: info.GoVersion,
		Platform:  info.Platform,
	}
	if show("hash") {
		p.GitCommit = cmp.Or(info.GitCommit, "unknown")
	}
	if show("message") {
		p.GitMessage = cmp.Or(info.GitMessage, "unknown")
	}
	if show("date") {
		p.BuildDate = cmp.Or(info.BuildDate, "unknown")
	}

	out := cmd.OutOrStdout()
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	case "pretty":
		colored, err := useColor(cmd, out)
		if err != nil {
			return err
		}
		prev := color.NoColor
		color.NoColor = !colored
		defer func() { color.NoColor = prev }()
		renderVersionPretty(out, p)
		return nil
	}
	return fmt.Errorf("unsupported format %q (must be pretty or json)", format)
}

func renderVersionPretty(out io.Writer, p versionPayload) {
	fmt.Fprintf(out, "bslint %s (%d rules)\n", version.Colored(p.Version), p.Rules)
	for _, kv := range [][2]string{{"commit", p.GitCommit}, {"message", p.GitMessage}, {"built", p.BuildDate}} {
		if kv[1] != "" {
			fmt.Fprintf(out, "%-8s %s\n", kv[0]+":", kv[1])
		}
	}
	fmt.Fprintf(out, "%-8s %s %s\n", "go:", p.GoVersion, p.Platform)
}
