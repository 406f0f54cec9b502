package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"bslint/internal/prof"
)

// profileFlags maps the persistent flags onto prof.Options fields.
func profileFlags(opts *prof.Options) map[string]*string {
	return map[string]*string{
		"cpu-profile":   &opts.CPU,
		"mem-profile":   &opts.Mem,
		"runtime-trace": &opts.Trace,
	}
}

// setupProfiling starts the profilers the root flags ask for. The returned
// stop func reports its own errors to stderr and tolerates a second call.
func setupProfiling(cmd *cobra.Command) (func(), error) {
	var opts prof.Options
	flags := cmd.Root().PersistentFlags()
	for name, dst := range profileFlags(&opts) {
		v, err := flags.GetString(name)
		if err != nil {
			return nil, fmt.Errorf("read --%s: %w", name, err)
		}
		*dst = v
	}
	if opts.Empty() {
		return func() {}, nil
	}

	session, err := prof.Start(opts)
	if err != nil {
		return nil, err
	}
	return func() {
		if err := session.Stop(); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "bslint: profile: %v\n", err)
		}
	}, nil
}
