package main

import (
	"fmt"
	"io"
	"time"

	"bslint/internal/driver"
	"bslint/internal/observ"
)

// slowestRules is how many rules --timings lists.
const slowestRules = 10

// printTimings prints per-file phase timings, per-phase totals and the
// slowest rules of the run. Modules served from the cache have no timings.
func printTimings(out io.Writer, res *driver.Result, wall time.Duration) {
	if out == nil || res == nil {
		return
	}
	reports := make([]*observ.Report, 0, len(res.Files))
	for _, f := range res.Files {
		reports = append(reports, f.Timing)
		if f.Timing == nil {
			continue
		}
		fmt.Fprintf(out, "%s %.1f ms\n", displayName(f), f.Timing.TotalMS)
		for _, ph := range f.Timing.Phases {
			fmt.Fprintf(out, "  %-8s %7.1f ms", ph.Name, ph.DurationMS)
			if ph.Note != "" {
				fmt.Fprintf(out, "  // %s", ph.Note)
			}
			fmt.Fprintln(out)
		}
	}

	sum := observ.Sum(reports)
	for _, ph := range sum.Phases {
		fmt.Fprintf(out, "%-8s %7.1f ms\n", ph.Name, ph.MS)
	}
	if top := sum.Slowest(slowestRules); len(top) > 0 {
		fmt.Fprintln(out, "slowest rules:")
		for _, r := range top {
			fmt.Fprintf(out, "  %-32s %7.1f ms  (%d file(s))\n", r.Name, r.MS, r.Count)
		}
	}
	fmt.Fprintf(out, "total %.1f ms (%d file(s), %d analysed)\n", toMillis(wall), len(res.Files), sum.Files)
}

func displayName(f driver.FileResult) string {
	if f.Rel != "" {
		return f.Rel
	}
	return f.Path
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
