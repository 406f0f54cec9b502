package fix

import (
	"cmp"
	"fmt"
	"slices"

	"bslint/internal/diag"
)

// candidate is one fix of one finding; order keeps the finding order stable.
type candidate struct {
	diag  diag.Diagnostic
	fix   diag.Fix
	order int
}

const (
	reasonNoEdits     = "fix has no edits"
	reasonDuplicateID = "duplicate fix id"
	reasonNeedsAll    = "fix requires all fixes to be applied"
	reasonIDNotFound  = "fix id not found"
)

// gatherCandidates flattens the fixes of diagnostics. Fixes without edits and
// repeated ids are skipped. A missing id becomes
// "<rule>-<file>-<offset>-<index>", stable across runs on the same content.
func gatherCandidates(diagnostics []diag.Diagnostic) ([]candidate, []SkippedFix) {
	var (
		cands []candidate
		skips []SkippedFix
	)
	seen := make(map[string]bool)
	for _, d := range diagnostics {
		for i, f := range d.Fixes {
			if len(f.Edits) == 0 {
				skips = append(skips, skipOf(f, reasonNoEdits))
				continue
			}
			f = f.Clone()
			if f.ID == "" {
				f.ID = fmt.Sprintf("%s-%d-%d-%d", d.Code.ID(), d.Primary.File, d.Primary.Start, i)
			}
			if seen[f.ID] {
				skips = append(skips, skipOf(f, reasonDuplicateID))
				continue
			}
			seen[f.ID] = true
			cands = append(cands, candidate{diag: d, fix: f, order: len(cands)})
		}
	}
	return cands, skips
}

// sortCandidates orders by position of the finding, then by the order it was
// reported, rule, preferred fixes first, id and title.
func sortCandidates(cands []candidate) {
	slices.SortStableFunc(cands, func(a, b candidate) int {
		pa, pb := a.diag.Primary, b.diag.Primary
		if c := cmp.Or(
			cmp.Compare(pa.File, pb.File),
			cmp.Compare(pa.Start, pb.Start),
			cmp.Compare(pa.End, pb.End),
			cmp.Compare(a.order, b.order),
			cmp.Compare(a.diag.Code, b.diag.Code),
		); c != 0 {
			return c
		}
		if a.fix.IsPreferred != b.fix.IsPreferred {
			if a.fix.IsPreferred {
				return -1
			}
			return 1
		}
		return cmp.Or(cmp.Compare(a.fix.ID, b.fix.ID), cmp.Compare(a.fix.Title, b.fix.Title))
	})
}

func selectCandidates(cands []candidate, opts ApplyOptions) ([]candidate, []SkippedFix) {
	switch opts.Mode {
	case ApplyModeID:
		return selectByID(cands, opts.TargetID)
	case ApplyModeAll:
		return selectSafe(cands)
	case ApplyModeOnce:
		return selectFirst(cands)
	}
	return nil, nil
}

func selectByID(cands []candidate, id string) ([]candidate, []SkippedFix) {
	i := slices.IndexFunc(cands, func(c candidate) bool { return c.fix.ID == id })
	switch {
	case i < 0:
		return nil, []SkippedFix{{ID: id, Reason: reasonIDNotFound}}
	case cands[i].fix.RequiresAll:
		return nil, []SkippedFix{{ID: id, Reason: reasonNeedsAll}}
	}
	return cands[i : i+1], nil
}

// selectSafe takes every always-safe fix; the rest are reported as skipped.
func selectSafe(cands []candidate) ([]candidate, []SkippedFix) {
	var (
		out   []candidate
		skips []SkippedFix
	)
	for _, c := range cands {
		if c.fix.Applicability == diag.FixApplicabilityAlwaysSafe {
			out = append(out, c)
			continue
		}
		skips = append(skips, skipOf(c.fix, "applicability is "+c.fix.Applicability.String()))
	}
	return out, skips
}

// selectFirst takes the first always-safe fix, or failing that the first fix
// that may be applied alone.
func selectFirst(cands []candidate) ([]candidate, []SkippedFix) {
	var skips []SkippedFix
	fallback := -1
	for i, c := range cands {
		if c.fix.RequiresAll {
			skips = append(skips, skipOf(c.fix, reasonNeedsAll))
			continue
		}
		if c.fix.Applicability == diag.FixApplicabilityAlwaysSafe {
			return cands[i : i+1], skips
		}
		if fallback < 0 {
			fallback = i
		}
	}
	if fallback < 0 {
		return nil, skips
	}
	return cands[fallback : fallback+1], skips
}

func skipOf(f diag.Fix, reason string) SkippedFix {
	return SkippedFix{ID: f.ID, Title: f.Title, Reason: reason}
}
