package fix

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"bslint/internal/diag"
	"bslint/internal/source"
)

var (
	// ErrNoFixes is returned when no fixes were applied.
	ErrNoFixes = errors.New("no applicable fixes found")
	// ErrEditConflict: two edits of one batch overlap.
	ErrEditConflict = errors.New("overlapping edits")
	// ErrTextMismatch: OldText guard did not match the current content.
	ErrTextMismatch = errors.New("existing text does not match expected content")
	// ErrOutOfRange: edit span does not fit the content.
	ErrOutOfRange = errors.New("edit span out of range")
)

// ApplyMode determines selection strategy for fixes.
type ApplyMode uint8

const (
	ApplyModeOnce ApplyMode = iota // первый безопасный (или первый вообще)
	ApplyModeAll                   // все AlwaysSafe
	ApplyModeID                    // один по ID
)

// ApplyOptions configures how fixes are selected.
type ApplyOptions struct {
	Mode     ApplyMode
	TargetID string
	// DryRun computes new contents without writing files; virtual files are allowed.
	DryRun bool
}

// AppliedFix records a successfully applied fix.
type AppliedFix struct {
	ID            string
	Title         string
	Code          diag.Code
	Message       string
	Applicability diag.FixApplicability
	PrimaryPath   string
	EditCount     int
}

// SkippedFix captures a skipped or failed fix with a reason.
type SkippedFix struct {
	ID     string
	Title  string
	Reason string
}

// FileChange is the outcome for one file. Before and After are normalised
// text (no BOM, LF endings); what goes to disk keeps the file's own encoding.
type FileChange struct {
	Path      string
	EditCount int
	Before    []byte
	After     []byte
}

// ApplyResult aggregates applied fixes, skipped ones, and file changes.
type ApplyResult struct {
	Applied     []AppliedFix
	Skipped     []SkippedFix
	FileChanges []FileChange
}

// Apply selects fixes of diagnostics according to opts, applies them and,
// unless DryRun is set, writes the changed files. A fix is applied whole or
// not at all: if any of its edits conflicts with an accepted fix or fails its
// guard, the fix is skipped and the rest continue.
func Apply(fs *source.FileSet, diagnostics []diag.Diagnostic, opts ApplyOptions) (*ApplyResult, error) {
	res := &ApplyResult{
		Applied:     []AppliedFix{},
		Skipped:     []SkippedFix{},
		FileChanges: []FileChange{},
	}
	if fs == nil {
		return res, fmt.Errorf("fix: FileSet is nil")
	}

	cands, skips := gatherCandidates(diagnostics)
	res.Skipped = append(res.Skipped, skips...)
	if len(cands) == 0 {
		return res, ErrNoFixes
	}
	sortCandidates(cands)
	selected, skips := selectCandidates(cands, opts)
	res.Skipped = append(res.Skipped, skips...)
	if len(selected) == 0 {
		return res, ErrNoFixes
	}

	ws := newWorkspace(fs, opts.DryRun)
	for _, c := range selected {
		n, err := ws.stage(c.fix.Edits)
		if err != nil {
			res.Skipped = append(res.Skipped, skipOf(c.fix, err.Error()))
			continue
		}
		res.Applied = append(res.Applied, AppliedFix{
			ID:            c.fix.ID,
			Title:         c.fix.Title,
			Code:          c.diag.Code,
			Message:       c.diag.Message,
			Applicability: c.fix.Applicability,
			PrimaryPath:   ws.displayPath(c.diag.Primary.File, "auto"),
			EditCount:     n,
		})
	}
	if len(res.Applied) == 0 {
		return res, ErrNoFixes
	}

	changes, err := ws.commit()
	res.FileChanges = append(res.FileChanges, changes...)
	return res, err
}

// ApplyToContent applies edits to an in-memory copy of content. Spans are
// offsets into content; their File is ignored. Overlapping edits and failed
// OldText guards are errors and leave content untouched.
func ApplyToContent(content []byte, edits []diag.TextEdit) ([]byte, error) {
	for i := range edits {
		if err := checkEdit(content, edits[i]); err != nil {
			return nil, err
		}
		for j := range i {
			if overlap(edits[i].Span, edits[j].Span) {
				return nil, fmt.Errorf("%w: %v and %v", ErrEditConflict, edits[j].Span, edits[i].Span)
			}
		}
	}
	return render(content, edits), nil
}

// checkEdit validates one edit against the text it will be applied to.
func checkEdit(content []byte, e diag.TextEdit) error {
	if e.Span.End < e.Span.Start || int(e.Span.End) > len(content) {
		return ErrOutOfRange
	}
	if e.OldText != "" && string(content[e.Span.Start:e.Span.End]) != e.OldText {
		return ErrTextMismatch
	}
	return nil
}

// overlap reports whether two edits touch the same bytes. Two insertions at
// one offset do not overlap; an insertion strictly inside a replaced span, or
// at its start, does.
func overlap(a, b source.Span) bool {
	if a.File != b.File {
		return false
	}
	switch {
	case a.Empty() && b.Empty():
		return false
	case a.Empty():
		return b.Start <= a.Start && a.Start < b.End
	case b.Empty():
		return a.Start <= b.Start && b.Start < a.End
	}
	return a.Start < b.End && b.Start < a.End
}

// render applies non-overlapping edits to a copy of content. Insertions at
// the same offset keep their order in edits.
func render(content []byte, edits []diag.TextEdit) []byte {
	order := make([]int, len(edits))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(i, j int) int {
		return cmp.Or(cmp.Compare(edits[i].Span.Start, edits[j].Span.Start), cmp.Compare(i, j))
	})
	out := make([]byte, 0, len(content))
	var pos uint32
	for _, i := range order {
		e := edits[i]
		out = append(out, content[pos:e.Span.Start]...)
		out = append(out, e.NewText...)
		pos = e.Span.End
	}
	return append(out, content[pos:]...)
}
