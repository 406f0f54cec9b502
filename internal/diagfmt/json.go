package diagfmt

import (
	"cmp"
	"encoding/json"
	"io"
	"slices"
	"strings"

	"bslint/internal/diag"
	"bslint/internal/source"
)

// LocationJSON: байтовые смещения всегда, строки и колонки (1-based, в рунах)
// только с IncludePositions.
type LocationJSON struct {
	File      string `json:"file"`
	StartByte uint32 `json:"start_byte"`
	EndByte   uint32 `json:"end_byte"`
	StartLine uint32 `json:"start_line,omitempty"`
	StartCol  uint32 `json:"start_col,omitempty"`
	EndLine   uint32 `json:"end_line,omitempty"`
	EndCol    uint32 `json:"end_col,omitempty"`
}

type NoteJSON struct {
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
}

// FixEditJSON is one edit; the line previews are filled with IncludePreviews.
type FixEditJSON struct {
	Location    LocationJSON `json:"location"`
	NewText     string       `json:"new_text"`
	OldText     string       `json:"old_text,omitempty"`
	BeforeLines []string     `json:"before_lines,omitempty"`
	AfterLines  []string     `json:"after_lines,omitempty"`
}

type FixJSON struct {
	ID            string        `json:"id,omitempty"`
	Title         string        `json:"title"`
	Kind          string        `json:"kind"`
	Applicability string        `json:"applicability"`
	IsPreferred   bool          `json:"is_preferred,omitempty"`
	RequiresAll   bool          `json:"requires_all,omitempty"`
	Edits         []FixEditJSON `json:"edits,omitempty"`
}

type DiagnosticJSON struct {
	Severity string       `json:"severity"`
	Code     string       `json:"code"`
	Category string       `json:"category,omitempty"`
	Message  string       `json:"message"`
	Location LocationJSON `json:"location"`
	Notes    []NoteJSON   `json:"notes,omitempty"`
	Fixes    []FixJSON    `json:"fixes,omitempty"`
}

// DiagnosticsOutput is the JSON document of one file or of a single-file run.
// Summary counts the emitted findings by lower-case severity; Omitted is how
// many were cut by JSONOpts.Max.
type DiagnosticsOutput struct {
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Count       int              `json:"count"`
	Summary     map[string]int   `json:"summary,omitempty"`
	Omitted     int              `json:"omitted,omitempty"`
}

func displayPath(fs *source.FileSet, f *source.File, pathMode PathMode) string {
	switch pathMode {
	case PathModeAbsolute:
		return f.FormatPath("absolute", "")
	case PathModeRelative:
		return f.FormatPath("relative", fs.BaseDir())
	case PathModeBasename:
		return f.FormatPath("basename", "")
	}
	return f.FormatPath("auto", "")
}

func makeLocation(span source.Span, fs *source.FileSet, pathMode PathMode, withPositions bool) LocationJSON {
	loc := LocationJSON{StartByte: span.Start, EndByte: span.End}
	f := fs.Get(span.File)
	if f == nil {
		return loc
	}
	loc.File = displayPath(fs, f, pathMode)
	if withPositions {
		line, col := f.Position(span.Start)
		loc.StartLine, loc.StartCol = line, col+1
		line, col = f.Position(span.End)
		loc.EndLine, loc.EndCol = line, col+1
	}
	return loc
}

// compareFixes: preferred first, then safer, then by kind, title and id.
func compareFixes(a, b diag.Fix) int {
	if a.IsPreferred != b.IsPreferred {
		if a.IsPreferred {
			return -1
		}
		return 1
	}
	return cmp.Or(
		cmp.Compare(a.Applicability, b.Applicability),
		cmp.Compare(a.Kind, b.Kind),
		cmp.Compare(a.Title, b.Title),
		cmp.Compare(a.ID, b.ID),
	)
}

type jsonBuilder struct {
	fs   *source.FileSet
	opts JSONOpts
}

func (jb jsonBuilder) location(span source.Span) LocationJSON {
	return makeLocation(span, jb.fs, jb.opts.PathMode, jb.opts.IncludePositions)
}

func (jb jsonBuilder) diagnostic(d diag.Diagnostic) DiagnosticJSON {
	out := DiagnosticJSON{
		Severity: d.Severity.String(),
		Code:     d.Code.ID(),
		Message:  d.Message,
		Location: jb.location(d.Primary),
	}
	if d.Category != diag.CategoryNone {
		out.Category = d.Category.String()
	}
	if jb.opts.IncludeNotes {
		for _, n := range d.Notes {
			out.Notes = append(out.Notes, NoteJSON{Message: n.Msg, Location: jb.location(n.Span)})
		}
	}
	if jb.opts.IncludeFixes && len(d.Fixes) > 0 {
		fixes := slices.Clone(d.Fixes)
		slices.SortStableFunc(fixes, compareFixes)
		for _, f := range fixes {
			out.Fixes = append(out.Fixes, jb.fix(f))
		}
	}
	return out
}

func (jb jsonBuilder) fix(f diag.Fix) FixJSON {
	out := FixJSON{
		ID:            f.ID,
		Title:         f.Title,
		Kind:          f.Kind.String(),
		Applicability: f.Applicability.String(),
		IsPreferred:   f.IsPreferred,
		RequiresAll:   f.RequiresAll,
	}
	for _, e := range f.Edits {
		ej := FixEditJSON{Location: jb.location(e.Span), NewText: e.NewText, OldText: e.OldText}
		if jb.opts.IncludePreviews {
			// превью не строится для правок вне файла, тогда просто без строк
			if p, err := buildFixEditPreview(jb.fs, e); err == nil {
				ej.BeforeLines, ej.AfterLines = slices.Clone(p.before), slices.Clone(p.after)
			}
		}
		out.Edits = append(out.Edits, ej)
	}
	return out
}

// BuildDiagnosticsOutput builds the JSON document without encoding it.
func BuildDiagnosticsOutput(bag *diag.Bag, fs *source.FileSet, opts JSONOpts) DiagnosticsOutput {
	items := bag.Items()
	n := len(items)
	if opts.Max > 0 {
		n = min(n, opts.Max)
	}
	jb := jsonBuilder{fs: fs, opts: opts}
	out := DiagnosticsOutput{
		Diagnostics: make([]DiagnosticJSON, 0, n),
		Omitted:     len(items) - n,
	}
	for _, d := range items[:n] {
		out.Diagnostics = append(out.Diagnostics, jb.diagnostic(d))
		if out.Summary == nil {
			out.Summary = make(map[string]int, 4)
		}
		out.Summary[strings.ToLower(d.Severity.String())]++
	}
	out.Count = len(out.Diagnostics)
	return out
}

// JSON writes the findings of bag as one indented JSON document.
func JSON(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(BuildDiagnosticsOutput(bag, fs, opts))
}
