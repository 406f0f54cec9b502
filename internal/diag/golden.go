package diag

import (
	"cmp"
	"fmt"
	"path"
	"slices"
	"strings"

	"bslint/internal/source"
)

// GoldenOptions selects what besides the findings goes into the golden form.
type GoldenOptions struct {
	Notes bool
	Fixes bool
}

// goldenLine is one line of the golden form: kind is the lower-case severity,
// "note" or "fix".
type goldenLine struct {
	kind      string
	code      string
	path      string
	line, col uint32
	text      string
}

func (g goldenLine) String() string {
	return fmt.Sprintf("%s %s %s:%d:%d %s", g.kind, g.code, g.path, g.line, g.col, g.text)
}

func compareGolden(a, b goldenLine) int {
	return cmp.Or(
		cmp.Compare(a.path, b.path),
		cmp.Compare(a.line, b.line),
		cmp.Compare(a.col, b.col),
		cmp.Compare(a.code, b.code),
		cmp.Compare(a.text, b.text),
	)
}

// Golden renders diagnostics one per line, ordered by position, for golden
// files and test assertions. Paths are relative to the file set base and use
// forward slashes; columns are 1-based runes so Cyrillic lines stay readable.
func Golden(diags []Diagnostic, fs *source.FileSet, opts GoldenOptions) string {
	if fs == nil {
		return ""
	}
	var lines []goldenLine
	for i := range diags {
		d := &diags[i]
		code := d.Code.ID()
		if g, ok := goldenAt(fs, d.Primary); ok {
			g.kind, g.code, g.text = strings.ToLower(d.Severity.String()), code, Flatten(d.Message)
			lines = append(lines, g)
			if opts.Fixes {
				for _, f := range d.Fixes {
					g.kind, g.text = "fix", Flatten(f.Title)
					lines = append(lines, g)
				}
			}
		}
		if !opts.Notes {
			continue
		}
		for _, n := range d.Notes {
			if g, ok := goldenAt(fs, n.Span); ok {
				g.kind, g.code, g.text = "note", code, Flatten(n.Msg)
				lines = append(lines, g)
			}
		}
	}
	slices.SortStableFunc(lines, compareGolden)

	out := make([]string, len(lines))
	for i, g := range lines {
		out[i] = g.String()
	}
	return strings.Join(out, "\n")
}

func goldenAt(fs *source.FileSet, span source.Span) (goldenLine, bool) {
	f := fs.Get(span.File)
	if f == nil {
		return goldenLine{}, false
	}
	line, col := f.Position(span.Start)
	p := path.Clean(strings.ReplaceAll(f.FormatPath("relative", fs.BaseDir()), `\`, "/"))
	return goldenLine{path: p, line: line, col: col + 1}, true
}

// Flatten folds a message onto a single line.
func Flatten(msg string) string {
	return strings.Join(strings.Fields(msg), " ")
}
