package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"bslint/internal/diag"
	"bslint/internal/source"
)

type palette struct {
	sev   map[diag.Severity]*color.Color
	code  *color.Color
	loc   *color.Color
	gut   *color.Color
	caret *color.Color
	note  *color.Color
	plus  *color.Color
	minus *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		sev: map[diag.Severity]*color.Color{
			diag.SevError:   color.New(color.FgRed, color.Bold),
			diag.SevWarning: color.New(color.FgYellow, color.Bold),
			diag.SevInfo:    color.New(color.FgCyan, color.Bold),
			diag.SevHint:    color.New(color.FgWhite),
		},
		code:  color.New(color.Faint),
		loc:   color.New(color.Bold),
		gut:   color.New(color.FgBlue),
		caret: color.New(color.FgRed, color.Bold),
		note:  color.New(color.FgCyan),
		plus:  color.New(color.FgGreen),
		minus: color.New(color.FgRed),
	}
	all := []*color.Color{p.code, p.loc, p.gut, p.caret, p.note, p.plus, p.minus}
	for _, c := range p.sev {
		all = append(all, c)
	}
	for _, c := range all {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <CODE>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span, затем Notes с аналогичным форматом.
// Цвет включается опцией.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	p := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		prettyOne(w, p, d, fs, opts)
	}
}

func prettyOne(w io.Writer, p palette, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts) {
	sevColor := p.sev[d.Severity]
	if sevColor == nil {
		sevColor = p.sev[diag.SevHint]
	}
	fmt.Fprintf(w, "%s: %s %s: %s\n",
		p.loc.Sprint(position(fs, d.Primary, opts.PathMode)),
		sevColor.Sprint(d.Severity.String()),
		p.code.Sprint(d.Code.ID()),
		d.Message,
	)
	writeSnippet(w, p, fs, d.Primary, opts.Context)

	if opts.ShowNotes {
		for _, n := range d.Notes {
			fmt.Fprintf(w, "  %s %s: %s\n", p.note.Sprint("note:"), position(fs, n.Span, opts.PathMode), n.Msg)
		}
	}
	if !opts.ShowFixes {
		return
	}
	for i, f := range d.Fixes {
		line := fmt.Sprintf("  fix #%d: %s [%s, %s]", i+1, f.Title, f.Kind, f.Applicability)
		if f.ID != "" {
			line += " id=" + f.ID
		}
		if f.IsPreferred {
			line += " (preferred)"
		}
		fmt.Fprintln(w, line)
		for _, e := range f.Edits {
			fmt.Fprintf(w, "    %s apply=%q", position(fs, e.Span, opts.PathMode), e.NewText)
			if e.OldText != "" {
				fmt.Fprintf(w, " expect=%q", e.OldText)
			}
			fmt.Fprintln(w)
			if !opts.ShowPreview {
				continue
			}
			preview, err := buildFixEditPreview(fs, e)
			if err != nil {
				continue
			}
			fmt.Fprintln(w, "    preview:")
			for _, l := range preview.before {
				fmt.Fprintln(w, "      "+p.minus.Sprint("- "+l))
			}
			for _, l := range preview.after {
				fmt.Fprintln(w, "      "+p.plus.Sprint("+ "+l))
			}
		}
	}
}

// position renders path:line:col with a 1-based column in runes.
func position(fs *source.FileSet, sp source.Span, mode PathMode) string {
	f := fs.Get(sp.File)
	if f == nil {
		return "<unknown>"
	}
	line, col := f.Position(sp.Start)
	return fmt.Sprintf("%s:%d:%d", displayPath(fs, f, mode), line, col+1)
}

// writeSnippet prints the primary line with a caret line under the span and
// up to ctxLines lines around it.
func writeSnippet(w io.Writer, p palette, fs *source.FileSet, sp source.Span, ctxLines int8) {
	f := fs.Get(sp.File)
	if f == nil || len(f.Content) == 0 {
		return
	}
	line, _ := f.Position(sp.Start)
	first := int(line) - int(max(ctxLines, 0))
	if first < 1 {
		first = 1
	}
	last := int(line) + int(max(ctxLines, 0))
	if last > f.LineCount() {
		last = f.LineCount()
	}
	gutter := len(fmt.Sprint(last))

	for n := first; n <= last; n++ {
		text := f.GetLine(uint32(n))
		fmt.Fprintf(w, "%s %s\n", p.gut.Sprintf("%*d |", gutter, n), text)
		if n != int(line) {
			continue
		}
		start, _ := f.LineStart(line)
		lineEnd, _ := f.LineEnd(line)
		from := sp.Start - start
		to := min(sp.End, lineEnd)
		if to < sp.Start {
			to = sp.Start
		}
		prefix := text[:min(int(from), len(text))]
		marked := ""
		if int(to-start) <= len(text) {
			marked = text[min(int(from), len(text)):int(to-start)]
		}
		fmt.Fprintf(w, "%s %s%s\n", p.gut.Sprintf("%*s |", gutter, ""), padding(prefix), p.caret.Sprint(underline(marked)))
	}
}

// padding repeats tabs and fills every other rune with spaces of its display width.
func padding(prefix string) string {
	var b strings.Builder
	for _, r := range prefix {
		if r == '\t' {
			b.WriteByte('\t')
			continue
		}
		b.WriteString(strings.Repeat(" ", runewidth.RuneWidth(r)))
	}
	return b.String()
}

func underline(marked string) string {
	width := runewidth.StringWidth(strings.ReplaceAll(marked, "\t", "    "))
	if width <= 1 {
		return "^"
	}
	return "^" + strings.Repeat("~", width-1)
}

// Short prints one line per diagnostic: <path>:<line>:<col>: <SEV> <CODE>: <Message>.
func Short(w io.Writer, bag *diag.Bag, fs *source.FileSet, mode PathMode) {
	for _, d := range bag.Items() {
		fmt.Fprintf(w, "%s: %s %s: %s\n", position(fs, d.Primary, mode), d.Severity, d.Code.ID(), d.Message)
	}
}
