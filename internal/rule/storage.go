package rule

import (
	"fmt"
	"sync"

	"fortio.org/safecast"

	"bslint/internal/cst"
	"bslint/internal/diag"
	"bslint/internal/source"
	"bslint/internal/token"
)

// Location is where a finding points. All forms resolve to a source.Span.
type Location struct {
	span    source.Span
	ranged  bool
	lines   [2]int // 1-based
	columns [2]int // 0-based, в рунах
}

func At(n *cst.Node) Location { return Location{span: n.Span()} }

func AtToken(t token.Token) Location { return Location{span: t.Span} }

func AtSpan(sp source.Span) Location { return Location{span: sp} }

// Between covers both tokens and everything in between.
func Between(a, b token.Token) Location { return Location{span: a.Span.Cover(b.Span)} }

// AtRange is a line/column range; lines are 1-based, columns are 0-based runes.
func AtRange(startLine, startCol, endLine, endCol int) Location {
	return Location{
		ranged:  true,
		lines:   [2]int{startLine, endLine},
		columns: [2]int{startCol, endCol},
	}
}

// Resolve turns the location into a byte span of file.
func (l Location) Resolve(file *source.File) source.Span {
	if !l.ranged || file == nil {
		return l.span
	}
	offset := func(line, col int) uint32 {
		ln, err := safecast.Conv[uint32](line)
		if err != nil {
			return 0
		}
		c, err := safecast.Conv[uint32](col)
		if err != nil {
			c = 0
		}
		off, ok := file.Offset(ln, c)
		if !ok {
			return uint32(len(file.Content))
		}
		return off
	}
	start := offset(l.lines[0], l.columns[0])
	end := offset(l.lines[1], l.columns[1])
	if end < start {
		end = start
	}
	return source.Span{File: file.ID, Start: start, End: end}
}

type addParams struct {
	message  string
	hasMsg   bool
	args     []any
	related  []diag.Note
	severity *diag.Severity
	fixes    []diag.Fix
	data     any
}

// AddOption customises one finding.
type AddOption func(*addParams)

// Message replaces the descriptor's message.
func Message(s string) AddOption {
	return func(p *addParams) {
		p.message = s
		p.hasMsg = true
	}
}

// Messagef formats the descriptor's message template with args.
func Messagef(args ...any) AddOption {
	return func(p *addParams) {
		p.args = args
	}
}

// Related attaches a secondary location.
func Related(sp source.Span, label string) AddOption {
	return func(p *addParams) {
		p.related = append(p.related, diag.Note{Span: sp, Msg: label})
	}
}

func WithSeverity(sev diag.Severity) AddOption {
	return func(p *addParams) {
		p.severity = &sev
	}
}

func WithFix(f diag.Fix) AddOption {
	return func(p *addParams) {
		p.fixes = append(p.fixes, f)
	}
}

// WithData stashes a payload for the rule's own QuickFixes.
func WithData(v any) AddOption {
	return func(p *addParams) {
		p.data = v
	}
}

// Storage collects the findings of one rule run.
type Storage struct {
	mu       sync.Mutex
	code     diag.Code
	category diag.Category
	severity diag.Severity
	template string
	file     *source.File
	items    []diag.Diagnostic
}

// NewStorage prepares storage for a rule run; sev is the effective severity
// after configuration overrides.
func NewStorage(desc Descriptor, sev diag.Severity, lang string, file *source.File) *Storage {
	return &Storage{
		code:     desc.Code(),
		category: desc.Category,
		severity: sev,
		template: desc.MessageFor(lang),
		file:     file,
	}
}

// Add records a finding and returns it. Safe for concurrent use.
func (s *Storage) Add(loc Location, opts ...AddOption) diag.Diagnostic {
	var p addParams
	for _, opt := range opts {
		if opt != nil {
			opt(&p)
		}
	}
	msg := s.template
	switch {
	case p.hasMsg:
		msg = p.message
	case len(p.args) > 0:
		msg = fmt.Sprintf(s.template, p.args...)
	}
	sev := s.severity
	if p.severity != nil {
		sev = *p.severity
	}
	d := diag.Diagnostic{
		Severity: sev,
		Code:     s.code,
		Category: s.category,
		Message:  msg,
		Primary:  loc.Resolve(s.file),
		Notes:    p.related,
		Fixes:    p.fixes,
		Data:     p.data,
	}
	s.mu.Lock()
	s.items = append(s.items, d)
	s.mu.Unlock()
	return d
}

func (s *Storage) Clear() {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()
}

func (s *Storage) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Diagnostics returns a source-ordered copy.
func (s *Storage) Diagnostics() []diag.Diagnostic {
	s.mu.Lock()
	out := make([]diag.Diagnostic, len(s.items))
	for i, d := range s.items {
		out[i] = d.Clone()
	}
	s.mu.Unlock()
	diag.SortDiagnostics(out)
	return out
}
