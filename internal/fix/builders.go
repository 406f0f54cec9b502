package fix

import (
	"bslint/internal/diag"
	"bslint/internal/source"
)

// Option adjusts a fix built by the helpers below; nil options are skipped.
type Option func(*diag.Fix)

func WithApplicability(app diag.FixApplicability) Option {
	return func(f *diag.Fix) { f.Applicability = app }
}

func WithKind(kind diag.FixKind) Option {
	return func(f *diag.Fix) { f.Kind = kind }
}

// Preferred marks the fix the editor applies on "quick fix" without a menu.
func Preferred() Option {
	return func(f *diag.Fix) { f.IsPreferred = true }
}

// WithID sets the id `bslint fix --id` selects by.
func WithID(id string) Option {
	return func(f *diag.Fix) { f.ID = id }
}

// WithRequiresAll marks a fix that only makes sense together with its siblings.
func WithRequiresAll() Option {
	return func(f *diag.Fix) { f.RequiresAll = true }
}

// New is a safe quick fix made of edits. The other builders wrap it.
func New(title string, edits []diag.TextEdit, opts ...Option) diag.Fix {
	f := diag.Fix{
		Title:         title,
		Kind:          diag.FixKindQuickFix,
		Applicability: diag.FixApplicabilityAlwaysSafe,
		Edits:         edits,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&f)
		}
	}
	return f
}

// AfterSpan is the empty span right past the end of sp.
func AfterSpan(sp source.Span) source.Span {
	return source.Span{File: sp.File, Start: sp.End, End: sp.End}
}

// InsertText inserts text at the empty span at; guard, when set, is the text
// that must be there.
func InsertText(title string, at source.Span, text, guard string, opts ...Option) diag.Fix {
	return New(title, []diag.TextEdit{{Span: at, NewText: text, OldText: guard}}, opts...)
}

func InsertAfter(title string, span source.Span, text string, opts ...Option) diag.Fix {
	return InsertText(title, AfterSpan(span), text, "", opts...)
}

// DeleteSpan removes span; expect guards it like OldText.
func DeleteSpan(title string, span source.Span, expect string, opts ...Option) diag.Fix {
	return ReplaceSpan(title, span, "", expect, opts...)
}

func ReplaceSpan(title string, span source.Span, newText, expect string, opts ...Option) diag.Fix {
	return New(title, []diag.TextEdit{{Span: span, NewText: newText, OldText: expect}}, opts...)
}

// DeleteSpans removes several unguarded spans in one fix.
func DeleteSpans(title string, spans []source.Span, opts ...Option) diag.Fix {
	edits := make([]diag.TextEdit, len(spans))
	for i, sp := range spans {
		edits[i] = diag.TextEdit{Span: sp}
	}
	return New(title, edits, opts...)
}
