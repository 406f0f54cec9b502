package diag

import (
	"bslint/internal/source"
)

// Note is a related location attached to a diagnostic.
type Note struct {
	Span source.Span
	Msg  string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Category Category
	Message  string
	Primary  source.Span
	Notes    []Note
	Fixes    []Fix
	// Data is an opaque payload the producing rule reads back when building quick fixes.
	Data any `msgpack:"-" json:"-"`
}

// Clone returns a copy that shares no slices with d.
func (d Diagnostic) Clone() Diagnostic {
	out := d
	if len(d.Notes) > 0 {
		out.Notes = append([]Note(nil), d.Notes...)
	}
	if len(d.Fixes) > 0 {
		out.Fixes = make([]Fix, len(d.Fixes))
		for i, f := range d.Fixes {
			out.Fixes[i] = f.Clone()
		}
	}
	return out
}
