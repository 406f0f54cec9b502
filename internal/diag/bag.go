package diag

import (
	"cmp"
	"slices"
)

// Bag collects diagnostics of one file or one run, optionally capped.
type Bag struct {
	items []Diagnostic
	max   int
}

// NewBag creates a bag holding at most max diagnostics; max <= 0 means unlimited.
func NewBag(max int) *Bag {
	hint := 16
	if max > 0 {
		hint = min(max, 64)
	}
	return &Bag{items: make([]Diagnostic, 0, hint), max: max}
}

// Add возвращает false, когда лимит уже исчерпан.
func (b *Bag) Add(d Diagnostic) bool {
	if b.max > 0 && len(b.items) >= b.max {
		return false
	}
	b.items = append(b.items, d)
	return true
}

// AddAll appends items; the limit grows to fit them, so already produced
// results are never lost.
func (b *Bag) AddAll(items []Diagnostic) {
	if b.max > 0 {
		b.max = max(b.max, len(b.items)+len(items))
	}
	b.items = append(b.items, items...)
}

func (b *Bag) HasErrors() bool {
	return slices.ContainsFunc(b.items, func(d Diagnostic) bool { return d.Severity >= SevError })
}

func (b *Bag) Len() int { return len(b.items) }

// Limit is the cap given to NewBag or grown by AddAll; 0 means unlimited.
func (b *Bag) Limit() int { return max(b.max, 0) }

// Items is the bag's own slice; callers must not modify it.
func (b *Bag) Items() []Diagnostic { return b.items }

// Snapshot is a copy the caller may keep.
func (b *Bag) Snapshot() []Diagnostic { return slices.Clone(b.items) }

func (b *Bag) Sort() { SortDiagnostics(b.items) }

// SortDiagnostics orders by file and span, then the most severe first, then
// code and message. The sort is stable.
func SortDiagnostics(items []Diagnostic) {
	slices.SortStableFunc(items, Compare)
}

func Compare(a, b Diagnostic) int {
	return cmp.Or(
		cmp.Compare(a.Primary.File, b.Primary.File),
		cmp.Compare(a.Primary.Start, b.Primary.Start),
		cmp.Compare(a.Primary.End, b.Primary.End),
		cmp.Compare(b.Severity, a.Severity),
		cmp.Compare(a.Code, b.Code),
		cmp.Compare(a.Message, b.Message),
	)
}
