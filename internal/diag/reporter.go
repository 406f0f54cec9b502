package diag

import "bslint/internal/source"

// Reporter: минимальный контракт получения диагностик от лексера и парсера.
type Reporter interface {
	Report(code Code, sev Severity, primary source.Span, msg string, notes []Note, fixes []Fix)
}

// BagReporter: адаптер, который пишет в *Bag. Все его находки синтаксические.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note, fixes []Fix) {
	if r.Bag == nil {
		return
	}
	r.Bag.Add(Diagnostic{
		Severity: sev, Code: code, Category: CategoryError, Message: msg,
		Primary: primary, Notes: notes, Fixes: fixes,
	})
}

type onceKey struct {
	code  Code
	file  source.FileID
	start uint32
}

type onceReporter struct {
	next Reporter
	seen map[onceKey]struct{}
}

// Once drops repeated reports of one code at one offset. Восстановление
// парсера после ошибки может дважды споткнуться об один и тот же токен.
// Once(nil) is nil.
func Once(next Reporter) Reporter {
	if next == nil {
		return nil
	}
	return &onceReporter{next: next, seen: make(map[onceKey]struct{})}
}

func (r *onceReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note, fixes []Fix) {
	key := onceKey{code: code, file: primary.File, start: primary.Start}
	if _, dup := r.seen[key]; dup {
		return
	}
	r.seen[key] = struct{}{}
	r.next.Report(code, sev, primary, msg, notes, fixes)
}

// ReportBuilder collects notes and fixes of one syntax error before Emit.
type ReportBuilder struct {
	reporter Reporter
	diag     Diagnostic
}

// ReportError starts an error report; nothing is sent until Emit.
func ReportError(r Reporter, code Code, primary source.Span, msg string) *ReportBuilder {
	return &ReportBuilder{reporter: r, diag: New(SevError, code, primary, msg)}
}

func (b *ReportBuilder) WithNote(sp source.Span, msg string) *ReportBuilder {
	b.diag = b.diag.WithNote(sp, msg)
	return b
}

func (b *ReportBuilder) WithFix(fix Fix) *ReportBuilder {
	b.diag = b.diag.WithFixSuggestion(fix)
	return b
}

// Emit sends the report once; later calls are no-ops.
func (b *ReportBuilder) Emit() {
	if b.reporter == nil {
		return
	}
	d := b.diag
	b.reporter.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes, d.Fixes)
	b.reporter = nil
}
