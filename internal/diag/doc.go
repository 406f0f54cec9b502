// Package diag defines the diagnostic model shared by the lexer, the parser and
// every analysis rule.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – Hint, Info, Warning or Error.
//   - Code – stable string identifier: the rule id for rule findings, a Lex*/Syn*
//     constant for lexer and parser findings.
//   - Category – code smell, error, vulnerability or security hotspot.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – the canonical source.Span pointing to the issue.
//   - Notes – related locations, each with a short label ("duplicate of this
//     condition").
//   - Fixes – optional Fix records describing how to address the problem.
//   - Data – opaque payload stashed by the rule during detection and read back
//     when the rule computes its quick fixes.
//
// A Diagnostic is treated as immutable once it has been handed to a collector.
//
// # Fix suggestions
//
// Fix carries an ID, a Title, a Kind, an Applicability level, the IsPreferred
// flag and concrete TextEdits. TextEdit.OldText acts as an optional guard that
// the fix engine checks before applying an edit.
//
// # Emitting diagnostics
//
// The lexer and the parser report through a Reporter. BagReporter stores into
// a capped Bag, Once drops repeats produced by error recovery, and ReportError
// builds a report with notes. Rules do not use Reporter directly, they go
// through the per-run storage in internal/rule.
//
// Package diag does no formatting beyond the single-line golden form; rendering
// lives in internal/diagfmt and fix application in internal/fix.
package diag
