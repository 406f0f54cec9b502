package lsp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"bslint/internal/diag"
	"bslint/internal/fix"
)

func (s *Server) handleCodeAction(msg *rpcMessage) error {
	var params codeActionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, "invalid params")
	}
	uri := canonicalURI(params.TextDocument.URI)
	s.mu.Lock()
	var a *analysis
	if doc := s.docs[uri]; doc != nil {
		a = doc.current()
	}
	s.mu.Unlock()
	if a == nil {
		// текст изменился после анализа: смещения исправлений устарели
		return s.sendResponse(msg.ID, []codeAction{})
	}
	actions := make([]codeAction, 0)
	if wantKind(params.Context.Only, kindQuickFix) {
		actions = append(actions, s.quickFixes(uri, a, params.Range)...)
	}
	if wantKind(params.Context.Only, kindFixAll) {
		if act, ok := s.fixAll(uri, a); ok {
			actions = append(actions, act)
		}
	}
	return s.sendResponse(msg.ID, actions)
}

// wantKind reports whether kind passes the client's "only" filter, which
// matches by hierarchical prefix.
func wantKind(only []string, kind string) bool {
	if len(only) == 0 {
		return true
	}
	for _, k := range only {
		if k == kind || strings.HasPrefix(kind, k+".") {
			return true
		}
	}
	return false
}

// quickFixes returns one action per fix of every finding overlapping rng.
func (s *Server) quickFixes(uri string, a *analysis, rng lspRange) []codeAction {
	var out []codeAction
	for _, d := range a.diags {
		if len(d.Fixes) == 0 {
			continue
		}
		ld := s.toLSPDiagnostic(uri, a, d)
		if !overlaps(ld.Range, rng) {
			continue
		}
		for _, f := range d.Fixes {
			edits := make([]textEdit, 0, len(f.Edits))
			for _, e := range f.Edits {
				if e.Span.File != d.Primary.File {
					continue
				}
				edits = append(edits, textEdit{Range: rangeForSpan(a.file, e.Span), NewText: e.NewText})
			}
			if len(edits) == 0 {
				continue
			}
			out = append(out, codeAction{
				Title:       fmt.Sprintf("%s (%s)", f.Title, ld.Code),
				Kind:        kindQuickFix,
				Diagnostics: []lspDiagnostic{ld},
				IsPreferred: f.IsPreferred,
				Edit:        &workspaceEdit{Changes: map[string][]textEdit{uri: edits}},
			})
		}
	}
	return out
}

// fixAll applies every always-safe fix of the document at once and offers
// the result as a single whole-document edit in the document's line endings.
func (s *Server) fixAll(uri string, a *analysis) (codeAction, bool) {
	if len(a.diags) == 0 {
		return codeAction{}, false
	}
	diags := make([]diag.Diagnostic, len(a.diags))
	for i, d := range a.diags {
		diags[i] = d.Clone()
	}
	res, err := fix.Apply(a.fileSet, diags, fix.ApplyOptions{Mode: fix.ApplyModeAll, DryRun: true})
	if err != nil {
		if !errors.Is(err, fix.ErrNoFixes) {
			s.logf("fix all for %s: %v", uri, err)
		}
		return codeAction{}, false
	}
	if len(res.FileChanges) == 0 {
		return codeAction{}, false
	}
	change := res.FileChanges[0]
	whole := lspRange{End: positionForOffset(a.file, toUint32(len(a.file.Content)))}
	return codeAction{
		Title: fmt.Sprintf("Fix all auto-fixable problems (%d)", len(res.Applied)),
		Kind:  kindFixAll,
		Edit: &workspaceEdit{Changes: map[string][]textEdit{
			uri: {{Range: whole, NewText: string(change.After)}},
		}},
	}, true
}
