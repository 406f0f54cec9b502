package lsp

import (
	"context"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"bslint/internal/config"
	"bslint/internal/diag"
	"bslint/internal/driver"
	"bslint/internal/source"
	"bslint/internal/trace"
)

type document struct {
	uri     string
	version int
	text    string
	// seq растёт при каждом изменении текста
	seq uint64

	timer  *time.Timer
	cancel context.CancelFunc

	last *analysis
}

// analysis is the applied result for one text revision of a document.
type analysis struct {
	seq      uint64
	fileSet  *source.FileSet
	file     *source.File
	diags    []diag.Diagnostic
	excluded bool
}

func newDocument(uri string, version int, text string) *document {
	return &document{uri: uri, version: version, text: text, seq: 1}
}

// current returns the last analysis if it still matches the document text.
func (d *document) current() *analysis {
	if d.last == nil || d.last.seq != d.seq {
		return nil
	}
	return d.last
}

// stopLocked cancels a pending or running analysis of doc. Caller holds s.mu.
func (s *Server) stopLocked(doc *document) {
	if doc.timer != nil {
		if doc.timer.Stop() {
			// колбэк таймера не запустится, его Done не будет
			s.wg.Done()
		}
		doc.timer = nil
	}
	if doc.cancel != nil {
		doc.cancel()
		doc.cancel = nil
	}
}

// scheduleAnalysis (re)starts analysis of uri after delay, superseding any
// analysis already pending for it.
func (s *Server) scheduleAnalysis(uri string, delay time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.docs[uri]
	if doc == nil || s.shutdownRequested {
		return
	}
	s.stopLocked(doc)
	seq := doc.seq
	ctx, cancel := context.WithCancel(s.baseCtx)
	doc.cancel = cancel
	s.wg.Add(1)
	doc.timer = time.AfterFunc(delay, func() {
		defer s.wg.Done()
		defer cancel()
		s.analyzeDocument(ctx, uri, seq)
	})
}

// analyzeDocument checks the text of uri at revision seq and publishes the
// findings unless the document changed meanwhile.
func (s *Server) analyzeDocument(ctx context.Context, uri string, seq uint64) {
	s.mu.Lock()
	doc := s.docs[uri]
	if doc == nil || doc.seq != seq {
		s.mu.Unlock()
		return
	}
	text := doc.text
	s.mu.Unlock()

	path := uriToPath(uri)
	cfg := s.configFor(path)
	name, included := displayName(path, cfg)

	started := time.Now()
	res, err := driver.AnalyzeSource(trace.WithTracer(ctx, s.tracer), name, []byte(text), driver.Options{
		Config:         cfg,
		Registry:       s.registry,
		Jobs:           1,
		Fixes:          true,
		MaxDiagnostics: s.maxDiagnostics,
		ToolVersion:    s.toolVersion,
	})
	if err != nil {
		s.logf("analysis of %s failed: %v", uri, err)
		return
	}
	if ctx.Err() != nil {
		return
	}
	fr := res.Files[0]
	if fr.Canceled {
		return
	}
	for _, f := range fr.Faults {
		s.logf("%s: %v", name, f)
	}
	a := &analysis{
		seq:      seq,
		fileSet:  res.FileSet,
		file:     res.FileSet.Get(fr.FileID),
		diags:    fr.Diagnostics,
		excluded: !included,
	}
	if a.excluded {
		a.diags = nil
	}

	s.mu.Lock()
	doc = s.docs[uri]
	if doc == nil || doc.seq != seq {
		s.mu.Unlock()
		return
	}
	doc.last = a
	version := doc.version
	list := s.toLSPDiagnostics(uri, a)
	// публикация под s.mu: более поздний анализ не обгонит этот
	err = s.sendPublish(uri, &version, list)
	s.mu.Unlock()
	if err != nil {
		s.logf("failed to publish diagnostics: %v", err)
	}
	s.logf("checked %s in %s: %d finding(s)", name, time.Since(started).Round(time.Millisecond), len(list))
}

// configFor returns the configuration governing path, discovering and caching
// it per directory.
func (s *Server) configFor(path string) *config.Config {
	if s.fixedConfig != nil {
		return s.fixedConfig
	}
	s.mu.Lock()
	dir := s.workspaceRoot
	s.mu.Unlock()
	if path != "" {
		dir = filepath.Dir(path)
	}
	if dir == "" {
		dir = "."
	}

	s.mu.Lock()
	cfg, ok := s.configs[dir]
	s.mu.Unlock()
	if ok {
		return cfg
	}
	cfg, _, err := config.Discover(dir)
	if err != nil {
		s.logf("config for %s: %v", dir, err)
		cfg = config.Default()
		cfg.Root = dir
	}
	s.mu.Lock()
	s.configs[dir] = cfg
	s.mu.Unlock()
	return cfg
}

// displayName returns the name the driver sees for path (relative to the
// configuration root when possible) and whether the configuration includes it.
func displayName(path string, cfg *config.Config) (string, bool) {
	if path == "" {
		return "Module.bsl", true
	}
	if cfg.Root != "" {
		if rel, err := filepath.Rel(cfg.Root, path); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			rel = filepath.ToSlash(rel)
			return rel, cfg.Matches(rel)
		}
	}
	return filepath.Base(path), true
}

func (s *Server) toLSPDiagnostics(uri string, a *analysis) []lspDiagnostic {
	out := make([]lspDiagnostic, 0, len(a.diags))
	for _, d := range a.diags {
		out = append(out, s.toLSPDiagnostic(uri, a, d))
	}
	return out
}

func (s *Server) toLSPDiagnostic(uri string, a *analysis, d diag.Diagnostic) lspDiagnostic {
	id := d.Code.ID()
	out := lspDiagnostic{
		Range:    rangeForSpan(a.file, d.Primary),
		Severity: lspSeverity(d.Severity),
		Code:     id,
		Source:   "bslint",
		Message:  d.Message,
	}
	if def, ok := s.registry.Lookup(id); ok {
		if slices.Contains(def.Descriptor.Tags, "unused") {
			out.Tags = append(out.Tags, tagUnnecessary)
		}
		if slices.Contains(def.Descriptor.Tags, "deprecated") {
			out.Tags = append(out.Tags, tagDeprecated)
		}
	}
	for _, n := range d.Notes {
		if n.Span.File != d.Primary.File {
			continue
		}
		out.RelatedInformation = append(out.RelatedInformation, diagnosticRelatedInformation{
			Location: location{URI: uri, Range: rangeForSpan(a.file, n.Span)},
			Message:  n.Msg,
		})
	}
	return out
}

func lspSeverity(sev diag.Severity) int {
	switch sev {
	case diag.SevError:
		return severityError
	case diag.SevWarning:
		return severityWarning
	case diag.SevInfo:
		return severityInformation
	default:
		return severityHint
	}
}
