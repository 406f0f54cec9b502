// Package driver turns files and directories into analysis results: it loads
// sources, selects the configuration for each module, runs the engine over
// the files in parallel and reuses cached results when the inputs match.
package driver

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"bslint/internal/config"
	"bslint/internal/diag"
	"bslint/internal/engine"
	"bslint/internal/observ"
	"bslint/internal/rule"
	"bslint/internal/rules"
	"bslint/internal/source"
	"bslint/internal/trace"
)

type Options struct {
	// Config defaults to config.Default().
	Config *config.Config
	// Registry defaults to every shipped rule.
	Registry *rule.Registry
	// Only restricts the run to these rule ids.
	Only []string
	// Jobs bounds the number of files analysed at once; <= 0 means GOMAXPROCS.
	Jobs int
	// ParallelRules also runs the rules of one file concurrently.
	ParallelRules bool
	// Fixes attaches quick fixes to findings.
	Fixes bool
	// MaxDiagnostics caps findings per file; 0 means unlimited.
	MaxDiagnostics int
	Cache          *DiskCache
	Progress       ProgressSink
	// ToolVersion goes into cache keys so a new binary never reuses old results.
	ToolVersion string
}

// FileResult is the outcome of one file.
type FileResult struct {
	Path   string
	Rel    string // relative to the configuration root, used for matching and display
	FileID source.FileID
	// Syntax holds lexer and parser diagnostics; findings of the ParseError
	// rule cover the same problems in Diagnostics.
	Syntax      []diag.Diagnostic
	Diagnostics []diag.Diagnostic
	Faults      []engine.Fault
	Issues      []engine.Issue
	Rules       []string
	Truncated   bool
	Cached      bool
	Canceled    bool
	LoadErr     error
	Timing      *observ.Report
}

type Result struct {
	FileSet *source.FileSet
	Files   []FileResult
}

// Diagnostics returns every finding of the run ordered by file then position.
func (r *Result) Diagnostics() []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, f := range r.Files {
		out = append(out, f.Diagnostics...)
	}
	diag.SortDiagnostics(out)
	return out
}

// Faults returns every recovered rule panic of the run.
func (r *Result) Faults() []engine.Fault {
	var out []engine.Fault
	for _, f := range r.Files {
		out = append(out, f.Faults...)
	}
	return out
}

// Count returns the number of findings with severity at least sev.
func (r *Result) Count(sev diag.Severity) int {
	n := 0
	for _, f := range r.Files {
		for _, d := range f.Diagnostics {
			if d.Severity >= sev {
				n++
			}
		}
	}
	return n
}

// Canceled reports whether any file was cut short by the context.
func (r *Result) Canceled() bool {
	for _, f := range r.Files {
		if f.Canceled {
			return true
		}
	}
	return false
}

func (o *Options) normalize() {
	if o.Config == nil {
		o.Config = config.Default()
	}
	if o.Registry == nil {
		o.Registry = rules.Default()
	}
	if o.Jobs <= 0 {
		o.Jobs = runtime.GOMAXPROCS(0)
	}
}

// AnalyzeFile checks a single file from disk.
func AnalyzeFile(ctx context.Context, path string, opts Options) (*Result, error) {
	opts.normalize()
	fileSet := source.NewFileSetWithBase(opts.Config.Root)
	id, err := fileSet.Load(path)
	if err != nil {
		return nil, err
	}
	rel := relTo(opts.Config.Root, path)
	digest, err := settingsDigest(&opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint settings: %w", err)
	}
	fr := analyzeOne(ctx, fileSet, id, rel, &opts, digest)
	return &Result{FileSet: fileSet, Files: []FileResult{fr}}, nil
}

// AnalyzeSource checks in-memory content, e.g. stdin. name is used for
// display and for deriving the module kind.
func AnalyzeSource(ctx context.Context, name string, content []byte, opts Options) (*Result, error) {
	opts.normalize()
	fileSet := source.NewFileSetWithBase(opts.Config.Root)
	id := fileSet.AddNormalized(name, content)
	fileSet.Get(id).Flags |= source.FileVirtual
	opts.Cache = nil
	fr := analyzeOne(ctx, fileSet, id, filepath.ToSlash(name), &opts, Digest{})
	return &Result{FileSet: fileSet, Files: []FileResult{fr}}, nil
}

// ListFiles returns the sorted source files under dir that the configuration
// includes. Excluded directories are not descended into.
func ListFiles(dir string, cfg *config.Config) ([]string, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	root := cfg.Root
	if root == "" {
		root = dir
	}
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel := relTo(root, path)
		if d.IsDir() {
			if path != dir && (d.Name() == ".git" || cfg.Excluded(rel)) {
				return filepath.SkipDir
			}
			return nil
		}
		if cfg.Matches(rel) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// AnalyzeDir checks every included file under dir in parallel. Results are
// ordered by path; a file that fails to load yields an IOLoadFileError finding.
func AnalyzeDir(ctx context.Context, dir string, opts Options) (*Result, error) {
	opts.normalize()
	if opts.Config.Root == "" {
		opts.Config.Root = dir
	}
	ctx, span := trace.Start(ctx, trace.ScopeDriver, "analyze_dir")
	span.Set("dir", dir)
	defer span.End("")

	files, err := ListFiles(dir, opts.Config)
	if err != nil {
		return nil, err
	}
	span.Set("files", strconv.Itoa(len(files)))

	fileSet := source.NewFileSetWithBase(opts.Config.Root)
	if len(files) == 0 {
		return &Result{FileSet: fileSet}, nil
	}
	digest, err := settingsDigest(&opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint settings: %w", err)
	}

	// FileSet не потокобезопасен на запись: сначала грузим всё последовательно
	fileIDs := make([]source.FileID, len(files))
	loadErrors := make(map[int]error)
	for i, path := range files {
		emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusQueued})
		id, err := fileSet.Load(path)
		if err != nil {
			loadErrors[i] = err
			// пустой виртуальный файл, чтобы у диагностики был FileID
			id = fileSet.AddVirtual(path, nil)
		}
		fileIDs[i] = id
	}

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]FileResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(opts.Jobs, len(files)))

	for i, path := range files {
		g.Go(func() error {
			rel := relTo(opts.Config.Root, path)
			if loadErr, failed := loadErrors[i]; failed {
				results[i] = loadFailure(path, rel, fileIDs[i], loadErr)
				emit(opts.Progress, Event{File: path, Stage: StageLoad, Status: StatusError, Err: loadErr})
				return nil
			}
			// Проверка отмены
			if gctx.Err() != nil {
				results[i] = FileResult{Path: path, Rel: rel, FileID: fileIDs[i], Canceled: true}
				return nil
			}
			results[i] = analyzeOne(gctx, fileSet, fileIDs[i], rel, &opts, digest)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return &Result{FileSet: fileSet, Files: results}, err
	}
	return &Result{FileSet: fileSet, Files: results}, nil
}

// Analyze dispatches on whether path is a directory.
func Analyze(ctx context.Context, path string, isDir bool, opts Options) (*Result, error) {
	if isDir {
		return AnalyzeDir(ctx, path, opts)
	}
	return AnalyzeFile(ctx, path, opts)
}

func loadFailure(path, rel string, id source.FileID, err error) FileResult {
	return FileResult{
		Path:    path,
		Rel:     rel,
		FileID:  id,
		LoadErr: err,
		Diagnostics: []diag.Diagnostic{{
			Severity: diag.SevError,
			Code:     diag.IOLoadFileError,
			Category: diag.CategoryError,
			Message:  "failed to load file: " + err.Error(),
			Primary:  source.Span{File: id},
		}},
	}
}

// analyzeOne runs the engine over one loaded file. It only reads from fileSet.
func analyzeOne(ctx context.Context, fileSet *source.FileSet, id source.FileID, rel string, opts *Options, settings Digest) FileResult {
	file := fileSet.Get(id)
	out := FileResult{Path: file.Path, Rel: rel, FileID: id}
	mctx := opts.Config.ModuleContext(rel)
	started := time.Now()

	tr := trace.FromContext(ctx)
	ctx, span := trace.Start(trace.WithUnit(ctx, rel), trace.ScopeDriver, "file")
	defer func() {
		span.Set("found", strconv.Itoa(len(out.Diagnostics))).End("")
	}()

	var key Digest
	if opts.Cache != nil {
		key = cacheKey(file.Hash, settings, mctx)
		var payload DiskPayload
		hit, err := opts.Cache.Get(key, &payload)
		if err != nil {
			trace.Point(tr, trace.ScopeDriver, "cache:get", err.Error())
		}
		if hit && payload.ContentHash == Digest(file.Hash) {
			res := fromPayload(&payload, id)
			out.Diagnostics, out.Issues, out.Rules = res.Diagnostics, res.Issues, res.Rules
			out.Syntax = rebindAll(payload.Syntax, id)
			out.Cached = true
			out.truncate(opts.MaxDiagnostics)
			emit(opts.Progress, Event{File: file.Path, Stage: StageCache, Status: StatusDone, Found: len(out.Diagnostics), Elapsed: time.Since(started)})
			return out
		}
	}

	timer := observ.NewTimer()
	emit(opts.Progress, Event{File: file.Path, Stage: StageParse, Status: StatusWorking})
	u, bag := engine.Prepare(file, engine.UnitOptions{
		Module:   mctx,
		Language: opts.Config.Language,
		Timer:    timer,
	})
	out.Syntax = bag.Snapshot()

	emit(opts.Progress, Event{File: file.Path, Stage: StageCheck, Status: StatusWorking})
	stop := timer.Measure("rules")
	res := engine.Run(ctx, u, engine.Options{
		Registry: opts.Registry,
		Settings: opts.Config.Diagnostics,
		Only:     opts.Only,
		Parallel: opts.ParallelRules,
		Jobs:     opts.Jobs,
		Fixes:    opts.Fixes,
		Timer:    timer,
	})
	stop(fmt.Sprintf("%d rules", len(res.Rules)))
	report := timer.Report()
	out.Timing = &report

	out.Diagnostics, out.Faults, out.Issues, out.Rules, out.Canceled = res.Diagnostics, res.Faults, res.Issues, res.Rules, res.Canceled
	out.truncate(opts.MaxDiagnostics)

	status := StatusDone
	if len(out.Faults) > 0 {
		status = StatusError
	}
	emit(opts.Progress, Event{File: file.Path, Stage: StageCheck, Status: status, Found: len(out.Diagnostics), Elapsed: time.Since(started)})

	// результат с паникой правила или прерванный отменой не кешируем
	if opts.Cache != nil && !out.Canceled && len(out.Faults) == 0 {
		payload := toPayload(file.Path, Digest(file.Hash), res)
		payload.Syntax = rebindAll(out.Syntax, 0)
		if err := opts.Cache.Put(key, payload); err != nil {
			trace.Point(tr, trace.ScopeDriver, "cache:put", err.Error())
		}
	}
	return out
}

func (r *FileResult) truncate(max int) {
	if max > 0 && len(r.Diagnostics) > max {
		r.Diagnostics = r.Diagnostics[:max]
		r.Truncated = true
	}
}

func rebindAll(diags []diag.Diagnostic, id source.FileID) []diag.Diagnostic {
	if len(diags) == 0 {
		return nil
	}
	out := make([]diag.Diagnostic, len(diags))
	for i, d := range diags {
		out[i] = rebind(d.Clone(), id)
	}
	return out
}

// relTo returns path relative to root with forward slashes, or path itself
// when it is not below root.
func relTo(root, path string) string {
	if root == "" {
		return filepath.ToSlash(path)
	}
	absRoot, err1 := filepath.Abs(root)
	absPath, err2 := filepath.Abs(path)
	if err := errors.Join(err1, err2); err != nil {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}
