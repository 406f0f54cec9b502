package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"bslint/internal/config"
	"bslint/internal/diag"
	"bslint/internal/rule"
)

const moduleWithProblems = `// Обрабатывает значение.
Процедура Обработать(Знач А) Экспорт
	Б = ?(Истина, А, А);
	Если НЕ НЕ А Тогда
		В = А * 42;
	КонецЕсли;
КонецПроцедуры
`

const cleanModule = `// Ничего не делает.
Процедура Пусто() Экспорт
	Возврат;
КонецПроцедуры
`

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

func testConfig(root string) *config.Config {
	cfg := config.Default()
	cfg.Root = root
	cfg.Language = "en"
	return cfg
}

func codes(diags []diag.Diagnostic) map[string]int {
	out := make(map[string]int)
	for _, d := range diags {
		out[d.Code.ID()]++
	}
	return out
}

// summary prints everything a finding carries except its Data payload.
func summary(diags []diag.Diagnostic) string {
	var b strings.Builder
	for _, d := range diags {
		fmt.Fprintf(&b, "%s %s %s %s %s\n", d.Code, d.Severity, d.Category, d.Primary, d.Message)
		for _, n := range d.Notes {
			fmt.Fprintf(&b, "  note %s %s\n", n.Span, n.Msg)
		}
		for _, f := range d.Fixes {
			fmt.Fprintf(&b, "  fix %q %s %s\n", f.Title, f.Kind, f.Applicability)
			for _, e := range f.Edits {
				fmt.Fprintf(&b, "    edit %s %q %q\n", e.Span, e.NewText, e.OldText)
			}
		}
	}
	return b.String()
}

func TestAnalyzeDir(t *testing.T) {
	root := writeTree(t, map[string]string{
		"CommonModules/Работа/Ext/Module.bsl": moduleWithProblems,
		"CommonModules/Чистый/Ext/Module.bsl": cleanModule,
		"vendor/Lib/Ext/Module.bsl":           moduleWithProblems,
		"README.md":                           "# readme",
	})
	cfg := testConfig(root)
	cfg.Exclude = []string{"vendor/**"}

	res, err := AnalyzeDir(context.Background(), root, Options{Config: cfg, Jobs: 2})
	if err != nil {
		t.Fatalf("AnalyzeDir: %v", err)
	}
	if len(res.Files) != 2 {
		t.Fatalf("want 2 files, got %d", len(res.Files))
	}
	if res.Files[0].Rel != "CommonModules/Работа/Ext/Module.bsl" || res.Files[1].Rel != "CommonModules/Чистый/Ext/Module.bsl" {
		t.Fatalf("unexpected order: %q, %q", res.Files[0].Rel, res.Files[1].Rel)
	}
	got := codes(res.Files[0].Diagnostics)
	for _, id := range []string{"UselessTernaryOperator", "DoubleNegatives", "MagicNumber"} {
		if got[id] != 1 {
			t.Fatalf("want one %s, got %v", id, got)
		}
	}
	if n := len(res.Files[1].Diagnostics); n != 0 {
		t.Fatalf("clean module: want no findings, got %s", summary(res.Files[1].Diagnostics))
	}
	if tm := res.Files[0].Timing; tm == nil || len(tm.Phases) != 3 || len(tm.Rules) == 0 {
		t.Fatalf("want timings for analysed file")
	}
	if len(res.Diagnostics()) != len(res.Files[0].Diagnostics) {
		t.Fatalf("merged diagnostics mismatch")
	}
}

func TestAnalyzeDirJobsDoNotChangeResult(t *testing.T) {
	files := make(map[string]string)
	for i := range 12 {
		src := cleanModule
		if i%2 == 0 {
			src = moduleWithProblems
		}
		files[fmt.Sprintf("CommonModules/М%02d/Ext/Module.bsl", i)] = src
	}
	root := writeTree(t, files)

	var want string
	for _, jobs := range []int{1, 4, 16} {
		res, err := AnalyzeDir(context.Background(), root, Options{Config: testConfig(root), Jobs: jobs, ParallelRules: jobs > 1})
		if err != nil {
			t.Fatalf("jobs=%d: %v", jobs, err)
		}
		var b strings.Builder
		for _, f := range res.Files {
			b.WriteString(f.Rel + "\n" + summary(f.Diagnostics))
		}
		if want == "" {
			want = b.String()
			continue
		}
		if b.String() != want {
			t.Fatalf("jobs=%d changed the result:\n%s\nwant:\n%s", jobs, b.String(), want)
		}
	}
}

func TestCacheRoundTrip(t *testing.T) {
	root := writeTree(t, map[string]string{
		"CommonModules/Работа/Ext/Module.bsl": moduleWithProblems,
	})
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	opts := Options{Config: testConfig(root), Cache: cache, Fixes: true, ToolVersion: "test"}

	first, err := AnalyzeDir(context.Background(), root, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.Files[0].Cached {
		t.Fatalf("first run must not be served from cache")
	}
	second, err := AnalyzeDir(context.Background(), root, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.Files[0].Cached {
		t.Fatalf("second run must be served from cache")
	}
	if got, want := summary(second.Files[0].Diagnostics), summary(first.Files[0].Diagnostics); got != want {
		t.Fatalf("cached diagnostics differ:\n%s\nwant:\n%s", got, want)
	}
	if strings.Join(second.Files[0].Rules, ",") != strings.Join(first.Files[0].Rules, ",") {
		t.Fatalf("cached rule list differs")
	}

	// другие настройки: другой ключ
	off := false
	opts.Config.Diagnostics["MagicNumber"] = rule.Settings{Enabled: &off}
	third, err := AnalyzeDir(context.Background(), root, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.Files[0].Cached {
		t.Fatalf("changed settings must miss the cache")
	}
	if codes(third.Files[0].Diagnostics)["MagicNumber"] != 0 {
		t.Fatalf("disabled rule still reported")
	}

	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	fourth, err := AnalyzeDir(context.Background(), root, opts)
	if err != nil {
		t.Fatal(err)
	}
	if fourth.Files[0].Cached {
		t.Fatalf("dropped cache must miss")
	}
}

func TestDiskCacheMissAndNil(t *testing.T) {
	var nilCache *DiskCache
	if err := nilCache.Put(Digest{1}, &DiskPayload{}); err != nil {
		t.Fatalf("nil cache Put: %v", err)
	}
	var p DiskPayload
	if hit, err := nilCache.Get(Digest{1}, &p); hit || err != nil {
		t.Fatalf("nil cache Get: %v %v", hit, err)
	}

	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if hit, err := cache.Get(Digest{2}, &p); hit || err != nil {
		t.Fatalf("empty cache: want miss, got %v %v", hit, err)
	}
	in := &DiskPayload{Path: "a.bsl", Rules: []string{"X"}, Diagnostics: []diag.Diagnostic{{Code: "X", Message: "m"}}}
	if err := cache.Put(Digest{2}, in); err != nil {
		t.Fatal(err)
	}
	var out DiskPayload
	hit, err := cache.Get(Digest{2}, &out)
	if err != nil || !hit {
		t.Fatalf("want hit, got %v %v", hit, err)
	}
	if out.Path != "a.bsl" || len(out.Diagnostics) != 1 || out.Diagnostics[0].Message != "m" {
		t.Fatalf("unexpected payload %+v", out)
	}
}

func TestSettingsDigest(t *testing.T) {
	base := Options{Config: config.Default(), ToolVersion: "1"}
	base.normalize()
	a, err := settingsDigest(&base)
	if err != nil {
		t.Fatal(err)
	}
	again, _ := settingsDigest(&base)
	if a != again {
		t.Fatalf("digest is not stable")
	}

	other := base
	other.ToolVersion = "2"
	if b, _ := settingsDigest(&other); b == a {
		t.Fatalf("tool version must change the digest")
	}

	withParams := base
	withParams.Config = config.Default()
	withParams.Config.Diagnostics["LineLength"] = rule.Settings{Params: map[string]any{"maxLineLength": 80, "a": "b"}}
	c, _ := settingsDigest(&withParams)
	if c == a {
		t.Fatalf("params must change the digest")
	}
	d, _ := settingsDigest(&withParams)
	if c != d {
		t.Fatalf("digest with params is not stable")
	}
}

func TestProgressEvents(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a/Module.bsl": cleanModule,
		"b/Module.bsl": moduleWithProblems,
		"c/Module.bsl": cleanModule,
	})
	var (
		mu     sync.Mutex
		events []Event
	)
	sink := SinkFunc(func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev)
	})
	res, err := AnalyzeDir(context.Background(), root, Options{Config: testConfig(root), Progress: sink, Jobs: 3})
	if err != nil {
		t.Fatal(err)
	}
	done := make(map[string]int)
	for _, ev := range events {
		if ev.Status == StatusDone {
			done[ev.File] = ev.Found
		}
	}
	if len(done) != 3 {
		t.Fatalf("want a done event per file, got %v", done)
	}
	for _, f := range res.Files {
		if done[f.Path] != len(f.Diagnostics) {
			t.Fatalf("%s: event found=%d, result has %d", f.Path, done[f.Path], len(f.Diagnostics))
		}
	}
}

func TestAnalyzeSourceAndFile(t *testing.T) {
	cfg := testConfig("")
	res, err := AnalyzeSource(context.Background(), "stdin.bsl", []byte(moduleWithProblems), Options{Config: cfg})
	if err != nil {
		t.Fatal(err)
	}
	if codes(res.Files[0].Diagnostics)["DoubleNegatives"] != 1 {
		t.Fatalf("stdin: want DoubleNegatives, got %s", summary(res.Files[0].Diagnostics))
	}

	root := writeTree(t, map[string]string{"x.bsl": moduleWithProblems})
	fileRes, err := AnalyzeFile(context.Background(), filepath.Join(root, "x.bsl"), Options{Config: testConfig(root)})
	if err != nil {
		t.Fatal(err)
	}
	if fileRes.Files[0].Rel != "x.bsl" {
		t.Fatalf("rel = %q", fileRes.Files[0].Rel)
	}
	if got, want := summary(fileRes.Files[0].Diagnostics), summary(res.Files[0].Diagnostics); got != want {
		t.Fatalf("file and source runs differ:\n%s\nwant:\n%s", got, want)
	}

	if _, err := AnalyzeFile(context.Background(), filepath.Join(root, "missing.bsl"), Options{Config: testConfig(root)}); err == nil {
		t.Fatalf("missing file must fail")
	}
}

func TestMaxDiagnosticsAndCancel(t *testing.T) {
	root := writeTree(t, map[string]string{"x.bsl": moduleWithProblems})
	res, err := AnalyzeFile(context.Background(), filepath.Join(root, "x.bsl"), Options{Config: testConfig(root), MaxDiagnostics: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Files[0].Diagnostics) != 1 || !res.Files[0].Truncated {
		t.Fatalf("want one finding and truncated flag, got %d", len(res.Files[0].Diagnostics))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err = AnalyzeDir(ctx, root, Options{Config: testConfig(root)})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Canceled() {
		t.Fatalf("canceled context must mark the result")
	}
}

func TestLoadFailure(t *testing.T) {
	fr := loadFailure("a.bsl", "a.bsl", 3, errors.New("permission denied"))
	if len(fr.Diagnostics) != 1 || fr.Diagnostics[0].Code != diag.IOLoadFileError || fr.Diagnostics[0].Primary.File != 3 {
		t.Fatalf("unexpected load failure result %+v", fr)
	}
	if fr.Diagnostics[0].Severity != diag.SevError {
		t.Fatalf("load failure must be an error")
	}
}

func TestListFiles(t *testing.T) {
	root := writeTree(t, map[string]string{
		"a/Module.bsl":       "",
		"a/script.os":        "",
		"a/notes.txt":        "",
		"gen/Module.bsl":     "",
		".git/objects/x.bsl": "",
	})
	cfg := testConfig(root)
	cfg.Exclude = []string{"gen"}
	files, err := ListFiles(root, cfg)
	if err != nil {
		t.Fatal(err)
	}
	var rels []string
	for _, f := range files {
		rels = append(rels, relTo(root, f))
	}
	if got := strings.Join(rels, ","); got != "a/Module.bsl,a/script.os" {
		t.Fatalf("ListFiles = %s", got)
	}
}

func TestDiskCacheCorruptEntryAndDrop(t *testing.T) {
	cache, err := OpenDiskCacheAt(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	key := Digest{0xab, 0xcd}
	path := cache.entry(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte{0xc1, 0xff}, 0o600); err != nil {
		t.Fatal(err)
	}
	var p DiskPayload
	if hit, err := cache.Get(key, &p); hit || err == nil {
		t.Fatalf("corrupt entry: want error, got hit=%v err=%v", hit, err)
	}

	if err := cache.Put(key, &DiskPayload{Path: "b.bsl"}); err != nil {
		t.Fatal(err)
	}
	if err := cache.DropAll(); err != nil {
		t.Fatal(err)
	}
	if hit, err := cache.Get(key, &p); hit || err != nil {
		t.Fatalf("dropped entry: want miss, got %v %v", hit, err)
	}
	if err := cache.Put(key, &DiskPayload{Path: "c.bsl"}); err != nil {
		t.Fatalf("cache must stay usable after DropAll: %v", err)
	}
	if hit, _ := cache.Get(key, &p); !hit || p.Path != "c.bsl" {
		t.Fatalf("want c.bsl, got hit=%v %+v", hit, p)
	}
}
