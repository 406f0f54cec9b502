package engine

import (
	"context"
	"fmt"
	"testing"

	"bslint/internal/cst"
	"bslint/internal/diag"
	"bslint/internal/module"
	"bslint/internal/rule"
	"bslint/internal/rules"
	"bslint/internal/source"
	"bslint/internal/token"
)

const sample = `Процедура Обработать(Знач А)
	Б = ?(Истина, А, Ложь);
	Если НЕ НЕ А Тогда
		В = А * 42;
	ИначеЕсли А > 1 Тогда
	ИначеЕсли А > 1 Тогда
		Г = Найти(А, "х");
	КонецЕсли;
	НачатьТранзакцию();
	Б = 1
КонецПроцедуры
`

func prepare(t *testing.T, path, src string, kind module.Kind) *rule.Unit {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual(path, []byte(src)))
	u, _ := Prepare(file, UnitOptions{Module: module.Context{Kind: kind}, Language: "en"})
	return u
}

type countRule struct{}

func (countRule) Check(ctx *rule.Context) { ctx.Add(rule.At(ctx.Root())) }

type panicRule struct{}

func (panicRule) Check(ctx *rule.Context) {
	ctx.Add(rule.At(ctx.Root()))
	var m map[string]int
	m["boom"]++
}

func testRegistry() *rule.Registry {
	reg := rule.NewRegistry()
	reg.Register(
		rule.Definition{
			Descriptor: rule.Descriptor{ID: "Count", Category: diag.CategoryCodeSmell, Activated: true, Message: "count"},
			New:        func(rule.Params) rule.Rule { return countRule{} },
		},
		rule.Definition{
			Descriptor: rule.Descriptor{ID: "Panic", Category: diag.CategoryCodeSmell, Activated: true, Message: "panic"},
			New:        func(rule.Params) rule.Rule { return panicRule{} },
		},
	)
	return reg
}

func byRule(diags []diag.Diagnostic) map[string]int {
	out := make(map[string]int)
	for _, d := range diags {
		out[d.Code.ID()]++
	}
	return out
}

func TestRunIsolatesPanics(t *testing.T) {
	u := prepare(t, "Module.bsl", sample, module.KindCommon)
	for _, parallel := range []bool{false, true} {
		res := Run(context.Background(), u, Options{Registry: testRegistry(), Parallel: parallel})
		if len(res.Faults) != 1 || res.Faults[0].RuleID != "Panic" {
			t.Fatalf("parallel=%v: want one fault from Panic, got %+v", parallel, res.Faults)
		}
		if res.Faults[0].Stack == "" {
			t.Fatalf("fault must carry a stack")
		}
		got := byRule(res.Diagnostics)
		if got["Count"] != 1 || got["Panic"] != 0 {
			t.Fatalf("parallel=%v: unexpected findings %v", parallel, got)
		}
		if len(res.Rules) != 2 {
			t.Fatalf("both rules must be reported as run, got %v", res.Rules)
		}
	}
}

func render(diags []diag.Diagnostic) []string {
	out := make([]string, 0, len(diags))
	for _, d := range diags {
		out = append(out, fmt.Sprintf("%s %s %q fixes=%d", d.Code.ID(), d.Primary, d.Message, len(d.Fixes)))
	}
	return out
}

func TestParallelMatchesSequential(t *testing.T) {
	u := prepare(t, "Module.bsl", sample, module.KindCommon)
	opts := Options{Registry: rules.Default(), Fixes: true}
	seq := render(Run(context.Background(), u, opts).Diagnostics)

	opts.Parallel = true
	opts.Jobs = 4
	for i := 0; i < 5; i++ {
		par := render(Run(context.Background(), u, opts).Diagnostics)
		if len(par) != len(seq) {
			t.Fatalf("run %d: want %d findings, got %d\nseq=%v\npar=%v", i, len(seq), len(par), seq, par)
		}
		for j := range seq {
			if seq[j] != par[j] {
				t.Fatalf("run %d: finding %d differs\nseq: %s\npar: %s", i, j, seq[j], par[j])
			}
		}
	}
	if len(seq) == 0 {
		t.Fatalf("sample must produce findings")
	}
}

func TestRunFindsSampleProblems(t *testing.T) {
	u := prepare(t, "Module.bsl", sample, module.KindCommon)
	got := byRule(Run(context.Background(), u, Options{Registry: rules.Default()}).Diagnostics)
	want := map[string]int{
		"UselessTernaryOperator":         1,
		"DoubleNegatives":                1,
		"MagicNumber":                    1,
		"IfElseDuplicatedCondition":      1,
		"EmptyCodeBlock":                 1,
		"DeprecatedFind":                 1,
		"BeginTransactionBeforeTryCatch": 1,
		"SemicolonPresence":              1,
	}
	for id, n := range want {
		if got[id] != n {
			t.Fatalf("%s: want %d findings, got %d (all: %v)", id, n, got[id], got)
		}
	}
}

func TestSelect(t *testing.T) {
	reg := rules.Default()
	common := prepare(t, "Module.bsl", "", module.KindCommon)
	form := prepare(t, "Form/Module.bsl", "", module.KindForm)

	tests := []struct {
		name string
		u    *rule.Unit
		opts Options
		want []string
	}{
		{"only known ids", common, Options{Registry: reg, Only: []string{"MagicNumber", "NoSuchRule"}}, []string{"MagicNumber"}},
		{"only keeps scope", form, Options{Registry: reg, Only: []string{"ExecuteExternalCode", "MagicNumber"}}, []string{"MagicNumber"}},
		{"only ignores activation", common, Options{Registry: reg, Only: []string{"TooManyReturns"}}, []string{"TooManyReturns"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defs := Select(tt.u, tt.opts)
			if len(defs) != len(tt.want) {
				t.Fatalf("want %v, got %d definitions", tt.want, len(defs))
			}
			for i, d := range defs {
				if d.Descriptor.ID != tt.want[i] {
					t.Fatalf("want %v, got %s at %d", tt.want, d.Descriptor.ID, i)
				}
			}
		})
	}

	all := Select(common, Options{Registry: reg})
	for _, d := range all {
		if d.Descriptor.ID == "TooManyReturns" || d.Descriptor.ID == "BannedWord" {
			t.Fatalf("%s is not activated by default", d.Descriptor.ID)
		}
	}
	if findID(Select(form, Options{Registry: reg}), "ExecuteExternalCode") {
		t.Fatalf("ExecuteExternalCode must not run in form modules")
	}
	if !findID(all, "ExecuteExternalCode") {
		t.Fatalf("ExecuteExternalCode must run in common modules")
	}
}

func findID(defs []rule.Definition, id string) bool {
	for _, d := range defs {
		if d.Descriptor.ID == id {
			return true
		}
	}
	return false
}

func TestCompatibilityGate(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("Module.bsl", []byte("А = Найти(Б, \"в\");")))
	old := module.Context{Kind: module.KindCommon, Compatibility: module.MustParseVersion("8.3.5")}
	u, _ := Prepare(file, UnitOptions{Module: old})
	if findID(Select(u, Options{Registry: rules.Default()}), "DeprecatedFind") {
		t.Fatalf("DeprecatedFind must be off below 8.3.6")
	}
	u.Module.Compatibility = module.Version{}
	if !findID(Select(u, Options{Registry: rules.Default()}), "DeprecatedFind") {
		t.Fatalf("DeprecatedFind must run without a compatibility mode")
	}
}

func TestParseErrorRunsWithOtherRules(t *testing.T) {
	u := prepare(t, "Module.bsl", `Процедура А()
	Б = ;
	Если В Тогда
		Г();
КонецПроцедуры

Процедура Д()
	Е = Ж * 42;
КонецПроцедуры`, module.KindCommon)
	res := Run(context.Background(), u, Options{Registry: rules.Default()})
	got := byRule(res.Diagnostics)
	if got["ParseError"] == 0 {
		t.Fatalf("expected ParseError findings, got %v", got)
	}
	if got["MagicNumber"] != 1 {
		t.Fatalf("rules must still see the healthy method, got %v", got)
	}
	if len(res.Faults) != 0 {
		t.Fatalf("no rule may crash on broken input: %v", res.Faults)
	}
}

func TestRunAttachesFixes(t *testing.T) {
	u := prepare(t, "Module.bsl", "А = ?(Б, Истина, Ложь);", module.KindCommon)
	res := Run(context.Background(), u, Options{Registry: rules.Default(), Only: []string{"UselessTernaryOperator"}, Fixes: true})
	if len(res.Diagnostics) != 1 || len(res.Diagnostics[0].Fixes) != 1 {
		t.Fatalf("want one finding with one fix, got %v", render(res.Diagnostics))
	}
	if got := res.Diagnostics[0].Fixes[0].Edits[0].NewText; got != "Б" {
		t.Fatalf("want fix text Б, got %q", got)
	}

	res = Run(context.Background(), u, Options{Registry: rules.Default(), Only: []string{"UselessTernaryOperator"}})
	if len(res.Diagnostics) != 1 || len(res.Diagnostics[0].Fixes) != 0 {
		t.Fatalf("fixes must only be built on request")
	}
}

func TestRunRecordsParamIssues(t *testing.T) {
	u := prepare(t, "Module.bsl", "Имя = ПолучитьИмяВременногоФайла();", module.KindCommon)
	settings := map[string]rule.Settings{
		"missingtemporaryfiledeletion": {Params: map[string]any{"searchDeleteFileMethod": "(["}},
	}
	res := Run(context.Background(), u, Options{Registry: rules.Default(), Settings: settings, Only: []string{"MissingTemporaryFileDeletion"}})
	if len(res.Issues) != 1 || res.Issues[0].RuleID != "MissingTemporaryFileDeletion" || res.Issues[0].Name != "searchDeleteFileMethod" {
		t.Fatalf("want one issue for searchDeleteFileMethod, got %+v", res.Issues)
	}
	// без шаблона удаления ничего не освобождает файл
	if len(res.Diagnostics) != 1 {
		t.Fatalf("want the temp file reported, got %v", render(res.Diagnostics))
	}
}

func TestRunCanceled(t *testing.T) {
	u := prepare(t, "Module.bsl", sample, module.KindCommon)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res := Run(ctx, u, Options{Registry: testRegistry()})
	if !res.Canceled || len(res.Rules) != 0 || len(res.Diagnostics) != 0 {
		t.Fatalf("canceled run must not execute rules: %+v", res)
	}
}

func TestPrepare(t *testing.T) {
	u := prepare(t, "CommonModules/Общий/Ext/Module.bsl", "Процедура А() Экспорт\nКонецПроцедуры", module.KindUnknown)
	if u.Module.Kind != module.KindCommon {
		t.Fatalf("kind from path: got %s", u.Module.Kind)
	}
	if u.Symbols == nil || u.Refs == nil {
		t.Fatalf("symbols and refs must be built")
	}
	if u.Symbols.FindMethod("а") == nil {
		t.Fatalf("method lookup is case-insensitive")
	}
	if u.Root().Kind() != cst.KindFile {
		t.Fatalf("root must be a File node")
	}

	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("x.bsl", []byte("Procedure A()\nEndProcedure")))
	en, _ := Prepare(file, UnitOptions{SkipSymbols: true})
	if en.Symbols != nil || en.Language != "ru" {
		t.Fatalf("SkipSymbols/Language default not honoured: %+v", en)
	}
}

func TestRunRuleIsolatesTokenCheckPanic(t *testing.T) {
	u := prepare(t, "Module.bsl", sample, module.KindCommon)
	def := rule.Definition{
		Descriptor: rule.Descriptor{ID: "TokenPanic", Category: diag.CategoryCodeSmell, Activated: true, Message: "token"},
		New: func(rule.Params) rule.Rule {
			return &rule.Scanner{
				ChunkSize: 4,
				TokenCheck: func(_ *rule.Context, tok token.Token) (rule.TokenFinding, bool) {
					if tok.Text == "42" {
						var m map[string]int
						m["boom"]++
					}
					return rule.TokenFinding{}, false
				},
			}
		},
	}
	diags, _, fault := RunRule(context.Background(), u, def, rule.Settings{}, false)
	if fault == nil || fault.RuleID != "TokenPanic" {
		t.Fatalf("want a fault from TokenPanic, got %+v", fault)
	}
	if len(diags) != 0 {
		t.Fatalf("faulty rule must not report findings, got %d", len(diags))
	}
}
