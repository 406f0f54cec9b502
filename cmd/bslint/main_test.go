package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
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

const commentModule = `//Ничего не делает.
Процедура Пусто() Экспорт
	Возврат;
КонецПроцедуры
`

// resetFlags returns every flag of the tree to its default; commands are
// package globals and keep values between executions.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	traceCleanup()
	traceCleanup = func() {}
	return out.String(), errOut.String(), err
}

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

func TestCheckShortFindings(t *testing.T) {
	root := writeTree(t, map[string]string{
		".bslint.toml":                   "language = \"en\"\n",
		"src/CommonModules/A/Module.bsl": moduleWithProblems,
		"src/CommonModules/B/Module.bsl": cleanModule,
	})

	out, _, err := execute(t, "", "check", "--format", "short", "--fail-on", "hint", root)
	if !errors.Is(err, errFindings) {
		t.Fatalf("expected findings error, got %v", err)
	}
	for _, want := range []string{"UselessTernaryOperator", "DoubleNegatives", "MagicNumber", "src/CommonModules/A/Module.bsl:3:"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
	if strings.Contains(out, "CommonModules/B") {
		t.Fatalf("clean module must not be reported:\n%s", out)
	}

	// по умолчанию падаем только на ошибках
	if _, _, err := execute(t, "", "check", "--format", "short", root); err != nil {
		t.Fatalf("default --fail-on error must pass, got %v", err)
	}
}

func TestCheckGoldenFormat(t *testing.T) {
	root := writeTree(t, map[string]string{
		".bslint.toml": "language = \"en\"\n",
		"A.bsl":        moduleWithProblems,
	})
	out, _, err := execute(t, "", "check", "--format", "golden", "--only", "MagicNumber", root)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if want := "info MagicNumber A.bsl:5:11 Magic number: 42\n"; out != want {
		t.Fatalf("want %q, got %q", want, out)
	}
}

func TestCheckPathMode(t *testing.T) {
	root := writeTree(t, map[string]string{
		".bslint.toml":                   "language = \"en\"\n",
		"src/CommonModules/A/Module.bsl": moduleWithProblems,
	})
	out, _, err := execute(t, "", "check", "--format", "short", "--only", "MagicNumber", "--path-mode", "base", root)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if !strings.HasPrefix(out, "Module.bsl:5:11: ") {
		t.Fatalf("basename mode must drop directories, got %q", out)
	}
	if _, _, err := execute(t, "", "check", "--path-mode", "sideways", root); err == nil {
		t.Fatalf("unknown path mode must fail")
	}
}

func TestCheckJSONPerFile(t *testing.T) {
	root := writeTree(t, map[string]string{
		".bslint.toml": "language = \"en\"\n",
		"A.bsl":        moduleWithProblems,
		"B.bsl":        cleanModule,
	})
	out, _, err := execute(t, "", "check", "--format", "json", "--fail-on", "none", root)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	var byFile map[string]struct {
		Count int `json:"count"`
	}
	if err := json.Unmarshal([]byte(out), &byFile); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out)
	}
	if len(byFile) != 2 || byFile["A.bsl"].Count != 3 || byFile["B.bsl"].Count != 0 {
		t.Fatalf("unexpected json: %s", out)
	}
}

func TestCheckStdinAndOnly(t *testing.T) {
	out, _, err := execute(t, moduleWithProblems, "check", "-", "--format", "short", "--only", "MagicNumber", "--fail-on", "hint")
	if !errors.Is(err, errFindings) {
		t.Fatalf("expected findings error, got %v", err)
	}
	if !strings.Contains(out, "MagicNumber") || strings.Contains(out, "DoubleNegatives") {
		t.Fatalf("--only must restrict the rules:\n%s", out)
	}
	if !strings.Contains(out, "Module.bsl:5:") {
		t.Fatalf("stdin name missing:\n%s", out)
	}
}

func TestCheckRejectsBadFlags(t *testing.T) {
	root := writeTree(t, map[string]string{"A.bsl": cleanModule})
	if _, _, err := execute(t, "", "check", "--format", "xml", root); err == nil {
		t.Fatalf("unknown format must fail")
	}
	if _, _, err := execute(t, "", "check", "--fail-on", "fatal", root); err == nil {
		t.Fatalf("unknown --fail-on must fail")
	}
	if _, _, err := execute(t, "", "check", "--ui", "maybe", root); err == nil {
		t.Fatalf("unknown --ui must fail")
	}
	if _, _, err := execute(t, "", "check", filepath.Join(root, "missing.bsl")); err == nil {
		t.Fatalf("missing path must fail")
	}
}

func TestFixPreviewThenApply(t *testing.T) {
	root := writeTree(t, map[string]string{
		".bslint.toml": "language = \"en\"\n",
		"Module.bsl":   commentModule,
	})
	path := filepath.Join(root, "Module.bsl")

	out, _, err := execute(t, "", "fix", "--all", "--preview", "--only", "SpaceAtStartComment", path)
	if err != nil {
		t.Fatalf("fix --preview: %v", err)
	}
	for _, want := range []string{"Would apply 1 fix(es)", "--- a/Module.bsl", "-//Ничего не делает.", "+// Ничего не делает."} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}
	if data, _ := os.ReadFile(path); string(data) != commentModule {
		t.Fatalf("preview must not write the file")
	}

	out, _, err = execute(t, "", "fix", "--all", "--only", "SpaceAtStartComment", path)
	if err != nil {
		t.Fatalf("fix: %v", err)
	}
	if !strings.Contains(out, "Updated files:") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "// Ничего не делает.\n") {
		t.Fatalf("file not fixed:\n%s", data)
	}

	out, _, err = execute(t, "", "fix", "--all", "--only", "SpaceAtStartComment", path)
	if err != nil || !strings.Contains(out, "No applicable fixes found.") {
		t.Fatalf("second run: err=%v out=%s", err, out)
	}
}

func TestFixFlagConflicts(t *testing.T) {
	root := writeTree(t, map[string]string{"Module.bsl": cleanModule})
	if _, _, err := execute(t, "", "fix", "--all", "--once", root); err == nil {
		t.Fatalf("--all with --once must fail")
	}
	if _, _, err := execute(t, "", "fix", "--id", "x", root); err == nil {
		t.Fatalf("--id on a directory must fail")
	}
}

func TestRulesListAndDetails(t *testing.T) {
	out, _, err := execute(t, "", "rules", "--format", "json")
	if err != nil {
		t.Fatalf("rules: %v", err)
	}
	var items []ruleJSON
	if err := json.Unmarshal([]byte(out), &items); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	ids := make(map[string]ruleJSON, len(items))
	for _, it := range items {
		ids[it.ID] = it
	}
	magic, ok := ids["MagicNumber"]
	if !ok || len(magic.Params) == 0 {
		t.Fatalf("MagicNumber with params expected, got %+v", magic)
	}
	if _, ok := ids["ParseError"]; !ok {
		t.Fatalf("ParseError missing from %d rules", len(items))
	}

	out, _, err = execute(t, "", "rules", "magicnumber")
	if err != nil {
		t.Fatalf("rules magicnumber: %v", err)
	}
	if !strings.HasPrefix(out, "MagicNumber (") || !strings.Contains(out, "  param ") {
		t.Fatalf("details:\n%s", out)
	}

	if _, _, err := execute(t, "", "rules", "NoSuchRule"); err == nil {
		t.Fatalf("unknown rule id must fail")
	}

	out, _, err = execute(t, "", "rules")
	if err != nil || !strings.HasPrefix(out, "ID") {
		t.Fatalf("table: err=%v\n%s", err, out)
	}
}

func TestRulesCheckConfig(t *testing.T) {
	root := writeTree(t, map[string]string{
		".bslint.toml": `language = "en"

[diagnostics]
NoSuchRule = false

[diagnostics.MagicNumber]
unknownKey = 1

[diagnostics.LineLength]
maxLineLength = "long"
`,
		"ok.toml": "[diagnostics]\nMagicNumber = false\n",
	})

	out, _, err := execute(t, "", "rules", "--check-config", "--config", filepath.Join(root, ".bslint.toml"))
	if !errors.Is(err, errFindings) {
		t.Fatalf("expected findings error, got %v", err)
	}
	for _, want := range []string{"diagnostics.NoSuchRule: unknown rule", "diagnostics.MagicNumber.unknownKey: unknown parameter", "diagnostics.LineLength.maxLineLength:"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in:\n%s", want, out)
		}
	}

	out, _, err = execute(t, "", "rules", "--check-config", "--config", filepath.Join(root, "ok.toml"))
	if err != nil || !strings.HasSuffix(out, ": ok\n") {
		t.Fatalf("valid config: err=%v\n%s", err, out)
	}
}

func TestTokenizeAndParse(t *testing.T) {
	root := writeTree(t, map[string]string{"Module.bsl": "А = 1; // к\n"})
	path := filepath.Join(root, "Module.bsl")

	out, _, err := execute(t, "", "tokenize", "--hidden", path)
	if err != nil {
		t.Fatalf("tokenize: %v", err)
	}
	if !strings.Contains(out, "LineComment") || !strings.Contains(out, "EOF") {
		t.Fatalf("tokens:\n%s", out)
	}

	out, _, err = execute(t, "", "parse", "--format", "sexpr", path)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !strings.Contains(out, "Assignment") {
		t.Fatalf("tree:\n%s", out)
	}

	bad := filepath.Join(root, "Bad.bsl")
	if err := os.WriteFile(bad, []byte("Если А Тогда\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	_, errOut, err := execute(t, "", "parse", bad)
	if !errors.Is(err, errFindings) || !strings.Contains(errOut, "If opened here") {
		t.Fatalf("syntax errors must be reported with notes: err=%v stderr=%q", err, errOut)
	}

	out, _, err = execute(t, "Б = 2;", "tokenize", "-")
	if err != nil || !strings.Contains(out, "Ident") {
		t.Fatalf("tokenize from stdin: %v\n%s", err, out)
	}
}

func TestVersionJSON(t *testing.T) {
	out, _, err := execute(t, "", "version", "--format", "json", "--full")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	var payload versionPayload
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if payload.Tool != "bslint" || payload.Version == "" || payload.GitCommit == "" || payload.Rules == 0 {
		t.Fatalf("payload = %+v", payload)
	}
	if _, _, err := execute(t, "", "version", "--format", "xml"); err == nil {
		t.Fatalf("unknown format must fail")
	}
}

func TestReadUIMode(t *testing.T) {
	for in, want := range map[string]uiMode{"": uiModeAuto, "AUTO": uiModeAuto, "on": uiModeOn, " off ": uiModeOff} {
		got, err := readUIMode(in)
		if err != nil || got != want {
			t.Fatalf("readUIMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := readUIMode("sometimes"); err == nil {
		t.Fatalf("invalid mode must fail")
	}
	if !shouldUseTUI(uiModeOn) || shouldUseTUI(uiModeOff) {
		t.Fatalf("explicit modes must win")
	}
}

func TestTraceSetup(t *testing.T) {
	root := writeTree(t, map[string]string{"A.bsl": cleanModule})
	tracePath := filepath.Join(root, "trace.ndjson")
	if _, _, err := execute(t, "", "check", "--trace", tracePath, "--trace-level", "detail", root); err != nil {
		t.Fatalf("check with trace: %v", err)
	}
	data, err := os.ReadFile(tracePath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "analyze_dir") {
		t.Fatalf("trace output missing driver span:\n%s", data)
	}
	if !strings.HasPrefix(string(data), "{") {
		t.Fatalf(".ndjson output must be JSON lines:\n%s", data)
	}
	if _, _, err := execute(t, "", "check", "--trace", tracePath, "--trace-format", "text", root); err != nil {
		t.Fatalf("check with text trace: %v", err)
	}
	if data, _ = os.ReadFile(tracePath); !strings.HasPrefix(string(data), "[") {
		t.Fatalf("--trace-format text must override the extension:\n%s", data)
	}
	if _, _, err := execute(t, "", "check", "--trace-level", "loud", root); err == nil {
		t.Fatalf("invalid trace level must fail")
	}
}

func lspFrames(msgs ...string) string {
	var b strings.Builder
	for _, m := range msgs {
		fmt.Fprintf(&b, "Content-Length: %d\r\n\r\n%s", len(m), m)
	}
	return b.String()
}

func TestLSPSession(t *testing.T) {
	root := writeTree(t, map[string]string{"Module.bsl": commentModule})
	uri := "file://" + filepath.ToSlash(filepath.Join(root, "Module.bsl"))
	open, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"method":  "textDocument/didOpen",
		"params": map[string]any{"textDocument": map[string]any{
			"uri": uri, "languageId": "bsl", "version": 1, "text": commentModule,
		}},
	})
	if err != nil {
		t.Fatal(err)
	}
	in := lspFrames(
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`,
		string(open),
		`{"jsonrpc":"2.0","id":2,"method":"textDocument/documentSymbol","params":{"textDocument":{"uri":"`+uri+`"}}}`,
		`{"jsonrpc":"2.0","id":3,"method":"shutdown"}`,
		`{"jsonrpc":"2.0","method":"exit"}`,
	)
	out, _, err := execute(t, in, "lsp", "--debounce", "1ms")
	if err != nil {
		t.Fatalf("lsp: %v", err)
	}
	for _, want := range []string{`"name":"bslint"`, `"name":"Пусто"`, `"jsonrpc":"2.0","id":3,"result":null`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in output:\n%s", want, out)
		}
	}

	if _, _, err := execute(t, lspFrames(`{"jsonrpc":"2.0","method":"exit"}`), "lsp"); err == nil {
		t.Fatalf("exit without shutdown must fail")
	}
}
