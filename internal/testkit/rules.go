package testkit

import (
	"context"
	"strings"
	"testing"

	"bslint/internal/diag"
	"bslint/internal/engine"
	"bslint/internal/fix"
	"bslint/internal/module"
	"bslint/internal/rule"
	"bslint/internal/source"
)

// Unit parses src as a module at path with the given context.
func UnitAt(t testing.TB, path, src string, mctx module.Context) *rule.Unit {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual(path, []byte(src)))
	u, _ := engine.Prepare(file, engine.UnitOptions{Module: mctx, Language: "en"})
	return u
}

// Unit parses src as a common module.
func Unit(t testing.TB, src string) *rule.Unit {
	t.Helper()
	return UnitAt(t, "CommonModules/Test/Ext/Module.bsl", src, module.Context{Kind: module.KindCommon})
}

// Run runs def over u with raw params and fixes attached; a panic fails the test.
func Run(t testing.TB, def rule.Definition, u *rule.Unit, params map[string]any) []diag.Diagnostic {
	t.Helper()
	diags, _, fault := engine.RunRule(context.Background(), u, def, rule.Settings{Params: params}, true)
	if fault != nil {
		t.Fatalf("%v\n%s", fault, fault.Stack)
	}
	return diags
}

// Check parses src and runs def on it.
func Check(t testing.TB, def rule.Definition, src string, params map[string]any) []diag.Diagnostic {
	t.Helper()
	return Run(t, def, Unit(t, src), params)
}

// ApplyFixes applies the first fix of every finding to the unit's source.
func ApplyFixes(t testing.TB, u *rule.Unit, diags []diag.Diagnostic) string {
	t.Helper()
	var edits []diag.TextEdit
	for _, d := range diags {
		if len(d.Fixes) > 0 {
			edits = append(edits, d.Fixes[0].Edits...)
		}
	}
	out, err := fix.ApplyToContent(u.File.Content, edits)
	if err != nil {
		t.Fatalf("apply fixes: %v", err)
	}
	return string(out)
}

// FixText returns the replacement text of the single edit of the first fix.
func FixText(t testing.TB, d diag.Diagnostic) string {
	t.Helper()
	if len(d.Fixes) == 0 || len(d.Fixes[0].Edits) != 1 {
		t.Fatalf("expected one fix with one edit, got %+v", d.Fixes)
	}
	return d.Fixes[0].Edits[0].NewText
}

// Lines returns the 1-based start lines of diags.
func Lines(u *rule.Unit, diags []diag.Diagnostic) []int {
	out := make([]int, 0, len(diags))
	for _, d := range diags {
		line, _ := u.File.Position(d.Primary.Start)
		out = append(out, int(line))
	}
	return out
}

// Summary is a compact "line:message" list for failure output.
func Summary(u *rule.Unit, diags []diag.Diagnostic) string {
	parts := make([]string, 0, len(diags))
	for _, d := range diags {
		line, _ := u.File.Position(d.Primary.Start)
		parts = append(parts, strings.TrimSpace(d.Message)+"@"+itoa(int(line)))
	}
	return "[" + strings.Join(parts, "; ") + "]"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
