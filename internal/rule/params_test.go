package rule_test

import (
	"testing"

	"bslint/internal/rule"
)

var specs = []rule.ParamSpec{
	{Name: "maxLength", Type: rule.ParamInt, Default: 120},
	{Name: "checkComments", Type: rule.ParamBool, Default: true},
	{Name: "words", Type: rule.ParamStringList, Default: "ВерсияПлатформы,Тест"},
	{Name: "pattern", Type: rule.ParamPattern, Default: "^ok$"},
	{Name: "ratio", Type: rule.ParamFloat, Default: 0.5},
	{Name: "title", Type: rule.ParamString, Default: "x"},
}

func TestCompileParamsDefaults(t *testing.T) {
	p, issues := rule.CompileParams(specs, nil)
	if len(issues) != 0 {
		t.Fatalf("unexpected issues %v", issues)
	}
	if p.Int("maxLength") != 120 || !p.Bool("checkComments") || p.Float("ratio") != 0.5 || p.String("title") != "x" {
		t.Fatalf("defaults not applied")
	}
	if got := p.StringList("words"); len(got) != 2 || got[1] != "Тест" {
		t.Fatalf("unexpected list %v", got)
	}
	if _, ok := p.StringSet("words")["тест"]; !ok {
		t.Fatalf("string set must be case-insensitive")
	}
	if re := p.Pattern("pattern"); re == nil || !re.MatchString("OK") {
		t.Fatalf("pattern must compile case-insensitively")
	}
}

func TestCompileParamsFailsClosed(t *testing.T) {
	raw := map[string]any{
		"MaxLength":     "abc",
		"checkComments": "false",
		"words":         []any{"Один", "Два", "Три"},
		"pattern":       "([",
		"ratio":         int64(2),
		"unknown":       42,
	}
	p, issues := rule.CompileParams(specs, raw)
	if len(issues) != 2 {
		t.Fatalf("expected 2 issues, got %v", issues)
	}
	if p.Int("maxLength") != 120 {
		t.Fatalf("wrong type must fall back to default, got %d", p.Int("maxLength"))
	}
	if p.Bool("checkComments") {
		t.Fatalf("string bool must be parsed")
	}
	if len(p.StringList("words")) != 3 || p.Float("ratio") != 2 {
		t.Fatalf("list or float conversion failed")
	}
	if p.Pattern("pattern") != nil {
		t.Fatalf("invalid pattern must disable the parameter")
	}
}

func TestCompileParamsNumericForms(t *testing.T) {
	for _, v := range []any{int64(80), 80.0, "80", 80} {
		p, issues := rule.CompileParams(specs[:1], map[string]any{"maxLength": v})
		if len(issues) != 0 || p.Int("maxLength") != 80 {
			t.Fatalf("%T: got %d, issues %v", v, p.Int("maxLength"), issues)
		}
	}
	if _, issues := rule.CompileParams(specs[:1], map[string]any{"maxLength": 80.5}); len(issues) != 1 {
		t.Fatalf("fractional value must be rejected")
	}
}
