package rule_test

import (
	"testing"

	"bslint/internal/diag"
	"bslint/internal/module"
	"bslint/internal/rule"
)

type nopRule struct{}

func (nopRule) Check(*rule.Context) {}

func def(id string, activated bool, scope []module.Kind, compat string) rule.Definition {
	return rule.Definition{
		Descriptor: rule.Descriptor{
			ID:               id,
			Activated:        activated,
			Scope:            scope,
			MinCompatibility: module.MustParseVersion(compat),
		},
		New: func(rule.Params) rule.Rule { return nopRule{} },
	}
}

func ids(defs []rule.Definition) []string {
	out := make([]string, len(defs))
	for i, d := range defs {
		out[i] = d.Descriptor.ID
	}
	return out
}

func TestRegistryApplicable(t *testing.T) {
	reg := rule.NewRegistry()
	reg.Register(
		def("Zeta", true, nil, ""),
		def("Alpha", true, []module.Kind{module.KindObject}, ""),
		def("Beta", false, nil, ""),
		def("Gamma", true, nil, "8.3.6"),
	)
	if _, ok := reg.Lookup("alpha"); !ok {
		t.Fatalf("lookup must be case-insensitive")
	}
	if got := ids(reg.All()); len(got) != 4 || got[0] != "Alpha" || got[3] != "Zeta" {
		t.Fatalf("All must be sorted, got %v", got)
	}

	on, off := true, false
	tests := []struct {
		name     string
		kind     module.Kind
		compat   string
		settings map[string]rule.Settings
		want     string
	}{
		{"defaults", module.KindCommon, "", nil, "Gamma Zeta"},
		{"scope", module.KindObject, "", nil, "Alpha Gamma Zeta"},
		{"unknown kind", module.KindUnknown, "", nil, "Gamma Zeta"},
		{"old compat", module.KindCommon, "8.2.13", nil, "Zeta"},
		{"settings", module.KindCommon, "", map[string]rule.Settings{"beta": {Enabled: &on}, "Zeta": {Enabled: &off}}, "Beta Gamma"},
	}
	for _, tt := range tests {
		got := ids(reg.Applicable(tt.kind, module.MustParseVersion(tt.compat), tt.settings))
		joined := ""
		for i, id := range got {
			if i > 0 {
				joined += " "
			}
			joined += id
		}
		if joined != tt.want {
			t.Errorf("%s: want %q, got %q", tt.name, tt.want, joined)
		}
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	reg := rule.NewRegistry()
	reg.Register(def("One", true, nil, ""))
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on duplicate id")
		}
	}()
	reg.Register(def("ONE", true, nil, ""))
}

func TestEffectiveSeverity(t *testing.T) {
	desc := rule.Descriptor{Category: diag.CategoryCodeSmell, Severity: rule.SeverityMinor}
	if got := rule.EffectiveSeverity(desc, rule.Settings{}); got != diag.SevInfo {
		t.Fatalf("want info, got %v", got)
	}
	sev := diag.SevError
	if got := rule.EffectiveSeverity(desc, rule.Settings{Severity: &sev}); got != diag.SevError {
		t.Fatalf("override ignored, got %v", got)
	}
}
