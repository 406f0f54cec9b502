package rule

import (
	"fmt"
	"sort"

	"bslint/internal/diag"
	"bslint/internal/module"
	"bslint/internal/token"
)

// Settings is the per-rule configuration. Nil pointers mean "not set".
type Settings struct {
	Enabled  *bool
	Severity *diag.Severity
	Params   map[string]any
}

// Registry is the explicit table of known rules.
type Registry struct {
	defs map[string]Definition
}

func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]Definition)}
}

// Register adds definitions. Duplicate or empty ids are programming errors.
func (r *Registry) Register(defs ...Definition) {
	for _, d := range defs {
		id := d.Descriptor.ID
		if id == "" || d.New == nil {
			panic(fmt.Sprintf("rule: incomplete definition %q", id))
		}
		key := token.Fold(id)
		if _, dup := r.defs[key]; dup {
			panic(fmt.Sprintf("rule: duplicate rule id %q", id))
		}
		r.defs[key] = d
	}
}

// Lookup finds a rule by id, case-insensitively.
func (r *Registry) Lookup(id string) (Definition, bool) {
	d, ok := r.defs[token.Fold(id)]
	return d, ok
}

func (r *Registry) Len() int { return len(r.defs) }

// All returns every definition sorted by id.
func (r *Registry) All() []Definition {
	out := make([]Definition, 0, len(r.defs))
	for _, d := range r.defs {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Descriptor.ID < out[j].Descriptor.ID
	})
	return out
}

// Enabled reports whether settings switch the rule on, falling back to the
// descriptor's Activated flag.
func Enabled(desc Descriptor, s Settings) bool {
	if s.Enabled != nil {
		return *s.Enabled
	}
	return desc.Activated
}

// Applicable returns the rules to run for a module, sorted by id.
func (r *Registry) Applicable(kind module.Kind, compat module.Version, settings map[string]Settings) []Definition {
	var out []Definition
	for _, d := range r.All() {
		desc := d.Descriptor
		if !Enabled(desc, LookupSettings(settings, desc.ID)) {
			continue
		}
		if !desc.AppliesTo(kind) || !desc.SupportsCompatibility(compat) {
			continue
		}
		out = append(out, d)
	}
	return out
}

// LookupSettings finds settings by rule id, case-insensitively.
func LookupSettings(settings map[string]Settings, id string) Settings {
	if s, ok := settings[id]; ok {
		return s
	}
	for k, s := range settings {
		if token.EqualFold(k, id) {
			return s
		}
	}
	return Settings{}
}

// EffectiveSeverity applies the configured override to the descriptor mapping.
func EffectiveSeverity(desc Descriptor, s Settings) diag.Severity {
	if s.Severity != nil {
		return *s.Severity
	}
	return desc.DiagSeverity()
}
