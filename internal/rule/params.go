package rule

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"bslint/internal/token"
)

type ParamType uint8

const (
	ParamString ParamType = iota
	ParamPattern
	ParamInt
	ParamBool
	ParamStringList
	ParamFloat
)

func (t ParamType) String() string {
	switch t {
	case ParamString:
		return "string"
	case ParamPattern:
		return "pattern"
	case ParamInt:
		return "int"
	case ParamBool:
		return "bool"
	case ParamStringList:
		return "string-list"
	case ParamFloat:
		return "float"
	}
	return fmt.Sprintf("ParamType(%d)", t)
}

// ParamSpec declares one configurable parameter. Default must already have
// the Go type of Type: string for String, Pattern and StringList (comma
// separated), int, bool, float64.
type ParamSpec struct {
	Name        string
	Type        ParamType
	Default     any
	Description string
}

// ParamIssue is a configuration problem that was resolved by falling back.
type ParamIssue struct {
	Name    string
	Message string
}

func (i ParamIssue) Error() string {
	return fmt.Sprintf("parameter %s: %s", i.Name, i.Message)
}

// Params holds compiled parameter values.
type Params struct {
	values map[string]any
}

// CompileParams resolves raw configuration values against specs. Unknown keys
// are ignored, missing keys take defaults, values of the wrong type fall back
// to the default. A pattern that does not compile leaves that parameter nil.
// Key lookup is case-insensitive.
func CompileParams(specs []ParamSpec, raw map[string]any) (Params, []ParamIssue) {
	p := Params{values: make(map[string]any, len(specs))}
	var issues []ParamIssue
	lookup := make(map[string]any, len(raw))
	for k, v := range raw {
		lookup[token.Fold(k)] = v
	}
	for _, spec := range specs {
		val, present := lookup[token.Fold(spec.Name)]
		if !present {
			val = spec.Default
		}
		compiled, err := convert(spec.Type, val)
		if err != nil && present {
			issues = append(issues, ParamIssue{Name: spec.Name, Message: err.Error()})
			if spec.Type != ParamPattern {
				compiled, err = convert(spec.Type, spec.Default)
			}
		}
		if err != nil {
			compiled = nil
			if !present {
				issues = append(issues, ParamIssue{Name: spec.Name, Message: "invalid default: " + err.Error()})
			}
		}
		p.values[spec.Name] = compiled
	}
	return p, issues
}

func convert(t ParamType, v any) (any, error) {
	switch t {
	case ParamString:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case ParamPattern:
		s, ok := v.(string)
		if !ok {
			break
		}
		if s == "" {
			return (*regexp.Regexp)(nil), nil
		}
		re, err := regexp.Compile("(?i)" + s)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %q: %w", s, err)
		}
		return re, nil
	case ParamInt:
		switch x := v.(type) {
		case int:
			return x, nil
		case int64:
			return int(x), nil
		case uint64:
			return int(x), nil
		case float64:
			if x == math.Trunc(x) {
				return int(x), nil
			}
		case string:
			if n, err := strconv.Atoi(strings.TrimSpace(x)); err == nil {
				return n, nil
			}
		}
	case ParamBool:
		switch x := v.(type) {
		case bool:
			return x, nil
		case string:
			if b, err := strconv.ParseBool(strings.TrimSpace(x)); err == nil {
				return b, nil
			}
		}
	case ParamFloat:
		switch x := v.(type) {
		case float64:
			return x, nil
		case int:
			return float64(x), nil
		case int64:
			return float64(x), nil
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(x), 64); err == nil {
				return f, nil
			}
		}
	case ParamStringList:
		switch x := v.(type) {
		case string:
			return splitList(x), nil
		case []string:
			return append([]string(nil), x...), nil
		case []any:
			out := make([]string, 0, len(x))
			for _, e := range x {
				s, ok := e.(string)
				if !ok {
					return nil, fmt.Errorf("expected %s, got list element %T", t, e)
				}
				out = append(out, strings.TrimSpace(s))
			}
			return out, nil
		}
	}
	return nil, fmt.Errorf("expected %s, got %T", t, v)
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (p Params) String(name string) string {
	s, _ := p.values[name].(string)
	return s
}

// Pattern returns nil when the pattern is empty or failed to compile.
func (p Params) Pattern(name string) *regexp.Regexp {
	re, _ := p.values[name].(*regexp.Regexp)
	return re
}

func (p Params) Int(name string) int {
	n, _ := p.values[name].(int)
	return n
}

func (p Params) Bool(name string) bool {
	b, _ := p.values[name].(bool)
	return b
}

func (p Params) Float(name string) float64 {
	f, _ := p.values[name].(float64)
	return f
}

func (p Params) StringList(name string) []string {
	l, _ := p.values[name].([]string)
	return l
}

// StringSet is StringList folded for case-insensitive membership tests.
func (p Params) StringSet(name string) map[string]struct{} {
	list := p.StringList(name)
	set := make(map[string]struct{}, len(list))
	for _, s := range list {
		set[token.Fold(s)] = struct{}{}
	}
	return set
}
