package rules

import (
	"strings"

	"bslint/internal/diag"
	"bslint/internal/fix"
	"bslint/internal/module"
	"bslint/internal/rule"
	"bslint/internal/source"
	"bslint/internal/symbols"
	"bslint/internal/token"
)

var numberOfParamsDesc = rule.Descriptor{
	ID:           "NumberOfParams",
	Category:     diag.CategoryCodeSmell,
	Severity:     rule.SeverityMinor,
	MinutesToFix: 30,
	Activated:    true,
	Tags:         []string{"standard", "brainoverload"},
	Params: []rule.ParamSpec{
		{Name: "maxParamsCount", Type: rule.ParamInt, Default: 7, Description: "Maximum number of parameters"},
		{Name: "maxOptionalParamsCount", Type: rule.ParamInt, Default: 3, Description: "Maximum number of parameters with default values"},
	},
	Message:   "Method %s has too many parameters",
	MessageRu: "Метод %s имеет слишком много параметров",
}

type numberOfParams struct {
	rule.SymbolWalker
	max, maxOptional int
}

func newNumberOfParams(p rule.Params) rule.Rule {
	r := &numberOfParams{max: p.Int("maxParamsCount"), maxOptional: p.Int("maxOptionalParamsCount")}
	r.Method = func(ctx *rule.Context, m *symbols.Method) bool {
		optional := 0
		for _, v := range m.Params {
			if v.Flags&symbols.FlagHasDefault != 0 {
				optional++
			}
		}
		if len(m.Params) > r.max || optional > r.maxOptional {
			ctx.Add(rule.AtSpan(m.NameSpan), rule.Messagef(m.Name))
		}
		// параметры и локальные не нужны
		return false
	}
	return r
}

var emptyRegionDesc = rule.Descriptor{
	ID:           "EmptyRegion",
	Category:     diag.CategoryCodeSmell,
	Severity:     rule.SeverityInfo,
	MinutesToFix: 1,
	Activated:    true,
	Tags:         []string{"standard"},
	Message:      "Region %s is empty",
	MessageRu:    "Область %s пустая",
}

type emptyRegion struct {
	rule.SymbolWalker
}

func newEmptyRegion(rule.Params) rule.Rule {
	r := &emptyRegion{}
	r.Region = func(ctx *rule.Context, reg *symbols.Region) bool {
		if reg.Empty() && reg.Start != nil {
			opts := []rule.AddOption{rule.Messagef(reg.Name)}
			if reg.End != nil {
				opts = append(opts, rule.WithData(reg.End.Line()))
			}
			ctx.Add(rule.At(reg.Start), opts...)
		}
		return true
	}
	r.Method = func(*rule.Context, *symbols.Method) bool { return false }
	return r
}

// QuickFixes снимает обе директивы области; комментарии между ними остаются.
func (r *emptyRegion) QuickFixes(diags []diag.Diagnostic, ec rule.EditContext) []rule.CodeAction {
	if ec.File == nil {
		return nil
	}
	out := make([]rule.CodeAction, 0, len(diags))
	for _, d := range diags {
		endLine, ok := d.Data.(uint32)
		if !ok {
			continue
		}
		startLine, _ := ec.File.Position(d.Primary.Start)
		first, ok1 := directiveLine(ec.File, startLine)
		last, ok2 := directiveLine(ec.File, endLine)
		if !ok1 || !ok2 {
			continue
		}
		out = append(out, rule.CodeAction{
			Diagnostic: d,
			Fix:        fix.DeleteSpans("Remove empty region", []source.Span{first, last}, fix.Preferred()),
		})
	}
	return out
}

// directiveLine is the whole line including its terminator, only when the
// line holds nothing but a preprocessor directive.
func directiveLine(f *source.File, line uint32) (source.Span, bool) {
	text := strings.TrimSpace(f.GetLine(line))
	if !strings.HasPrefix(text, "#") || strings.Contains(text, "//") {
		return source.Span{}, false
	}
	start, ok := f.LineStart(line)
	if !ok {
		return source.Span{}, false
	}
	end, ok := f.LineStart(line + 1)
	if !ok {
		end, _ = f.LineEnd(line)
	}
	return source.Span{File: f.ID, Start: start, End: end}, true
}

var exportVariablesDesc = rule.Descriptor{
	ID:           "ExportVariables",
	Category:     diag.CategoryCodeSmell,
	Severity:     rule.SeverityMinor,
	MinutesToFix: 5,
	Activated:    true,
	Tags:         []string{"standard", "design"},
	Message:      "Avoid exported module variable %s",
	MessageRu:    "Не используйте экспортную переменную модуля %s",
}

func newExportVariables(rule.Params) rule.Rule {
	return &rule.SymbolWalker{
		Method: func(*rule.Context, *symbols.Method) bool { return false },
		Variable: func(ctx *rule.Context, v *symbols.Variable) bool {
			if v.Kind == symbols.VarModule && v.IsExport() {
				ctx.Add(rule.AtSpan(v.Span), rule.Messagef(v.Name))
			}
			return true
		},
	}
}

var missingMethodDescriptionDesc = rule.Descriptor{
	ID:           "MissingMethodDescription",
	Category:     diag.CategoryCodeSmell,
	Severity:     rule.SeverityInfo,
	MinutesToFix: 1,
	Activated:    true,
	Tags:         []string{"standard"},
	Params: []rule.ParamSpec{
		{Name: "checkAllMethods", Type: rule.ParamBool, Default: false, Description: "Check non-exported methods too"},
	},
	Message:   "Method %s has no description",
	MessageRu: "Метод %s не имеет описания",
}

func newMissingMethodDescription(p rule.Params) rule.Rule {
	all := p.Bool("checkAllMethods")
	return &rule.SymbolWalker{
		Method: func(ctx *rule.Context, m *symbols.Method) bool {
			if (all || m.IsExport()) && m.Description == nil {
				ctx.Add(rule.AtSpan(m.NameSpan), rule.Messagef(m.Name))
			}
			return false
		},
	}
}

var unusedLocalMethodDesc = rule.Descriptor{
	ID:           "UnusedLocalMethod",
	Category:     diag.CategoryCodeSmell,
	Severity:     rule.SeverityMajor,
	MinutesToFix: 1,
	Scope: []module.Kind{
		module.KindCommon, module.KindObject, module.KindManager,
		module.KindRecordSet, module.KindValueManager,
	},
	Activated: true,
	Tags:      []string{"standard", "suspicious", "unused"},
	Params: []rule.ParamSpec{
		{Name: "attachableMethodPrefixes", Type: rule.ParamStringList, Default: "подключаемый_,attachable_", Description: "Prefixes of methods called by name"},
	},
	Message:   "Unused local method %s",
	MessageRu: "Неиспользуемый локальный метод %s",
}

// Аннотации расширений: такой метод вызывает платформа.
var extensionAnnotations = []string{
	"Перед", "После", "Вместо", "ИзменениеИКонтроль",
	"Before", "After", "Around", "ChangeAndValidate",
}

func newUnusedLocalMethod(p rule.Params) rule.Rule {
	var prefixes []string
	for _, s := range p.StringList("attachableMethodPrefixes") {
		prefixes = append(prefixes, token.Fold(s))
	}
	return &rule.SymbolWalker{
		Module: func(ctx *rule.Context, _ *symbols.Module) bool {
			// без индекса ссылок проверять нечего
			return ctx.Unit.Refs != nil
		},
		Method: func(ctx *rule.Context, m *symbols.Method) bool {
			if m.IsExport() || ctx.Unit.Refs.IsUsed(m) {
				return false
			}
			for _, a := range m.Annotations {
				if oneOf(a, extensionAnnotations...) {
					return false
				}
			}
			folded := token.Fold(m.Name)
			for _, pre := range prefixes {
				if strings.HasPrefix(folded, pre) {
					return false
				}
			}
			ctx.Add(rule.AtSpan(m.NameSpan), rule.Messagef(m.Name))
			return false
		},
	}
}
