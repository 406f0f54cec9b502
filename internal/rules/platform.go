package rules

import (
	"bslint/internal/cst"
	"bslint/internal/diag"
	"bslint/internal/module"
	"bslint/internal/rule"
	"bslint/internal/token"
)

var deprecatedFindDesc = rule.Descriptor{
	ID:               "DeprecatedFind",
	Category:         diag.CategoryCodeSmell,
	Severity:         rule.SeverityMinor,
	MinutesToFix:     2,
	MinCompatibility: module.MustParseVersion("8.3.6"),
	Activated:        true,
	Tags:             []string{"deprecated"},
	Message:          "Use %s instead of deprecated %s",
	MessageRu:        "Используйте %s вместо устаревшего %s",
}

// deprecatedFind flags the global Найти(); since 8.3.6 СтрНайти() replaces it.
type deprecatedFind struct {
	rule.Visitor
}

func newDeprecatedFind(rule.Params) rule.Rule {
	r := &deprecatedFind{}
	r.Handlers = map[cst.Kind]rule.VisitFunc{cst.KindGlobalCall: r.visitCall}
	return r
}

func (r *deprecatedFind) visitCall(ctx *rule.Context, n *cst.Node) *cst.Node {
	name := n.Terminal(token.Ident)
	if name != nil && oneOf(name.Token().Text, "Найти", "Find") &&
		ctx.Unit.Symbols.FindMethod(name.Token().Text) == nil {
		text := name.Token().Text
		repl := "СтрНайти"
		if token.DetectScript(text) == token.ScriptEnglish {
			repl = "StrFind"
		}
		ctx.Add(rule.At(name), rule.Messagef(repl, text), rule.WithData(repl))
	}
	return r.VisitChildren(ctx, n)
}

func (r *deprecatedFind) QuickFixes(diags []diag.Diagnostic, ec rule.EditContext) []rule.CodeAction {
	return textFixes("Replace with StrFind", diags, ec)
}

var executeExternalCodeDesc = rule.Descriptor{
	ID:           "ExecuteExternalCode",
	Category:     diag.CategorySecurityHotspot,
	Severity:     rule.SeverityCritical,
	MinutesToFix: 1,
	Scope: []module.Kind{
		module.KindCommon, module.KindObject, module.KindManager, module.KindSession,
		module.KindExternalConnection, module.KindHTTPService, module.KindWebService,
		module.KindRecordSet, module.KindValueManager,
	},
	Activated: true,
	Tags:      []string{"badpractice"},
	Message:   "Check the code passed to %s: it runs with server privileges",
	MessageRu: "Проверьте код, передаваемый в %s: он выполняется на сервере",
}

// executeExternalCode flags Выполнить and Вычислить in server-side modules.
type executeExternalCode struct {
	rule.Visitor
}

func newExecuteExternalCode(rule.Params) rule.Rule {
	r := &executeExternalCode{}
	r.Handlers = map[cst.Kind]rule.VisitFunc{
		cst.KindExecute: func(ctx *rule.Context, n *cst.Node) *cst.Node {
			kw := n.Child(0)
			ctx.Add(rule.At(kw), rule.Messagef(kw.Token().Text))
			return r.VisitChildren(ctx, n)
		},
		cst.KindGlobalCall: func(ctx *rule.Context, n *cst.Node) *cst.Node {
			if name := globalCallName(n); oneOf(name, "Вычислить", "Eval") {
				ctx.Add(rule.At(n.Child(0)), rule.Messagef(name))
			}
			return r.VisitChildren(ctx, n)
		},
	}
	return r
}
