package rules

import (
	"bslint/internal/cst"
	"bslint/internal/diag"
	"bslint/internal/fix"
	"bslint/internal/rule"
	"bslint/internal/token"
)

var parseErrorDesc = rule.Descriptor{
	ID:           "ParseError",
	Category:     diag.CategoryError,
	Severity:     rule.SeverityBlocker,
	MinutesToFix: 5,
	Activated:    true,
	Tags:         []string{"error"},
	Message:      "Syntax error: %s",
	MessageRu:    "Синтаксическая ошибка: %s",
}

// parseError reports every error node of the tree.
type parseError struct {
	rule.Visitor
}

func newParseError(rule.Params) rule.Rule {
	r := &parseError{}
	r.Handlers = map[cst.Kind]rule.VisitFunc{
		cst.KindError: func(ctx *rule.Context, n *cst.Node) *cst.Node {
			msg := n.ErrorMessage()
			if msg == "" {
				msg = "unexpected input"
			}
			ctx.Add(rule.At(n), rule.Messagef(msg))
			return n
		},
	}
	return r
}

var semicolonPresenceDesc = rule.Descriptor{
	ID:           "SemicolonPresence",
	Category:     diag.CategoryCodeSmell,
	Severity:     rule.SeverityMinor,
	MinutesToFix: 1,
	Activated:    true,
	Tags:         []string{"standard", "badpractice"},
	Message:      "Statement must end with ';'",
	MessageRu:    "Оператор должен заканчиваться символом ';'",
}

type semicolonPresence struct {
	rule.Visitor
}

func newSemicolonPresence(rule.Params) rule.Rule {
	r := &semicolonPresence{}
	r.Handlers = map[cst.Kind]rule.VisitFunc{cst.KindCodeBlock: r.visitBlock}
	return r
}

func (r *semicolonPresence) visitBlock(ctx *rule.Context, n *cst.Node) *cst.Node {
	for _, st := range n.Statements() {
		if st.Kind() == cst.KindError || st.Kind() == cst.KindEmptyStatement || st.HasError() {
			continue
		}
		if st.Child(st.ChildCount() - 1).IsTerminal(token.Semicolon) {
			continue
		}
		if last, ok := st.LastToken(); ok {
			ctx.Add(rule.AtToken(last), rule.WithData(";"))
		}
	}
	return r.VisitChildren(ctx, n)
}

func (r *semicolonPresence) QuickFixes(diags []diag.Diagnostic, _ rule.EditContext) []rule.CodeAction {
	out := make([]rule.CodeAction, 0, len(diags))
	for _, d := range diags {
		out = append(out, rule.CodeAction{
			Diagnostic: d,
			Fix:        fix.InsertAfter("Add ';'", d.Primary, ";", fix.Preferred()),
		})
	}
	return out
}
