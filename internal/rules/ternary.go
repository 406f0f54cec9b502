package rules

import (
	"bslint/internal/cst"
	"bslint/internal/diag"
	"bslint/internal/exprtree"
	"bslint/internal/rule"
	"bslint/internal/token"
)

var uselessTernaryDesc = rule.Descriptor{
	ID:           "UselessTernaryOperator",
	Category:     diag.CategoryCodeSmell,
	Severity:     rule.SeverityInfo,
	MinutesToFix: 1,
	Activated:    true,
	Tags:         []string{"brainoverload", "clumsy"},
	Message:      "Useless ternary operator",
	MessageRu:    "Бессмысленный тернарный оператор",
}

// uselessTernary finds ?(Истина, А, Б), ?(Усл, Истина, Ложь) and
// ?(Усл, Ложь, Истина) and offers the simplified text.
type uselessTernary struct {
	rule.ExpressionWalker
}

func newUselessTernary(rule.Params) rule.Rule {
	r := &uselessTernary{}
	r.Decide = func(_ *rule.Context, n *cst.Node) rule.Decision {
		if containsKind(n, cst.KindTernary) {
			return rule.Accept
		}
		return rule.Skip
	}
	r.Visit = r.visit
	return r
}

func boolLiteral(n exprtree.Node) (value, ok bool) {
	lit, isLit := n.(*exprtree.Literal)
	if !isLit || lit.Kind != exprtree.LitBool {
		return false, false
	}
	return lit.Value == "true", true
}

func (r *uselessTernary) visit(ctx *rule.Context, root exprtree.Node, _ *cst.Node) {
	script := ctx.Unit.Script
	exprtree.Walk(root, func(n exprtree.Node) bool {
		t, ok := n.(*exprtree.Ternary)
		if !ok {
			return true
		}
		text, found := simplifyTernary(root, t, script)
		if !found {
			return true
		}
		// вложенные ?() внутри найденного не отмечаем: их правка пересеклась бы
		// с заменой внешнего
		ctx.Add(rule.AtSpan(t.Span()), rule.WithData(text))
		return false
	})
}

func simplifyTernary(root exprtree.Node, t *exprtree.Ternary, script token.Script) (string, bool) {
	if cond, ok := boolLiteral(t.Cond); ok {
		branch := t.WhenFalse
		if cond {
			branch = t.WhenTrue
		}
		return replacement(root, t, branch, script), true
	}
	whenTrue, okTrue := boolLiteral(t.WhenTrue)
	whenFalse, okFalse := boolLiteral(t.WhenFalse)
	if !okTrue || !okFalse {
		return "", false
	}
	switch {
	case whenTrue && !whenFalse:
		return replacement(root, t, t.Cond, script), true
	case !whenTrue && whenFalse:
		neg := exprtree.Negate(t.Cond, script)
		if root != t {
			neg = "(" + neg + ")"
		}
		return neg, true
	}
	// обе ветви одинаковые
	return exprtree.Print(t.WhenTrue, script), true
}

func (r *uselessTernary) QuickFixes(diags []diag.Diagnostic, ec rule.EditContext) []rule.CodeAction {
	return textFixes("Simplify ternary operator", diags, ec)
}
