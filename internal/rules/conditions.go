package rules

import (
	"bslint/internal/cst"
	"bslint/internal/diag"
	"bslint/internal/exprtree"
	"bslint/internal/rule"
	"bslint/internal/token"
)

var duplicatedConditionDesc = rule.Descriptor{
	ID:           "IfElseDuplicatedCondition",
	Category:     diag.CategoryCodeSmell,
	Severity:     rule.SeverityMajor,
	MinutesToFix: 10,
	Activated:    true,
	Tags:         []string{"suspicious"},
	Message:      "Duplicated condition in If/ElsIf: %s",
	MessageRu:    "Повторяющееся условие в Если/ИначеЕсли: %s",
}

type duplicatedCondition struct {
	rule.Visitor
}

func newDuplicatedCondition(rule.Params) rule.Rule {
	r := &duplicatedCondition{}
	r.Handlers = map[cst.Kind]rule.VisitFunc{cst.KindIf: r.visitIf}
	return r
}

func ifConditions(n *cst.Node) []*cst.Node {
	var out []*cst.Node
	if c := n.FirstChild(cst.KindExpression); c != nil {
		out = append(out, c)
	}
	for _, b := range n.ChildrenOf(cst.KindElsIfBranch) {
		if c := b.FirstChild(cst.KindExpression); c != nil {
			out = append(out, c)
		}
	}
	return out
}

func (r *duplicatedCondition) visitIf(ctx *rule.Context, n *cst.Node) *cst.Node {
	conds := ifConditions(n)
	if len(conds) > 1 && !n.HasError() {
		trees := make([]exprtree.Node, len(conds))
		for i, c := range conds {
			trees[i] = exprtree.Build(ctx.Tree(), c)
		}
		reported := make([]bool, len(conds))
		for i := range trees {
			if reported[i] {
				continue
			}
			var opts []rule.AddOption
			for j := i + 1; j < len(trees); j++ {
				if !reported[j] && exprtree.Equal(trees[i], trees[j]) {
					reported[j] = true
					opts = append(opts, rule.Related(conds[j].Span(), "duplicate of this condition"))
				}
			}
			if len(opts) > 0 {
				text := exprtree.Print(trees[i], ctx.Unit.Script)
				opts = append(opts, rule.Messagef(text))
				ctx.Add(rule.At(conds[i]), opts...)
			}
		}
	}
	return r.VisitChildren(ctx, n)
}

var doubleNegativesDesc = rule.Descriptor{
	ID:           "DoubleNegatives",
	Category:     diag.CategoryCodeSmell,
	Severity:     rule.SeverityMajor,
	MinutesToFix: 3,
	Activated:    true,
	Tags:         []string{"brainoverload", "badpractice"},
	Message:      "Double negation can be simplified",
	MessageRu:    "Двойное отрицание можно упростить",
}

// doubleNegatives finds НЕ НЕ А and НЕ А <> Б.
type doubleNegatives struct {
	rule.ExpressionWalker
}

func newDoubleNegatives(rule.Params) rule.Rule {
	r := &doubleNegatives{}
	r.Decide = func(_ *rule.Context, n *cst.Node) rule.Decision {
		if containsToken(n, token.KwNot) {
			return rule.Accept
		}
		return rule.Skip
	}
	r.Visit = r.visit
	return r
}

func (r *doubleNegatives) visit(ctx *rule.Context, root exprtree.Node, _ *cst.Node) {
	exprtree.Walk(root, func(n exprtree.Node) bool {
		not, ok := n.(*exprtree.UnaryOp)
		if !ok || not.Op != exprtree.OpNot {
			return true
		}
		var repl exprtree.Node
		switch inner := not.Operand.(type) {
		case *exprtree.UnaryOp:
			if inner.Op == exprtree.OpNot {
				repl = inner.Operand
			}
		case *exprtree.BinaryOp:
			if inner.Op == exprtree.OpNotEq {
				repl = &exprtree.BinaryOp{Op: exprtree.OpEq, Left: inner.Left, Right: inner.Right}
			}
		}
		if repl == nil {
			return true
		}
		ctx.Add(rule.AtSpan(not.Span()), rule.WithData(replacement(root, not, repl, ctx.Unit.Script)))
		// вложенное отрицание уже покрыто этой заменой
		return false
	})
}

func (r *doubleNegatives) QuickFixes(diags []diag.Diagnostic, ec rule.EditContext) []rule.CodeAction {
	return textFixes("Remove double negation", diags, ec)
}
