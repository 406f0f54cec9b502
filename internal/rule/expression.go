package rule

import (
	"bslint/internal/cst"
	"bslint/internal/exprtree"
)

// Decision is the answer of ExpressionWalker.Decide for one expression node.
type Decision uint8

const (
	// Skip: no tree is built and nested expressions are not visited.
	Skip Decision = iota
	// Accept: the tree is built once and passed to Visit; nested expressions
	// are not visited separately.
	Accept
	// VisitChildren: no tree is built; nested expressions get their own decision.
	VisitChildren
)

func (d Decision) String() string {
	switch d {
	case Skip:
		return "skip"
	case Accept:
		return "accept"
	case VisitChildren:
		return "visit-children"
	}
	return "unknown"
}

// ExpressionWalker gates expression tree construction. Every outermost
// KindExpression node reached by the walk gets a Decide call; a nil Decide
// accepts everything. Build defaults to exprtree.Build.
type ExpressionWalker struct {
	Decide func(ctx *Context, n *cst.Node) Decision
	Visit  func(ctx *Context, expr exprtree.Node, n *cst.Node)
	Build  func(tree *cst.Tree, n *cst.Node) exprtree.Node
}

func (w *ExpressionWalker) Check(ctx *Context) {
	if root := ctx.Root(); root != nil {
		w.walk(ctx, root)
	}
}

func (w *ExpressionWalker) walk(ctx *Context, n *cst.Node) {
	if n.Kind() == cst.KindExpression {
		d := Accept
		if w.Decide != nil {
			d = w.Decide(ctx, n)
		}
		switch d {
		case Skip:
			return
		case Accept:
			build := w.Build
			if build == nil {
				build = exprtree.Build
			}
			expr := build(ctx.Tree(), n)
			if w.Visit != nil && expr != nil {
				w.Visit(ctx, expr, n)
			}
			return
		}
	}
	for _, c := range n.Children() {
		w.walk(ctx, c)
	}
}
