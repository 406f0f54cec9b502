package rule

import (
	"bslint/internal/cst"
)

// VisitFunc handles one node kind. It returns the node to keep in the tree,
// usually n itself; the handler decides whether to call VisitChildren.
type VisitFunc func(ctx *Context, n *cst.Node) *cst.Node

// Visitor dispatches on node kind; kinds without a handler visit their children.
type Visitor struct {
	Handlers map[cst.Kind]VisitFunc
}

func (v *Visitor) Check(ctx *Context) {
	if root := ctx.Root(); root != nil {
		v.Visit(ctx, root)
	}
}

func (v *Visitor) Visit(ctx *Context, n *cst.Node) *cst.Node {
	if h, ok := v.Handlers[n.Kind()]; ok && h != nil {
		return h(ctx, n)
	}
	return v.VisitChildren(ctx, n)
}

// VisitChildren visits children in order. When a child comes back replaced the
// parent is returned as a copy with the new children; a nil result drops the
// child. Without replacements n itself is returned.
func (v *Visitor) VisitChildren(ctx *Context, n *cst.Node) *cst.Node {
	kids := n.Children()
	var out []*cst.Node
	for i, c := range kids {
		r := v.Visit(ctx, c)
		if r != c && out == nil {
			out = make([]*cst.Node, 0, len(kids))
			out = append(out, kids[:i]...)
		}
		if out != nil && r != nil {
			out = append(out, r)
		}
	}
	if out == nil {
		return n
	}
	return n.WithChildren(out)
}
