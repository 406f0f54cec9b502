package rule

import (
	"bslint/internal/cst"
)

type ListenFunc func(ctx *Context, n *cst.Node)

// Listener calls Enter before and Exit after the children of matching nodes.
type Listener struct {
	Enter map[cst.Kind]ListenFunc
	Exit  map[cst.Kind]ListenFunc
}

func (l *Listener) Check(ctx *Context) {
	if root := ctx.Root(); root != nil {
		l.Walk(ctx, root)
	}
}

func (l *Listener) Walk(ctx *Context, n *cst.Node) {
	if f := l.Enter[n.Kind()]; f != nil {
		f(ctx, n)
	}
	for _, c := range n.Children() {
		l.Walk(ctx, c)
	}
	if f := l.Exit[n.Kind()]; f != nil {
		f(ctx, n)
	}
}
