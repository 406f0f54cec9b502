package cst

import "bslint/internal/token"

// FirstChild returns the first direct child of kind k.
func (n *Node) FirstChild(k Kind) *Node {
	for _, c := range n.children {
		if c.kind == k {
			return c
		}
	}
	return nil
}

// ChildrenOf returns direct children of kind k.
func (n *Node) ChildrenOf(k Kind) []*Node {
	var out []*Node
	for _, c := range n.children {
		if c.kind == k {
			out = append(out, c)
		}
	}
	return out
}

// Terminal returns the first direct terminal child with one of the token kinds.
func (n *Node) Terminal(kinds ...token.Kind) *Node {
	for _, c := range n.children {
		if c.IsTerminal(kinds...) {
			return c
		}
	}
	return nil
}

// Ancestor returns the closest ancestor of one of kinds.
func (n *Node) Ancestor(kinds ...Kind) *Node {
	for p := n.parent; p != nil; p = p.parent {
		for _, k := range kinds {
			if p.kind == k {
				return p
			}
		}
	}
	return nil
}

// FirstToken returns the first token covered by the node.
func (n *Node) FirstToken() (token.Token, bool) {
	if n.kind == KindTerminal {
		return n.tok, true
	}
	for _, c := range n.children {
		if t, ok := c.FirstToken(); ok {
			return t, true
		}
	}
	return token.Token{}, false
}

// LastToken returns the last token covered by the node.
func (n *Node) LastToken() (token.Token, bool) {
	if n.kind == KindTerminal {
		return n.tok, true
	}
	for i := len(n.children) - 1; i >= 0; i-- {
		if t, ok := n.children[i].LastToken(); ok {
			return t, true
		}
	}
	return token.Token{}, false
}

// Inspect walks the subtree in pre-order. Returning false from f skips the children
// of that node.
func Inspect(n *Node, f func(*Node) bool) {
	if n == nil || !f(n) {
		return
	}
	for _, c := range n.children {
		Inspect(c, f)
	}
}

// FindAll collects descendants (n included) of kind k in source order.
func FindAll(n *Node, k Kind) []*Node {
	var out []*Node
	Inspect(n, func(x *Node) bool {
		if x.kind == k {
			out = append(out, x)
		}
		return true
	})
	return out
}

// Statements returns the statement children of a code block, skipping
// preprocessor lines and labels.
func (n *Node) Statements() []*Node {
	if n == nil {
		return nil
	}
	out := make([]*Node, 0, len(n.children))
	for _, c := range n.children {
		if (c.kind.IsStatement() && c.kind != KindLabel) || c.kind == KindError {
			out = append(out, c)
		}
	}
	return out
}
