package cst

import "strings"

// Sexpr renders the subtree as a compact s-expression: inner nodes as
// (Kind children...), terminals as their text, error nodes as (Error ...).
func Sexpr(n *Node) string {
	var b strings.Builder
	writeSexpr(&b, n)
	return b.String()
}

func writeSexpr(b *strings.Builder, n *Node) {
	if n == nil {
		b.WriteString("<nil>")
		return
	}
	if n.kind == KindTerminal {
		b.WriteString(n.tok.Text)
		return
	}
	b.WriteByte('(')
	b.WriteString(n.kind.String())
	for _, c := range n.children {
		b.WriteByte(' ')
		writeSexpr(b, c)
	}
	b.WriteByte(')')
}
