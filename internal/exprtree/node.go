// Package exprtree turns the flat expression shape of the syntax tree into a
// canonical operator/operand tree.
//
// The parser keeps expressions as `member (operation member)*` without any
// precedence. Build applies precedence, drops parentheses and single-child
// wrappers, and produces nodes that compare structurally with Equal no matter
// how the source was parenthesised or cased. Trees are built on request and
// are owned by the caller; nothing here caches them.
package exprtree

import (
	"bslint/internal/source"
)

// Node is one node of the canonical expression tree.
type Node interface {
	Span() source.Span
	exprNode()
}

type base struct {
	span source.Span
}

func (b base) Span() source.Span { return b.span }
func (base) exprNode()           {}

func (b *base) widen(sp source.Span) { b.span = b.span.Cover(sp) }

// LiteralKind classifies constants.
type LiteralKind uint8

const (
	LitNumber LiteralKind = iota
	LitString
	LitDate
	LitBool
	LitUndefined
	LitNull
)

type Literal struct {
	base
	Kind LiteralKind
	// Value is normalised: "true"/"false" for booleans, a canonical decimal for
	// numbers, the raw quoted text for strings and dates.
	Value string
	Text  string // как написано в исходнике
}

type Identifier struct {
	base
	Name string
}

type UnaryOp struct {
	base
	Op      Operator
	Operand Node
}

type BinaryOp struct {
	base
	Op          Operator
	Left, Right Node
}

// Ternary is ?(Cond, WhenTrue, WhenFalse).
type Ternary struct {
	base
	Cond, WhenTrue, WhenFalse Node
}

// Call covers global calls, method calls (Target is a MemberAccess) and
// constructors (Constructor is set; Target names the type or is nil for New("Type")).
type Call struct {
	base
	Target      Node
	Args        []Node
	Constructor bool
}

type MemberAccess struct {
	base
	Base   Node
	Member string
}

// Index is Base[Index].
type Index struct {
	base
	Base  Node
	Index Node
}

// Skipped is an omitted call argument or an operand the parser could not read.
type Skipped struct {
	base
}

// Children returns the direct sub-expressions of n in source order.
func Children(n Node) []Node {
	switch x := n.(type) {
	case *UnaryOp:
		return []Node{x.Operand}
	case *BinaryOp:
		return []Node{x.Left, x.Right}
	case *Ternary:
		return []Node{x.Cond, x.WhenTrue, x.WhenFalse}
	case *Call:
		out := make([]Node, 0, len(x.Args)+1)
		if x.Target != nil {
			out = append(out, x.Target)
		}
		return append(out, x.Args...)
	case *MemberAccess:
		return []Node{x.Base}
	case *Index:
		return []Node{x.Base, x.Index}
	}
	return nil
}

// Walk visits n and its descendants in pre-order; returning false skips the
// children of that node.
func Walk(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	for _, c := range Children(n) {
		Walk(c, f)
	}
}
