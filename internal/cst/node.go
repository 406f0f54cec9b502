package cst

import (
	"bslint/internal/source"
	"bslint/internal/token"
)

// Node is a read-only concrete syntax tree node. Nodes are built bottom-up by the
// parser; the parent pointer is set when a node is attached to its parent and is
// never changed afterwards.
type Node struct {
	kind     Kind
	tok      token.Token // только для KindTerminal
	children []*Node
	parent   *Node

	start, stop int // индексы токенов полного потока, включительно; stop < start у пустого узла
	span        source.Span
	line, col   uint32
	hasError    bool
	msg         string // сообщение KindError
}

// NewTerminal wraps tok.
func NewTerminal(tok token.Token) *Node {
	return &Node{
		kind:     KindTerminal,
		tok:      tok,
		start:    tok.Index,
		stop:     tok.Index,
		span:     tok.Span,
		line:     tok.Line,
		col:      tok.Col,
		hasError: tok.Kind == token.Invalid,
	}
}

// NewNode builds an inner node and adopts children. Nil children are dropped.
// A node without children takes the zero-width position of at.
func NewNode(kind Kind, at token.Token, children ...*Node) *Node {
	n := &Node{kind: kind}
	n.children = make([]*Node, 0, len(children))
	for _, c := range children {
		if c == nil {
			continue
		}
		n.children = append(n.children, c)
	}
	n.recompute(at)
	for _, c := range n.children {
		c.parent = n
	}
	return n
}

// NewError builds a KindError node with msg. Children are the skipped tokens, if any.
func NewError(msg string, at token.Token, children ...*Node) *Node {
	n := NewNode(KindError, at, children...)
	n.msg = msg
	n.hasError = true
	return n
}

func (n *Node) recompute(at token.Token) {
	n.hasError = n.kind == KindError
	if len(n.children) == 0 {
		n.start = at.Index
		n.stop = at.Index - 1
		n.span = at.Span.ZeroideToStart()
		n.line, n.col = at.Line, at.Col
		return
	}
	first, last := n.children[0], n.children[len(n.children)-1]
	n.start, n.stop = first.start, last.stop
	n.span = first.span.Cover(last.span)
	n.line, n.col = first.line, first.col
	for _, c := range n.children {
		if c.hasError {
			n.hasError = true
			break
		}
	}
}

func (n *Node) Kind() Kind { return n.kind }

// Token returns the wrapped token of a terminal; for other nodes it is the zero Token.
func (n *Node) Token() token.Token { return n.tok }

// TokenKind is the token kind of a terminal, token.Invalid otherwise.
func (n *Node) TokenKind() token.Kind {
	if n.kind != KindTerminal {
		return token.Invalid
	}
	return n.tok.Kind
}

// IsTerminal reports whether n is a terminal of one of kinds (any kind if none given).
func (n *Node) IsTerminal(kinds ...token.Kind) bool {
	if n == nil || n.kind != KindTerminal {
		return false
	}
	if len(kinds) == 0 {
		return true
	}
	for _, k := range kinds {
		if n.tok.Kind == k {
			return true
		}
	}
	return false
}

// Children returns the ordered child list. Do not modify it.
func (n *Node) Children() []*Node { return n.children }

func (n *Node) ChildCount() int { return len(n.children) }

// Child returns the i-th child or nil.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

func (n *Node) Parent() *Node { return n.parent }

// Start and Stop are inclusive token indices in the full token stream.
func (n *Node) Start() int { return n.start }
func (n *Node) Stop() int  { return n.stop }

func (n *Node) Span() source.Span { return n.span }

// Line is 1-based, Col is a 0-based rune column of the first token.
func (n *Node) Line() uint32 { return n.line }
func (n *Node) Col() uint32  { return n.col }

// HasError reports whether the subtree contains an error node or an invalid token.
func (n *Node) HasError() bool { return n.hasError }

// ErrorMessage is the parser message of a KindError node.
func (n *Node) ErrorMessage() string { return n.msg }

// Empty reports whether the node covers no tokens.
func (n *Node) Empty() bool { return n.stop < n.start }

// WithChildren returns a shallow copy of n with a new child list. The copy keeps
// n's parent; the children are not re-parented, so the original tree stays intact.
func (n *Node) WithChildren(children []*Node) *Node {
	cp := &Node{
		kind:     n.kind,
		tok:      n.tok,
		parent:   n.parent,
		msg:      n.msg,
		children: append([]*Node(nil), children...),
	}
	at := token.Token{Index: n.start, Span: n.span, Line: n.line, Col: n.col}
	cp.recompute(at)
	if n.kind == KindError {
		cp.hasError = true
	}
	return cp
}
