package exprtree

import (
	"strings"

	"bslint/internal/cst"
	"bslint/internal/source"
	"bslint/internal/token"
)

// Build converts an expression-bearing syntax node into the canonical tree.
// Accepted kinds are KindExpression, KindMember, KindParenExpr, KindConstValue,
// KindComplexIdentifier, KindTernary, KindNewExpr, KindGlobalCall and KindArg;
// anything else yields nil. tree may be nil.
func Build(tree *cst.Tree, n *cst.Node) Node {
	if n == nil {
		return nil
	}
	b := builder{tree: tree}
	return b.build(n)
}

type builder struct {
	tree *cst.Tree
}

func (b *builder) build(n *cst.Node) Node {
	switch n.Kind() {
	case cst.KindExpression:
		return b.expression(n)
	case cst.KindMember:
		return b.expression(n)
	case cst.KindParenExpr:
		if inner := n.FirstChild(cst.KindExpression); inner != nil {
			// скобки не дают узла, но входят в его span: замена текста
			// по span не должна оставлять висящую скобку
			res := b.expression(inner)
			if w, ok := res.(interface{ widen(source.Span) }); ok {
				w.widen(n.Span())
			}
			return res
		}
		return &Skipped{base{n.Span()}}
	case cst.KindConstValue:
		return b.literal(n)
	case cst.KindComplexIdentifier:
		return b.complexIdentifier(n)
	case cst.KindTernary:
		return b.ternary(n)
	case cst.KindNewExpr:
		return b.newExpr(n)
	case cst.KindGlobalCall:
		return b.globalCall(n)
	case cst.KindArg:
		if inner := n.FirstChild(cst.KindExpression); inner != nil {
			return b.expression(inner)
		}
		return &Skipped{base{n.Span()}}
	case cst.KindTerminal:
		if n.IsTerminal(token.Ident) {
			return &Identifier{base{n.Span()}, n.Token().Text}
		}
	}
	return nil
}

// item: элемент плоской последовательности: префикс, операнд или бинарная операция.
type item struct {
	prefix  bool
	binary  bool
	op      Operator
	span    source.Span
	operand Node
}

func (b *builder) flatten(n *cst.Node, out []item) []item {
	for _, c := range n.Children() {
		switch c.Kind() {
		case cst.KindMember:
			out = b.member(c, out)
		case cst.KindTerminal:
			if op, ok := binaryOps[c.TokenKind()]; ok {
				out = append(out, item{binary: true, op: op, span: c.Span()})
			}
		}
	}
	return out
}

func (b *builder) member(m *cst.Node, out []item) []item {
	for _, c := range m.Children() {
		if c.Kind() == cst.KindTerminal {
			if op, ok := prefixOps[c.TokenKind()]; ok {
				out = append(out, item{prefix: true, op: op, span: c.Span()})
				continue
			}
		}
		var operand Node
		if c.Kind() == cst.KindError {
			operand = &Skipped{base{c.Span()}}
		} else {
			operand = b.build(c)
		}
		if operand == nil {
			operand = &Skipped{base{c.Span()}}
		}
		out = append(out, item{operand: operand, span: operand.Span()})
	}
	return out
}

func (b *builder) expression(n *cst.Node) Node {
	var items []item
	if n.Kind() == cst.KindMember {
		items = b.member(n, nil)
	} else {
		items = b.flatten(n, nil)
	}
	if len(items) == 0 {
		return &Skipped{base{n.Span()}}
	}
	p := climber{items: items}
	return p.parse(precOr)
}

// climber применяет приоритеты к плоской последовательности.
type climber struct {
	items []item
	pos   int
}

func (c *climber) peek() (item, bool) {
	if c.pos >= len(c.items) {
		return item{}, false
	}
	return c.items[c.pos], true
}

func (c *climber) parse(minPrec int) Node {
	left := c.unary()
	for {
		it, ok := c.peek()
		if !ok || !it.binary || it.op.precedence() < minPrec {
			return left
		}
		c.pos++
		right := c.parse(it.op.precedence() + 1)
		left = &BinaryOp{base{left.Span().Cover(right.Span())}, it.op, left, right}
	}
}

func (c *climber) unary() Node {
	it, ok := c.peek()
	if !ok {
		var sp source.Span
		if len(c.items) > 0 {
			sp = c.items[len(c.items)-1].span.ZeroideToEnd()
		}
		return &Skipped{base{sp}}
	}
	c.pos++
	switch {
	case it.prefix && it.op == OpNot:
		// НЕ слабее сравнений: НЕ А = Б это НЕ (А = Б)
		operand := c.parse(precCompare)
		return &UnaryOp{base{it.span.Cover(operand.Span())}, it.op, operand}
	case it.prefix:
		operand := c.unary()
		return &UnaryOp{base{it.span.Cover(operand.Span())}, it.op, operand}
	case it.binary:
		// операция без левого операнда после ошибки разбора
		return &Skipped{base{it.span}}
	}
	return it.operand
}

func (b *builder) literal(n *cst.Node) Node {
	kids := n.Children()
	if len(kids) == 0 {
		return &Skipped{base{n.Span()}}
	}
	tok := kids[0].Token()
	lit := &Literal{base: base{n.Span()}, Text: tok.Text}
	switch tok.Kind {
	case token.Number:
		lit.Kind = LitNumber
		lit.Value = normalizeNumber(tok.Text)
	case token.String:
		lit.Kind = LitString
		if len(kids) > 1 {
			parts := make([]string, len(kids))
			for i, k := range kids {
				parts[i] = k.Token().Text
			}
			lit.Text = strings.Join(parts, " ")
			lit.Value = strings.Join(parts, "")
		} else {
			lit.Value = tok.Text
		}
	case token.DateLit:
		lit.Kind = LitDate
		lit.Value = tok.Text
	case token.KwTrue:
		lit.Kind = LitBool
		lit.Value = "true"
	case token.KwFalse:
		lit.Kind = LitBool
		lit.Value = "false"
	case token.KwUndefined:
		lit.Kind = LitUndefined
		lit.Value = "undefined"
	case token.KwNull:
		lit.Kind = LitNull
		lit.Value = "null"
	}
	return lit
}

// normalizeNumber: 007 -> 7, 1.50 -> 1.5, 2.0 -> 2.
func normalizeNumber(s string) string {
	intPart, frac, hasFrac := strings.Cut(s, ".")
	intPart = strings.TrimLeft(intPart, "0")
	if intPart == "" {
		intPart = "0"
	}
	if hasFrac {
		frac = strings.TrimRight(frac, "0")
	}
	if frac == "" {
		return intPart
	}
	return intPart + "." + frac
}

func (b *builder) args(list *cst.Node) []Node {
	if list == nil {
		return nil
	}
	args := list.ChildrenOf(cst.KindArg)
	out := make([]Node, 0, len(args))
	for _, a := range args {
		out = append(out, b.build(a))
	}
	return out
}

func (b *builder) globalCall(n *cst.Node) Node {
	name := n.Terminal(token.Ident)
	var target Node
	if name != nil {
		target = &Identifier{base{name.Span()}, name.Token().Text}
	} else {
		target = &Skipped{base{n.Span()}}
	}
	return &Call{base: base{n.Span()}, Target: target, Args: b.args(n.FirstChild(cst.KindArgList))}
}

func (b *builder) newExpr(n *cst.Node) Node {
	call := &Call{base: base{n.Span()}, Constructor: true}
	if name := n.Terminal(token.Ident); name != nil {
		call.Target = &Identifier{base{name.Span()}, name.Token().Text}
	}
	call.Args = b.args(n.FirstChild(cst.KindArgList))
	return call
}

func (b *builder) ternary(n *cst.Node) Node {
	parts := n.ChildrenOf(cst.KindExpression)
	get := func(i int) Node {
		if i < len(parts) {
			return b.expression(parts[i])
		}
		return &Skipped{base{n.Span().ZeroideToEnd()}}
	}
	return &Ternary{base{n.Span()}, get(0), get(1), get(2)}
}

func (b *builder) complexIdentifier(n *cst.Node) Node {
	kids := n.Children()
	if len(kids) == 0 {
		return &Skipped{base{n.Span()}}
	}
	cur := b.build(kids[0])
	if cur == nil {
		cur = &Skipped{base{kids[0].Span()}}
	}
	start := kids[0].Span()
	for _, m := range kids[1:] {
		sp := start.Cover(m.Span())
		switch m.Kind() {
		case cst.KindAccessProperty, cst.KindAccessCall:
			name := memberName(m)
			if m.Kind() == cst.KindAccessProperty {
				cur = &MemberAccess{base{sp}, cur, name}
				continue
			}
			target := &MemberAccess{base{cur.Span().Cover(m.Children()[1].Span())}, cur, name}
			cur = &Call{base: base{sp}, Target: target, Args: b.args(m.FirstChild(cst.KindArgList))}
		case cst.KindAccessIndex:
			var idx Node = &Skipped{base{m.Span()}}
			if e := m.FirstChild(cst.KindExpression); e != nil {
				idx = b.expression(e)
			}
			cur = &Index{base{sp}, cur, idx}
		}
	}
	return cur
}

// memberName: имя после точки; ключевые слова допустимы.
func memberName(m *cst.Node) string {
	kids := m.Children()
	if len(kids) < 2 || kids[1].Kind() != cst.KindTerminal {
		return ""
	}
	return kids[1].Token().Text
}
