package exprtree

import (
	"strings"

	"bslint/internal/token"
)

func precedenceOf(n Node) int {
	switch x := n.(type) {
	case *BinaryOp:
		return x.Op.precedence()
	case *UnaryOp:
		return x.Op.precedence()
	}
	return precPrimary
}

// Print renders n as source text with the minimum of parentheses needed to
// re-parse into the same tree. Word operators are spelled in script; literals
// and names keep their original spelling.
func Print(n Node, script token.Script) string {
	var sb strings.Builder
	p := printer{sb: &sb, script: script}
	p.node(n)
	return sb.String()
}

type printer struct {
	sb     *strings.Builder
	script token.Script
}

func (p printer) wrapped(n Node, paren bool) {
	if paren {
		p.sb.WriteByte('(')
		p.node(n)
		p.sb.WriteByte(')')
		return
	}
	p.node(n)
}

func (p printer) node(n Node) {
	switch x := n.(type) {
	case nil, *Skipped:
	case *Literal:
		p.sb.WriteString(x.Text)
	case *Identifier:
		p.sb.WriteString(x.Name)
	case *BinaryOp:
		prec := x.Op.precedence()
		// все бинарные операции левоассоциативны
		p.wrapped(x.Left, precedenceOf(x.Left) < prec)
		p.sb.WriteByte(' ')
		p.sb.WriteString(x.Op.Text(p.script))
		p.sb.WriteByte(' ')
		p.wrapped(x.Right, precedenceOf(x.Right) <= prec)
	case *UnaryOp:
		switch x.Op {
		case OpNot, OpAwait:
			p.sb.WriteString(x.Op.Text(p.script))
			p.sb.WriteByte(' ')
			p.wrapped(x.Operand, precedenceOf(x.Operand) < x.Op.precedence())
		default:
			p.sb.WriteString(x.Op.Text(p.script))
			p.wrapped(x.Operand, precedenceOf(x.Operand) < precUnary)
		}
	case *Ternary:
		p.sb.WriteString("?(")
		p.node(x.Cond)
		p.sb.WriteString(", ")
		p.node(x.WhenTrue)
		p.sb.WriteString(", ")
		p.node(x.WhenFalse)
		p.sb.WriteByte(')')
	case *Call:
		if x.Constructor {
			p.sb.WriteString(token.Spell(token.KwNew, p.script))
			if x.Target != nil {
				p.sb.WriteByte(' ')
				p.node(x.Target)
			}
			if x.Args == nil && x.Target != nil {
				return
			}
		} else {
			p.wrapped(x.Target, precedenceOf(x.Target) < precPrimary)
		}
		p.args(x.Args)
	case *MemberAccess:
		p.wrapped(x.Base, precedenceOf(x.Base) < precPrimary)
		p.sb.WriteByte('.')
		p.sb.WriteString(x.Member)
	case *Index:
		p.wrapped(x.Base, precedenceOf(x.Base) < precPrimary)
		p.sb.WriteByte('[')
		p.node(x.Index)
		p.sb.WriteByte(']')
	}
}

func (p printer) args(args []Node) {
	p.sb.WriteByte('(')
	for i, a := range args {
		if i > 0 {
			p.sb.WriteString(", ")
		}
		p.node(a)
	}
	p.sb.WriteByte(')')
}

// Negate returns the source text of the logical negation of n: comparisons are
// inverted, a leading Not is stripped, boolean literals flip, anything else gets
// a Not prefix.
func Negate(n Node, script token.Script) string {
	switch x := n.(type) {
	case *BinaryOp:
		if inv, ok := x.Op.Inverse(); ok {
			return Print(&BinaryOp{x.base, inv, x.Left, x.Right}, script)
		}
	case *UnaryOp:
		if x.Op == OpNot {
			return Print(x.Operand, script)
		}
	case *Literal:
		switch x.Value {
		case "true":
			if x.Kind == LitBool {
				return token.Spell(token.KwFalse, script)
			}
		case "false":
			if x.Kind == LitBool {
				return token.Spell(token.KwTrue, script)
			}
		}
	}
	return Print(&UnaryOp{Op: OpNot, Operand: n}, script)
}
