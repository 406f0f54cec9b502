package exprtree

import (
	"bslint/internal/token"
)

// Equal reports structural equality. Spans are ignored, identifiers and member
// names compare case-insensitively, literals by normalised value.
func Equal(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case *Literal:
		y, ok := b.(*Literal)
		return ok && x.Kind == y.Kind && x.Value == y.Value
	case *Identifier:
		y, ok := b.(*Identifier)
		return ok && token.EqualFold(x.Name, y.Name)
	case *UnaryOp:
		y, ok := b.(*UnaryOp)
		return ok && x.Op == y.Op && Equal(x.Operand, y.Operand)
	case *BinaryOp:
		y, ok := b.(*BinaryOp)
		return ok && x.Op == y.Op && Equal(x.Left, y.Left) && Equal(x.Right, y.Right)
	case *Ternary:
		y, ok := b.(*Ternary)
		return ok && Equal(x.Cond, y.Cond) && Equal(x.WhenTrue, y.WhenTrue) && Equal(x.WhenFalse, y.WhenFalse)
	case *Call:
		y, ok := b.(*Call)
		return ok && x.Constructor == y.Constructor && Equal(x.Target, y.Target) && equalList(x.Args, y.Args)
	case *MemberAccess:
		y, ok := b.(*MemberAccess)
		return ok && token.EqualFold(x.Member, y.Member) && Equal(x.Base, y.Base)
	case *Index:
		y, ok := b.(*Index)
		return ok && Equal(x.Base, y.Base) && Equal(x.Index, y.Index)
	case *Skipped:
		_, ok := b.(*Skipped)
		return ok
	}
	return false
}

func equalList(a, b []Node) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}
