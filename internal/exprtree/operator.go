package exprtree

import (
	"bslint/internal/token"
)

type Operator uint8

const (
	OpInvalid Operator = iota
	OpOr
	OpAnd
	OpNot
	OpEq
	OpNotEq
	OpLt
	OpLtEq
	OpGt
	OpGtEq
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpMod
	OpNeg   // унарный минус
	OpPlus  // унарный плюс
	OpAwait // Ждать
)

// Уровни приоритета, от слабого к сильному.
const (
	precNone = iota
	precOr
	precAnd
	precNot
	precCompare
	precAdd
	precMul
	precUnary
	precPrimary
)

var binaryOps = map[token.Kind]Operator{
	token.KwOr:    OpOr,
	token.KwAnd:   OpAnd,
	token.Assign:  OpEq,
	token.NotEq:   OpNotEq,
	token.Lt:      OpLt,
	token.LtEq:    OpLtEq,
	token.Gt:      OpGt,
	token.GtEq:    OpGtEq,
	token.Plus:    OpAdd,
	token.Minus:   OpSub,
	token.Star:    OpMul,
	token.Slash:   OpDiv,
	token.Percent: OpMod,
}

var prefixOps = map[token.Kind]Operator{
	token.KwNot:   OpNot,
	token.Minus:   OpNeg,
	token.Plus:    OpPlus,
	token.KwAwait: OpAwait,
}

func (op Operator) precedence() int {
	switch op {
	case OpOr:
		return precOr
	case OpAnd:
		return precAnd
	case OpNot:
		return precNot
	case OpEq, OpNotEq, OpLt, OpLtEq, OpGt, OpGtEq:
		return precCompare
	case OpAdd, OpSub:
		return precAdd
	case OpMul, OpDiv, OpMod:
		return precMul
	case OpNeg, OpPlus, OpAwait:
		return precUnary
	}
	return precNone
}

// IsComparison reports whether op is one of = <> < <= > >=.
func (op Operator) IsComparison() bool {
	return op.precedence() == precCompare
}

// IsLogical reports whether op is And, Or or Not.
func (op Operator) IsLogical() bool {
	return op == OpAnd || op == OpOr || op == OpNot
}

// Inverse returns the comparison with the opposite outcome.
func (op Operator) Inverse() (Operator, bool) {
	switch op {
	case OpEq:
		return OpNotEq, true
	case OpNotEq:
		return OpEq, true
	case OpLt:
		return OpGtEq, true
	case OpGtEq:
		return OpLt, true
	case OpGt:
		return OpLtEq, true
	case OpLtEq:
		return OpGt, true
	}
	return OpInvalid, false
}

// Text spells the operator; word operators use the given script.
func (op Operator) Text(script token.Script) string {
	switch op {
	case OpOr:
		return token.Spell(token.KwOr, script)
	case OpAnd:
		return token.Spell(token.KwAnd, script)
	case OpNot:
		return token.Spell(token.KwNot, script)
	case OpAwait:
		return token.Spell(token.KwAwait, script)
	case OpEq:
		return "="
	case OpNotEq:
		return "<>"
	case OpLt:
		return "<"
	case OpLtEq:
		return "<="
	case OpGt:
		return ">"
	case OpGtEq:
		return ">="
	case OpAdd, OpPlus:
		return "+"
	case OpSub, OpNeg:
		return "-"
	case OpMul:
		return "*"
	case OpDiv:
		return "/"
	case OpMod:
		return "%"
	}
	return "?"
}

func (op Operator) String() string {
	return op.Text(token.ScriptEnglish)
}
