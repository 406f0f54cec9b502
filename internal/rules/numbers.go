package rules

import (
	"strconv"

	"bslint/internal/cst"
	"bslint/internal/diag"
	"bslint/internal/rule"
	"bslint/internal/token"
)

var magicNumberDesc = rule.Descriptor{
	ID:           "MagicNumber",
	Category:     diag.CategoryCodeSmell,
	Severity:     rule.SeverityMinor,
	MinutesToFix: 1,
	Activated:    true,
	Tags:         []string{"badpractice"},
	Params: []rule.ParamSpec{
		{Name: "authorizedNumbers", Type: rule.ParamStringList, Default: "-1,0,1", Description: "Numbers that are not magic"},
		{Name: "allowMagicIndexes", Type: rule.ParamBool, Default: true, Description: "Allow numbers as collection indexes"},
	},
	Message:   "Magic number: %s",
	MessageRu: "Магическое число: %s",
}

type magicNumber struct {
	rule.Visitor
	authorized   []float64
	allowIndexes bool
}

func newMagicNumber(p rule.Params) rule.Rule {
	r := &magicNumber{allowIndexes: p.Bool("allowMagicIndexes")}
	for _, s := range p.StringList("authorizedNumbers") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			r.authorized = append(r.authorized, f)
		}
	}
	r.Handlers = map[cst.Kind]rule.VisitFunc{cst.KindConstValue: r.visitConst}
	return r
}

func (r *magicNumber) visitConst(ctx *rule.Context, n *cst.Node) *cst.Node {
	num := n.Terminal(token.Number)
	if num == nil {
		return n
	}
	text := num.Token().Text
	if negated(n) {
		text = "-" + text
	}
	value, err := strconv.ParseFloat(text, 64)
	if err != nil || r.isAuthorized(value) || r.exempt(n) {
		return n
	}
	ctx.Add(rule.At(n), rule.Messagef(text))
	return n
}

// negated reports a unary minus written right before the constant.
func negated(n *cst.Node) bool {
	member := n.Parent()
	if member == nil || member.Kind() != cst.KindMember {
		return false
	}
	kids := member.Children()
	for i, c := range kids {
		if c == n {
			return i > 0 && kids[i-1].IsTerminal(token.Minus)
		}
	}
	return false
}

func (r *magicNumber) isAuthorized(v float64) bool {
	for _, a := range r.authorized {
		if a == v {
			return true
		}
	}
	return false
}

// exempt: значения параметров по умолчанию, индексы и присваивание
// константы переменной, которое само даёт числу имя.
func (r *magicNumber) exempt(n *cst.Node) bool {
	if n.Ancestor(cst.KindDefaultValue) != nil {
		return true
	}
	expr := n.Ancestor(cst.KindExpression)
	if expr == nil || expr.ChildCount() != 1 {
		return false
	}
	switch parent := expr.Parent(); parent.Kind() {
	case cst.KindAccessIndex:
		return r.allowIndexes
	case cst.KindAssignment:
		return true
	}
	return false
}

var tooManyReturnsDesc = rule.Descriptor{
	ID:           "TooManyReturns",
	Category:     diag.CategoryCodeSmell,
	Severity:     rule.SeverityMinor,
	MinutesToFix: 20,
	Activated:    false,
	Tags:         []string{"brainoverload"},
	Params: []rule.ParamSpec{
		{Name: "maxReturnsCount", Type: rule.ParamInt, Default: 3, Description: "Maximum number of Return statements"},
	},
	Message:   "Method has %d return statements, maximum is %d",
	MessageRu: "Метод содержит %d операторов Возврат, допустимо %d",
}

type tooManyReturns struct {
	rule.Visitor
	max int
}

func newTooManyReturns(p rule.Params) rule.Rule {
	r := &tooManyReturns{max: p.Int("maxReturnsCount")}
	r.Handlers = map[cst.Kind]rule.VisitFunc{
		cst.KindProcedure: r.visitMethod,
		cst.KindFunction:  r.visitMethod,
	}
	return r
}

func (r *tooManyReturns) visitMethod(ctx *rule.Context, n *cst.Node) *cst.Node {
	returns := cst.FindAll(n, cst.KindReturn)
	if len(returns) <= r.max {
		return n
	}
	name := n.Terminal(token.Ident)
	if name == nil {
		return n
	}
	opts := []rule.AddOption{rule.Messagef(len(returns), r.max)}
	for _, ret := range returns {
		opts = append(opts, rule.Related(ret.Span(), "return"))
	}
	ctx.Add(rule.At(name), opts...)
	return n
}
