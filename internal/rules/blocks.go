package rules

import (
	"bslint/internal/cst"
	"bslint/internal/diag"
	"bslint/internal/rule"
	"bslint/internal/token"
)

var emptyCodeBlockDesc = rule.Descriptor{
	ID:           "EmptyCodeBlock",
	Category:     diag.CategoryCodeSmell,
	Severity:     rule.SeverityMajor,
	MinutesToFix: 5,
	Activated:    true,
	Tags:         []string{"badpractice", "suspicious"},
	Params: []rule.ParamSpec{
		{Name: "commentAsCode", Type: rule.ParamBool, Default: false, Description: "A block holding only a comment is not empty"},
	},
	Message:   "Empty code block",
	MessageRu: "Пустой блок кода",
}

type emptyCodeBlock struct {
	rule.Listener
	commentAsCode bool
}

func newEmptyCodeBlock(p rule.Params) rule.Rule {
	r := &emptyCodeBlock{commentAsCode: p.Bool("commentAsCode")}
	r.Enter = map[cst.Kind]rule.ListenFunc{cst.KindCodeBlock: r.enterBlock}
	return r
}

func (r *emptyCodeBlock) enterBlock(ctx *rule.Context, n *cst.Node) {
	owner := n.Parent()
	if owner == nil || owner.Kind() == cst.KindFile || owner.Kind().IsMethod() || owner.HasError() {
		return
	}
	if len(n.Statements()) > 0 {
		return
	}
	if r.commentAsCode && r.hasComment(ctx, owner, n) {
		return
	}
	ctx.Add(rule.At(owner.Child(0)))
}

// hasComment looks for a comment between the tokens around an empty block.
func (r *emptyCodeBlock) hasComment(ctx *rule.Context, owner, block *cst.Node) bool {
	kids := owner.Children()
	for i, c := range kids {
		if c != block || i == 0 || i+1 >= len(kids) {
			continue
		}
		prev, ok1 := kids[i-1].LastToken()
		next, ok2 := kids[i+1].FirstToken()
		if !ok1 || !ok2 {
			return false
		}
		for _, tok := range ctx.Unit.Tokens()[prev.Index+1 : next.Index] {
			if tok.Kind == token.LineComment {
				return true
			}
		}
	}
	return false
}

var nestedStatementsDesc = rule.Descriptor{
	ID:           "NestedStatements",
	Category:     diag.CategoryCodeSmell,
	Severity:     rule.SeverityCritical,
	MinutesToFix: 30,
	Activated:    true,
	Tags:         []string{"badpractice", "brainoverload"},
	Params: []rule.ParamSpec{
		{Name: "maxAllowedLevel", Type: rule.ParamInt, Default: 4, Description: "Maximum nesting of control statements"},
	},
	Message:   "Control statements are nested deeper than %d levels",
	MessageRu: "Управляющие конструкции вложены глубже %d уровней",
}

// nestedStatements keeps the chain of open control statements.
type nestedStatements struct {
	rule.Listener
	max   int
	stack []*cst.Node
}

func newNestedStatements(p rule.Params) rule.Rule {
	r := &nestedStatements{max: p.Int("maxAllowedLevel")}
	r.Enter = make(map[cst.Kind]rule.ListenFunc)
	r.Exit = make(map[cst.Kind]rule.ListenFunc)
	for _, k := range []cst.Kind{cst.KindIf, cst.KindWhile, cst.KindFor, cst.KindForEach, cst.KindTry} {
		r.Enter[k] = r.enter
		r.Exit[k] = r.exit
	}
	return r
}

func (r *nestedStatements) enter(ctx *rule.Context, n *cst.Node) {
	r.stack = append(r.stack, n)
	if len(r.stack) != r.max+1 {
		return
	}
	opts := []rule.AddOption{rule.Messagef(r.max)}
	for _, outer := range r.stack[:len(r.stack)-1] {
		opts = append(opts, rule.Related(outer.Child(0).Span(), "nesting level"))
	}
	ctx.Add(rule.At(n.Child(0)), opts...)
}

func (r *nestedStatements) exit(*rule.Context, *cst.Node) {
	r.stack = r.stack[:len(r.stack)-1]
}
