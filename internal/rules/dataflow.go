package rules

import (
	"bslint/internal/cst"
	"bslint/internal/dataflow"
	"bslint/internal/diag"
	"bslint/internal/exprtree"
	"bslint/internal/rule"
)

var beginTransactionDesc = rule.Descriptor{
	ID:           "BeginTransactionBeforeTryCatch",
	Category:     diag.CategoryError,
	Severity:     rule.SeverityMajor,
	MinutesToFix: 10,
	Activated:    true,
	Tags:         []string{"standard"},
	Message:      "BeginTransaction() must be immediately followed by Try",
	MessageRu:    "За НачатьТранзакцию() должна сразу следовать Попытка",
}

type beginTransaction struct{}

func newBeginTransaction(rule.Params) rule.Rule { return beginTransaction{} }

func (beginTransaction) Check(ctx *rule.Context) {
	p := &dataflow.Pairing{
		Start: func(st *cst.Node) bool {
			return oneOf(globalCallName(callOf(st)), "НачатьТранзакцию", "BeginTransaction")
		},
		Reset: func(st *cst.Node) bool { return st.Kind() == cst.KindTry },
		Flag:  func(st *cst.Node) { ctx.Add(rule.At(st)) },
	}
	for _, block := range methodBlocks(ctx.Root()) {
		p.Walk(block)
	}
}

var missingTempFileDeletionDesc = rule.Descriptor{
	ID:           "MissingTemporaryFileDeletion",
	Category:     diag.CategoryCodeSmell,
	Severity:     rule.SeverityMajor,
	MinutesToFix: 5,
	Activated:    true,
	Tags:         []string{"badpractice", "standard"},
	Params: []rule.ParamSpec{
		{Name: "searchDeleteFileMethod", Type: rule.ParamPattern, Default: "^(УдалитьФайлы|DeleteFiles|ПереместитьФайл|MoveFile)$", Description: "Methods that release a temporary file"},
	},
	Message:   "Temporary file %s is never deleted",
	MessageRu: "Временный файл %s не удаляется",
}

// missingTempFileDeletion pairs ПолучитьИмяВременногоФайла() with a later
// delete of the same variable in the same block.
type missingTempFileDeletion struct {
	rule.Listener
	scan dataflow.ReleaseScan
	tree *cst.Tree
}

func newMissingTempFileDeletion(p rule.Params) rule.Rule {
	r := &missingTempFileDeletion{}
	re := p.Pattern("searchDeleteFileMethod")
	r.Enter = map[cst.Kind]rule.ListenFunc{cst.KindAssignment: r.enterAssignment}
	r.Exit = map[cst.Kind]rule.ListenFunc{cst.KindCodeBlock: func(_ *rule.Context, n *cst.Node) { r.scan.Leave(n) }}
	r.scan.Releases = func(st *cst.Node) []exprtree.Node {
		if re == nil {
			return nil
		}
		var out []exprtree.Node
		cst.Inspect(st, func(n *cst.Node) bool {
			if n.Kind() != cst.KindGlobalCall && n.Kind() != cst.KindAccessCall {
				return true
			}
			if re.MatchString(calledName(n)) {
				if arg := firstArg(n); arg != nil {
					out = append(out, exprtree.Build(r.tree, arg))
				}
			}
			return true
		})
		return out
	}
	return r
}

func (r *missingTempFileDeletion) enterAssignment(ctx *rule.Context, n *cst.Node) {
	r.tree = ctx.Tree()
	rhs := n.FirstChild(cst.KindExpression)
	if rhs == nil || rhs.ChildCount() != 1 || n.HasError() {
		return
	}
	id := cst.FindAll(rhs, cst.KindComplexIdentifier)
	if len(id) == 0 || id[0].ChildCount() != 1 ||
		!oneOf(globalCallName(id[0].Child(0)), "ПолучитьИмяВременногоФайла", "GetTempFileName") {
		return
	}
	target := n.FirstChild(cst.KindComplexIdentifier)
	handle := exprtree.Build(ctx.Tree(), target)
	if !r.scan.Released(n, handle) {
		ctx.Add(rule.At(target), rule.Messagef(ctx.Unit.Text(target)))
	}
}
