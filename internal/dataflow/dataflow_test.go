package dataflow_test

import (
	"testing"

	"bslint/internal/cst"
	"bslint/internal/dataflow"
	"bslint/internal/diag"
	"bslint/internal/exprtree"
	"bslint/internal/parser"
	"bslint/internal/source"
	"bslint/internal/token"
)

func parse(t *testing.T, src string) *cst.Tree {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("Module.bsl", []byte(src)))
	bag := diag.NewBag(0)
	res := parser.ParseFile(file, parser.Options{Reporter: diag.BagReporter{Bag: bag}})
	if bag.Len() != 0 {
		t.Fatalf("unexpected syntax errors in %q", src)
	}
	return res.Tree
}

// callName: имя глобального вызова оператора-вызова.
func callName(st *cst.Node) string {
	if st.Kind() != cst.KindCallStatement {
		return ""
	}
	id := st.FirstChild(cst.KindComplexIdentifier)
	if id == nil || id.ChildCount() != 1 || id.Child(0).Kind() != cst.KindGlobalCall {
		return ""
	}
	return id.Child(0).Child(0).Token().Text
}

func body(tree *cst.Tree) *cst.Node {
	return tree.Root.Child(0).FirstChild(cst.KindCodeBlock)
}

func transactionPairing(flagged *[]int) *dataflow.Pairing {
	return &dataflow.Pairing{
		Start: func(st *cst.Node) bool { return token.EqualFold(callName(st), "НачатьТранзакцию") },
		Reset: func(st *cst.Node) bool { return st.Kind() == cst.KindTry },
		Flag:  func(st *cst.Node) { *flagged = append(*flagged, int(st.Line())) },
	}
}

func TestPairing(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []int
	}{
		{
			name: "start followed by try",
			body: "НачатьТранзакцию();\nПопытка\nА();\nИсключение\nОтменитьТранзакцию();\nКонецПопытки;",
		},
		{
			name: "statement between start and try",
			body: "НачатьТранзакцию();\nА = 1;\nПопытка\nИсключение\nКонецПопытки;",
			want: []int{2},
		},
		{
			name: "start at block end",
			body: "А = 1;\nНачатьТранзакцию();",
			want: []int{3},
		},
		{
			name: "start inside try body is protected",
			body: "Попытка\nНачатьТранзакцию();\nА = 1;\nИсключение\nКонецПопытки;",
		},
		{
			name: "nested block is its own sequence",
			body: "НачатьТранзакцию();\nЕсли А Тогда\nНачатьТранзакцию();\nКонецЕсли;",
			want: []int{2, 4},
		},
		{
			name: "else branch walked",
			body: "Если А Тогда\nИначе\nНачатьТранзакцию();\nКонецЕсли;",
			want: []int{4},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree := parse(t, "Процедура П()\n"+tt.body+"\nКонецПроцедуры")
			var flagged []int
			transactionPairing(&flagged).Walk(body(tree))
			if len(flagged) != len(tt.want) {
				t.Fatalf("want lines %v, got %v", tt.want, flagged)
			}
			for i := range tt.want {
				if flagged[i] != tt.want[i] {
					t.Fatalf("want lines %v, got %v", tt.want, flagged)
				}
			}
		})
	}
}

func TestPairingEndClosesStart(t *testing.T) {
	tree := parse(t, "Процедура П()\nОткрыть();\nЗакрыть();\nОткрыть();\nА = 1;\nКонецПроцедуры")
	var flagged []int
	p := &dataflow.Pairing{
		Start: func(st *cst.Node) bool { return callName(st) == "Открыть" },
		End:   func(st *cst.Node) bool { return callName(st) == "Закрыть" },
		Flag:  func(st *cst.Node) { flagged = append(flagged, int(st.Line())) },
	}
	p.Walk(body(tree))
	if len(flagged) != 1 || flagged[0] != 4 {
		t.Fatalf("want [4], got %v", flagged)
	}
}

func deleteArgs(tree *cst.Tree) func(st *cst.Node) []exprtree.Node {
	return func(st *cst.Node) []exprtree.Node {
		var out []exprtree.Node
		for _, call := range cst.FindAll(st, cst.KindGlobalCall) {
			if !token.EqualFold(call.Child(0).Token().Text, "УдалитьФайлы") {
				continue
			}
			args := call.FirstChild(cst.KindArgList).ChildrenOf(cst.KindArg)
			if len(args) > 0 && args[0].ChildCount() > 0 {
				out = append(out, exprtree.Build(tree, args[0].Child(0)))
			}
		}
		return out
	}
}

func TestReleaseScan(t *testing.T) {
	tree := parse(t, `Процедура П()
	Имя = ПолучитьИмяВременногоФайла();
	Другое = ПолучитьИмяВременногоФайла();
	Если Истина Тогда
		УдалитьФайлы(имя);
	КонецЕсли;
КонецПроцедуры`)
	assigns := cst.FindAll(tree.Root, cst.KindAssignment)
	scan := &dataflow.ReleaseScan{Releases: deleteArgs(tree)}

	handle := func(a *cst.Node) exprtree.Node {
		return exprtree.Build(tree, a.FirstChild(cst.KindComplexIdentifier))
	}
	if !scan.Released(assigns[0], handle(assigns[0])) {
		t.Fatalf("release of Имя not found")
	}
	if scan.Released(assigns[1], handle(assigns[1])) {
		t.Fatalf("Другое is never released")
	}
	if got := scan.Cache().Computed(); got != 1 {
		t.Fatalf("release list must be computed once per block, got %d", got)
	}
	scan.Leave(body(tree))
	if scan.Cache().Len() != 0 {
		t.Fatalf("Leave must drop the block entry")
	}
}

func TestReleaseBeforeTriggerIgnored(t *testing.T) {
	tree := parse(t, "Процедура П()\nУдалитьФайлы(Имя);\nИмя = ПолучитьИмяВременногоФайла();\nКонецПроцедуры")
	assign := cst.FindAll(tree.Root, cst.KindAssignment)[0]
	scan := &dataflow.ReleaseScan{Releases: deleteArgs(tree)}
	if scan.Released(assign, exprtree.Build(tree, assign.FirstChild(cst.KindComplexIdentifier))) {
		t.Fatalf("a release before the trigger does not count")
	}
}

func TestScopeCache(t *testing.T) {
	tree := parse(t, "А = 1;")
	block := tree.Root.Child(0)
	c := dataflow.NewScopeCache[int]()
	n := 0
	compute := func() int { n++; return n }
	if c.Get(block, compute) != 1 || c.Get(block, compute) != 1 {
		t.Fatalf("value must be memoised")
	}
	c.Leave(block)
	if c.Get(block, compute) != 2 {
		t.Fatalf("Leave must force recomputation")
	}
}

func TestNestedBlocks(t *testing.T) {
	tree := parse(t, "Если А Тогда\nБ = 1;\nИначеЕсли В Тогда\nИначе\nКонецЕсли;")
	st := tree.Root.Child(0).Statements()[0]
	if got := len(dataflow.NestedBlocks(st)); got != 3 {
		t.Fatalf("want 3 blocks, got %d", got)
	}
}
