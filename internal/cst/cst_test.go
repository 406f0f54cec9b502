package cst_test

import (
	"testing"

	"bslint/internal/cst"
	"bslint/internal/parser"
	"bslint/internal/source"
	"bslint/internal/token"
)

func parse(t *testing.T, src string) *cst.Tree {
	t.Helper()
	fs := source.NewFileSet()
	return parser.ParseFile(fs.Get(fs.AddVirtual("m.bsl", []byte(src))), parser.Options{}).Tree
}

func TestWithChildrenIsCopyOnWrite(t *testing.T) {
	tree := parse(t, "А = 1;\nБ = 2;")
	block := tree.Root.Child(0)
	orig := block.Children()
	if len(orig) != 2 {
		t.Fatalf("expected 2 statements, got %s", cst.Sexpr(block))
	}

	cp := block.WithChildren(orig[:1])
	if cp == block || cp.ChildCount() != 1 || block.ChildCount() != 2 {
		t.Fatalf("copy must not alias the original")
	}
	if cp.Parent() != block.Parent() || orig[0].Parent() != block {
		t.Fatalf("parents must stay with the original tree")
	}
	if cp.Span().End >= block.Span().End {
		t.Fatalf("copy span must be recomputed, got %v vs %v", cp.Span(), block.Span())
	}
}

func TestHasErrorPropagates(t *testing.T) {
	tree := parse(t, "Процедура А()\n\tБ = ;\nКонецПроцедуры\nПроцедура В()\nКонецПроцедуры")
	if !tree.Root.HasError() {
		t.Fatalf("root must carry the error flag")
	}
	errs := cst.FindAll(tree.Root, cst.KindError)
	if len(errs) != 1 || errs[0].ErrorMessage() == "" || !errs[0].Empty() {
		t.Fatalf("expected one empty error node with a message, got %d", len(errs))
	}
	if tree.Root.Child(1).HasError() {
		t.Fatalf("clean sibling must not be flagged")
	}
	if errs[0].Ancestor(cst.KindProcedure) != tree.Root.Child(0) {
		t.Fatalf("error must belong to the first method")
	}
}

func TestCommentsBefore(t *testing.T) {
	tree := parse(t, "// отдельный\n\n// Описание метода\n// Параметры: нет\nПроцедура А()\nКонецПроцедуры")
	m := tree.Root.Child(0)
	first, _ := m.FirstToken()
	got := tree.CommentsBefore(first.Index)
	if len(got) != 2 || got[0].Text != "// Описание метода" || got[1].Text != "// Параметры: нет" {
		t.Fatalf("unexpected comments %+v", got)
	}
	if len(tree.Comments()) != 3 {
		t.Fatalf("expected 3 comments in total")
	}
}

func TestStatementsSkipPreprocessorAndLabels(t *testing.T) {
	tree := parse(t, "#Область Р\n~М: А = 1;\n#КонецОбласти\nБ();")
	block := tree.Root.FirstChild(cst.KindCodeBlock)
	stmts := block.Statements()
	if len(stmts) != 2 || stmts[0].Kind() != cst.KindAssignment || stmts[1].Kind() != cst.KindCallStatement {
		t.Fatalf("unexpected statements in %s", cst.Sexpr(block))
	}
}

func TestTerminalQueries(t *testing.T) {
	tree := parse(t, "Если А Тогда\nКонецЕсли;")
	ifNode := cst.FindAll(tree.Root, cst.KindIf)[0]
	if ifNode.Terminal(token.KwEndIf) == nil || ifNode.Terminal(token.KwWhile) != nil {
		t.Fatalf("terminal lookup broken")
	}
	last, _ := ifNode.LastToken()
	if last.Kind != token.Semicolon {
		t.Fatalf("last token must be ';', got %s", last.Kind)
	}
	if ifNode.FirstChild(cst.KindCodeBlock) == nil || ifNode.FirstChild(cst.KindCodeBlock).ChildCount() != 0 {
		t.Fatalf("empty code block expected")
	}
	if tree.CompactText(ifNode) != "ЕслиАТогдаКонецЕсли;" {
		t.Fatalf("unexpected compact text %q", tree.CompactText(ifNode))
	}
}

func TestParseDirective(t *testing.T) {
	tests := []struct {
		text string
		want cst.Directive
		arg  string
	}{
		{"#Region Public // api", cst.DirectiveRegion, "Public"},
		{"#КонецОбласти", cst.DirectiveEndRegion, ""},
		{"#Если Сервер Тогда", cst.DirectiveIf, "Сервер Тогда"},
		{"#Вставка", cst.DirectiveInsert, ""},
		{"#Pragma", cst.DirectiveOther, ""},
	}
	for _, tt := range tests {
		d, arg := cst.ParseDirective(tt.text)
		if d != tt.want || arg != tt.arg {
			t.Errorf("%q: want %v %q, got %v %q", tt.text, tt.want, tt.arg, d, arg)
		}
	}
}
