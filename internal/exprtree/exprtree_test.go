package exprtree_test

import (
	"testing"

	"bslint/internal/cst"
	"bslint/internal/diag"
	"bslint/internal/exprtree"
	"bslint/internal/parser"
	"bslint/internal/source"
	"bslint/internal/token"
)

// buildRHS разбирает "Х = expr;" и строит дерево правой части.
func buildRHS(t *testing.T, expr string) (exprtree.Node, *source.File) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("Module.bsl", []byte("Х = "+expr+";")))
	bag := diag.NewBag(0)
	res := parser.ParseFile(file, parser.Options{Reporter: diag.BagReporter{Bag: bag}})
	if bag.Len() != 0 {
		t.Fatalf("%q: unexpected diagnostics: %s", expr, bag.Items()[0].Message)
	}
	assigns := cst.FindAll(res.Tree.Root, cst.KindAssignment)
	if len(assigns) != 1 {
		t.Fatalf("%q: expected one assignment, got %d", expr, len(assigns))
	}
	n := exprtree.Build(res.Tree, assigns[0].FirstChild(cst.KindExpression))
	if n == nil {
		t.Fatalf("%q: Build returned nil", expr)
	}
	return n, file
}

func TestPrintRoundTrip(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"А + Б * В", "А + Б * В"},
		{"(А + Б) * В", "(А + Б) * В"},
		{"((А))", "А"},
		{"А - (Б - В)", "А - (Б - В)"},
		{"(А - Б) - В", "А - Б - В"},
		{"-А * Б", "-А * Б"},
		{"НЕ А = Б И В", "НЕ А = Б И В"},
		{"НЕ (А ИЛИ Б)", "НЕ (А ИЛИ Б)"},
		{"(А ИЛИ Б) И В", "(А ИЛИ Б) И В"},
		{"Объект.Метод(1, , 2)[0].Поле", "Объект.Метод(1, , 2)[0].Поле"},
		{"?(А > 0, 1, 2)", "?(А > 0, 1, 2)"},
		{"Новый Массив", "Новый Массив"},
		{"Новый Структура()", "Новый Структура()"},
		{`Новый("Массив")`, `Новый("Массив")`},
		{`"а" "б"`, `"а" "б"`},
	}
	for _, tt := range tests {
		n, _ := buildRHS(t, tt.in)
		if got := exprtree.Print(n, token.ScriptRussian); got != tt.want {
			t.Errorf("%q: want %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestNotBindsLooserThanComparison(t *testing.T) {
	n, _ := buildRHS(t, "НЕ А = Б И В")
	and, ok := n.(*exprtree.BinaryOp)
	if !ok || and.Op != exprtree.OpAnd {
		t.Fatalf("expected And at the root, got %T", n)
	}
	not, ok := and.Left.(*exprtree.UnaryOp)
	if !ok || not.Op != exprtree.OpNot {
		t.Fatalf("expected Not on the left, got %T", and.Left)
	}
	if cmp, ok := not.Operand.(*exprtree.BinaryOp); !ok || cmp.Op != exprtree.OpEq {
		t.Fatalf("expected Not to cover the comparison, got %T", not.Operand)
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"А + Б", "(а + б)", true},
		{"True", "Истина", true},
		{"1.50", "1.5", true},
		{"007", "7", true},
		{"А + Б", "Б + А", false},
		{"Стр.Поле", "стр.ПОЛЕ", true},
		{`"а"`, `"А"`, false},
		{"Ф(1, , 2)", "ф(1, , 2)", true},
		{"Ф(1, 2)", "Ф(1, , 2)", false},
		{"Новый Массив", "Массив", false},
		{"А[0]", "а[0]", true},
	}
	for _, tt := range tests {
		a, _ := buildRHS(t, tt.a)
		b, _ := buildRHS(t, tt.b)
		if got := exprtree.Equal(a, b); got != tt.want {
			t.Errorf("Equal(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestNegate(t *testing.T) {
	tests := []struct {
		in     string
		script token.Script
		want   string
	}{
		{"А = Б", token.ScriptRussian, "А <> Б"},
		{"А < Б", token.ScriptRussian, "А >= Б"},
		{"А > Б", token.ScriptRussian, "А <= Б"},
		{"НЕ А", token.ScriptRussian, "А"},
		{"НЕ (А И Б)", token.ScriptRussian, "А И Б"},
		{"А", token.ScriptRussian, "НЕ А"},
		{"А И Б", token.ScriptRussian, "НЕ (А И Б)"},
		{"Истина", token.ScriptRussian, "Ложь"},
		{"A Or B", token.ScriptEnglish, "Not (A Or B)"},
		{"False", token.ScriptEnglish, "True"},
	}
	for _, tt := range tests {
		n, _ := buildRHS(t, tt.in)
		if got := exprtree.Negate(n, tt.script); got != tt.want {
			t.Errorf("Negate(%q): want %q, got %q", tt.in, tt.want, got)
		}
	}
}

func TestSpansCoverSource(t *testing.T) {
	n, file := buildRHS(t, "А + Б * В")
	if got := file.Text(n.Span()); got != "А + Б * В" {
		t.Fatalf("root span covers %q", got)
	}
	mul := n.(*exprtree.BinaryOp).Right
	if got := file.Text(mul.Span()); got != "Б * В" {
		t.Fatalf("right operand span covers %q", got)
	}
}

func TestParenthesisedSpanIncludesParens(t *testing.T) {
	n, file := buildRHS(t, "НЕ (А <> Б)")
	if got := file.Text(n.Span()); got != "НЕ (А <> Б)" {
		t.Fatalf("negation span covers %q", got)
	}
	inner := n.(*exprtree.UnaryOp).Operand
	if got := file.Text(inner.Span()); got != "(А <> Б)" {
		t.Fatalf("operand span covers %q", got)
	}
}

func TestWalkVisitsAllIdentifiers(t *testing.T) {
	n, _ := buildRHS(t, "Ф(А, Б.В) + ?(Г, Д, Е)")
	var names []string
	exprtree.Walk(n, func(x exprtree.Node) bool {
		if id, ok := x.(*exprtree.Identifier); ok {
			names = append(names, id.Name)
		}
		return true
	})
	want := []string{"Ф", "А", "Б", "Г", "Д", "Е"}
	if len(names) != len(want) {
		t.Fatalf("want %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("want %v, got %v", want, names)
		}
	}
}
