package parser_test

import (
	"strings"
	"testing"

	"bslint/internal/cst"
	"bslint/internal/diag"
	"bslint/internal/parser"
	"bslint/internal/source"
	"bslint/internal/token"
)

func parse(t *testing.T, src string) (parser.Result, *diag.Bag) {
	t.Helper()
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("Module.bsl", []byte(src)))
	bag := diag.NewBag(0)
	return parser.ParseFile(file, parser.Options{Reporter: diag.BagReporter{Bag: bag}}), bag
}

func diagnosticsSummary(bag *diag.Bag) string {
	if bag.Len() == 0 {
		return "<none>"
	}
	lines := make([]string, 0, bag.Len())
	for _, d := range bag.Items() {
		lines = append(lines, "["+d.Code.ID()+"] "+d.Message)
	}
	return strings.Join(lines, "; ")
}

func mustParse(t *testing.T, src string) *cst.Tree {
	t.Helper()
	res, bag := parse(t, src)
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(bag))
	}
	if res.Tree.Root.HasError() {
		t.Fatalf("tree has errors: %s", cst.Sexpr(res.Tree.Root))
	}
	return res.Tree
}

func TestParseMethodShapes(t *testing.T) {
	tree := mustParse(t, `&НаСервере
Функция Сумма(Знач А, Б = 1, В = -2) Экспорт
	Возврат А + Б;
КонецФункции`)

	want := "(File (Function (Annotation &НаСервере) Функция Сумма " +
		"(ParamList ( (Param Знач А) , (Param Б = (DefaultValue 1)) , (Param В = (DefaultValue - 2)) )) " +
		"Экспорт (CodeBlock (Return Возврат (Expression (Member (ComplexIdentifier А)) + (Member (ComplexIdentifier Б))) ;)) КонецФункции))"
	if got := cst.Sexpr(tree.Root); got != want {
		t.Fatalf("unexpected tree\nwant: %s\ngot:  %s", want, got)
	}
}

func TestParseStatements(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want cst.Kind
	}{
		{"assignment", "А = 1;", cst.KindAssignment},
		{"call", "Сообщить(\"x\");", cst.KindCallStatement},
		{"method call chain", "Запрос.Выполнить().Выгрузить();", cst.KindCallStatement},
		{"if", "Если А Тогда Б = 1; ИначеЕсли В Тогда Иначе КонецЕсли;", cst.KindIf},
		{"while", "Пока Истина Цикл Прервать; КонецЦикла;", cst.KindWhile},
		{"for", "Для Инд = 1 По 10 Цикл Продолжить; КонецЦикла;", cst.KindFor},
		{"for each", "For Each Стр In Табл Do EndDo;", cst.KindForEach},
		{"try", "Попытка А(); Исключение ВызватьИсключение; КонецПопытки;", cst.KindTry},
		{"raise with args", "ВызватьИсключение(\"Ошибка\", КатегорияОшибки.ОшибкаКонфигурации);", cst.KindRaise},
		{"execute", "Выполнить(Код);", cst.KindExecute},
		{"goto", "Перейти ~Метка;", cst.KindGoto},
		{"add handler", "ДобавитьОбработчик Объект.Событие, Обработчик;", cst.KindAddHandler},
		{"local var", "Перем А, Б;", cst.KindVarStatement},
		{"await", "Ждать ПоказатьВопросАсинх(Текст);", cst.KindCallStatement},
		{"index assignment", "М[0].Поле = Новый Структура(\"А\", 1);", cst.KindAssignment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := "Процедура Тест()\n" + tt.src + "\nКонецПроцедуры"
			tree := mustParse(t, src)
			body := tree.Root.Child(0).FirstChild(cst.KindCodeBlock)
			stmts := body.Statements()
			if len(stmts) == 0 || stmts[0].Kind() != tt.want {
				t.Fatalf("want %s, got %s", tt.want, cst.Sexpr(body))
			}
		})
	}
}

func TestModuleLayout(t *testing.T) {
	tree := mustParse(t, `#Область Переменные
Перем А Экспорт;
#КонецОбласти

Процедура П()
КонецПроцедуры

Б = 2;`)
	var kinds []cst.Kind
	for _, c := range tree.Root.Children() {
		kinds = append(kinds, c.Kind())
	}
	want := []cst.Kind{cst.KindPreprocessor, cst.KindModuleVar, cst.KindPreprocessor, cst.KindProcedure, cst.KindCodeBlock}
	if len(kinds) != len(want) {
		t.Fatalf("want %v, got %v", want, kinds)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Fatalf("child %d: want %s, got %s", i, want[i], kinds[i])
		}
	}
	if d, arg := tree.Root.Child(0).Directive(); d != cst.DirectiveRegion || arg != "Переменные" {
		t.Fatalf("unexpected directive %v %q", d, arg)
	}
}

func TestExpressionIsFlat(t *testing.T) {
	tree := mustParse(t, "А = НЕ Б = 1 И (В ИЛИ Г) <> ?(Д, 1, 2);")
	expr := cst.FindAll(tree.Root, cst.KindExpression)[0]
	// member op member op member op member
	if expr.ChildCount() != 7 {
		t.Fatalf("expected 4 members and 3 operations, got %s", cst.Sexpr(expr))
	}
	if !expr.Child(0).Child(0).IsTerminal() {
		t.Fatalf("unary НЕ must stay a modifier of the first member: %s", cst.Sexpr(expr))
	}
	if len(cst.FindAll(expr, cst.KindTernary)) != 1 {
		t.Fatalf("ternary not found in %s", cst.Sexpr(expr))
	}
}

func TestSkippedArguments(t *testing.T) {
	tree := mustParse(t, "Метод(, 2, );")
	args := cst.FindAll(tree.Root, cst.KindArg)
	if len(args) != 3 || args[0].ChildCount() != 0 || args[1].ChildCount() != 1 || args[2].ChildCount() != 0 {
		t.Fatalf("unexpected args: %s", cst.Sexpr(tree.Root))
	}
}

func TestSemicolonOptionalBeforeTerminator(t *testing.T) {
	tree := mustParse(t, "Если А Тогда\n Б = 1\nКонецЕсли")
	assign := cst.FindAll(tree.Root, cst.KindAssignment)[0]
	if last := assign.Child(assign.ChildCount() - 1); last.IsTerminal(token.Semicolon) {
		t.Fatalf("no semicolon expected")
	}
}

func TestErrorRecovery(t *testing.T) {
	res, bag := parse(t, `Процедура А()
	Б = ;
	Если В Тогда
		Г();
КонецПроцедуры

Процедура Д()
	Е = 1;
КонецПроцедуры`)
	if bag.Len() == 0 {
		t.Fatalf("expected syntax errors")
	}
	root := res.Tree.Root
	if !root.HasError() {
		t.Fatalf("root must report errors")
	}
	methods := root.ChildrenOf(cst.KindProcedure)
	if len(methods) != 2 {
		t.Fatalf("expected both procedures to survive, got %s", cst.Sexpr(root))
	}
	if !methods[0].HasError() || methods[1].HasError() {
		t.Fatalf("error must stay inside the first method")
	}
	if len(cst.FindAll(methods[1], cst.KindAssignment)) != 1 {
		t.Fatalf("second method body lost: %s", cst.Sexpr(methods[1]))
	}
}

func TestStrayTerminatorIsConsumed(t *testing.T) {
	res, bag := parse(t, "Процедура А()\n\tКонецЦикла;\n\tБ = 1;\nКонецПроцедуры")
	if bag.Len() != 1 || bag.Items()[0].Code != diag.SynUnexpectedToken {
		t.Fatalf("expected one SynUnexpectedToken, got %s", diagnosticsSummary(bag))
	}
	if len(cst.FindAll(res.Tree.Root, cst.KindAssignment)) != 1 {
		t.Fatalf("statement after the stray terminator lost")
	}
}

func TestMissingSemicolonReported(t *testing.T) {
	_, bag := parse(t, "А = 1\nБ = 2;")
	if bag.Len() != 1 || bag.Items()[0].Code != diag.SynExpectSemicolon {
		t.Fatalf("expected SynExpectSemicolon, got %s", diagnosticsSummary(bag))
	}
}

func TestParentAndPositions(t *testing.T) {
	tree := mustParse(t, "Процедура А()\n\tБ = 1;\nКонецПроцедуры")
	assign := cst.FindAll(tree.Root, cst.KindAssignment)[0]
	if assign.Line() != 2 || assign.Col() != 1 {
		t.Fatalf("want 2:1, got %d:%d", assign.Line(), assign.Col())
	}
	if p := assign.Ancestor(cst.KindProcedure); p == nil || p != tree.Root.Child(0) {
		t.Fatalf("ancestor lookup failed")
	}
	if got := tree.Text(assign); got != "Б = 1;" {
		t.Fatalf("unexpected text %q", got)
	}
	first, _ := assign.FirstToken()
	if assign.Start() != first.Index {
		t.Fatalf("start index mismatch")
	}
}

func TestMaxErrors(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("m.bsl", []byte(");\n);\n);")))
	bag := diag.NewBag(0)
	parser.ParseFile(file, parser.Options{MaxErrors: 2, Reporter: diag.BagReporter{Bag: bag}})
	if bag.Len() != 2 {
		t.Fatalf("expected reporting to stop at 2, got %d", bag.Len())
	}
}

func TestUnclosedBlockPointsAtOpener(t *testing.T) {
	tests := []struct {
		src, msg, note string
		noteAt         uint32
	}{
		{"Если А Тогда\n\tБ = 1;\n", "expected EndIf", "If opened here", 0},
		{"Б = 1;\nПока Истина Цикл\n", "expected EndDo", "While opened here", uint32(len("Б = 1;\n"))},
		{"Асинх Функция Ф()\n\tВозврат 1;\n", "expected EndFunction", "Function opened here", uint32(len("Асинх "))},
	}
	for _, tt := range tests {
		_, bag := parse(t, tt.src)
		if bag.Len() != 1 {
			t.Fatalf("%q: expected one error, got %s", tt.src, diagnosticsSummary(bag))
		}
		d := bag.Items()[0]
		if d.Code != diag.SynUnclosedBlock || d.Message != tt.msg {
			t.Fatalf("%q: got [%s] %s", tt.src, d.Code.ID(), d.Message)
		}
		if len(d.Notes) != 1 || d.Notes[0].Msg != tt.note || d.Notes[0].Span.Start != tt.noteAt {
			t.Fatalf("%q: unexpected notes %+v", tt.src, d.Notes)
		}
	}
}
