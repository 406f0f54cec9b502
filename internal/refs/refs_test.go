package refs_test

import (
	"testing"

	"bslint/internal/diag"
	"bslint/internal/parser"
	"bslint/internal/refs"
	"bslint/internal/source"
	"bslint/internal/symbols"
)

func TestIndexReferences(t *testing.T) {
	src := `Процедура Главная() Экспорт
	Помощник(1);
	ЭтотОбъект.Второй();
	Оповещение = Новый ОписаниеОповещения("Третий", ЭтотОбъект);
КонецПроцедуры

Процедура Помощник(А)
	Помощник(А - 1);
КонецПроцедуры

Процедура Второй()
КонецПроцедуры

Процедура Третий(Результат, Параметры) Экспорт
КонецПроцедуры

Процедура Рекурсия()
	Рекурсия();
КонецПроцедуры

Главная();
`
	fs := source.NewFileSet()
	file := fs.Get(fs.AddVirtual("Module.bsl", []byte(src)))
	bag := diag.NewBag(0)
	res := parser.ParseFile(file, parser.Options{Reporter: diag.BagReporter{Bag: bag}})
	if bag.Len() != 0 {
		t.Fatalf("unexpected diagnostics: %s", bag.Items()[0].Message)
	}
	mod := symbols.Build(res.Tree)
	idx := refs.Build(res.Tree, mod)

	if got := len(idx.All()); got != 6 {
		t.Fatalf("expected 6 references, got %d", got)
	}
	tests := []struct {
		method string
		used   bool
	}{
		{"Главная", true},
		{"помощник", true},
		{"Второй", true},
		{"Третий", true},
		{"Рекурсия", false},
	}
	for _, tt := range tests {
		m := mod.FindMethod(tt.method)
		if m == nil {
			t.Fatalf("method %s not found", tt.method)
		}
		if got := idx.IsUsed(m); got != tt.used {
			t.Errorf("IsUsed(%s) = %v, want %v", tt.method, got, tt.used)
		}
	}

	notify := idx.To("Третий")
	if len(notify) != 1 || notify[0].Kind != refs.KindNotify || notify[0].From != mod.FindMethod("Главная") {
		t.Fatalf("unexpected notify reference %+v", notify)
	}
	if body := idx.To("Главная"); len(body) != 1 || body[0].From != nil {
		t.Fatalf("module body call must have nil owner")
	}
	if got := len(idx.From(mod.FindMethod("Главная"))); got != 3 {
		t.Fatalf("expected 3 references from Главная, got %d", got)
	}
}

func TestNilIndexIsEmpty(t *testing.T) {
	var idx *refs.Index
	if idx.All() != nil || idx.To("А") != nil || idx.From(nil) != nil {
		t.Fatalf("nil index must answer empty")
	}
}
