package testkit

import (
	"testing"

	"bslint/internal/module"
)

func TestSpanInvariantsHoldForParsedModules(t *testing.T) {
	for _, src := range []string{
		"",
		"Процедура А(Знач Б = 1) Экспорт\n\tВ = ?(Б > 0, Б, -Б);\nКонецПроцедуры",
		"#Область Основная\nПерем А Экспорт;\n#КонецОбласти",
		"Если А Тогда\n\tБ = ;\nИначеЕсли\nКонецЕсли",
	} {
		u := UnitAt(t, "Module.bsl", src, module.Context{Kind: module.KindCommon})
		if err := CheckSpanInvariants(u.Tree, u.File); err != nil {
			t.Fatalf("%q: %v", src, err)
		}
	}
}

func TestCheckSpanInvariantsRejectsNil(t *testing.T) {
	if err := CheckSpanInvariants(nil, nil); err == nil {
		t.Fatalf("nil tree must be rejected")
	}
}

func TestLines(t *testing.T) {
	u := Unit(t, "А = 1;\nБ = 2;")
	if got := itoa(12345); got != "12345" {
		t.Fatalf("itoa: %q", got)
	}
	if got := Lines(u, nil); len(got) != 0 {
		t.Fatalf("no findings, no lines: %v", got)
	}
}
