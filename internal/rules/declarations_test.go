package rules_test

import (
	"testing"

	"bslint/internal/testkit"
)

func TestNumberOfParams(t *testing.T) {
	src := `Процедура А(П1, П2, П3, П4, П5, П6, П7, П8)
КонецПроцедуры
Процедура Б(П1 = 1, П2 = 2, П3 = 3, П4 = 4)
КонецПроцедуры
Процедура В(П1, П2 = 1)
КонецПроцедуры`
	d := def(t, "NumberOfParams")
	u := testkit.Unit(t, src)
	diags := testkit.Run(t, d, u, nil)
	wantCount(t, u, diags, 2)
	if got := testkit.Lines(u, diags); got[0] != 1 || got[1] != 3 {
		t.Fatalf("unexpected lines %v", got)
	}
	if diags[0].Message != "Method А has too many parameters" {
		t.Fatalf("unexpected message %q", diags[0].Message)
	}
	relaxed := map[string]any{"maxParamsCount": 8, "maxOptionalParamsCount": 4}
	wantCount(t, u, testkit.Run(t, d, u, relaxed), 0)
}

func TestEmptyRegion(t *testing.T) {
	src := `#Область Пустая
#КонецОбласти
#Область Полная
Процедура А() Экспорт
КонецПроцедуры
#КонецОбласти
#Область Внешняя
#Область Внутренняя
#КонецОбласти
#КонецОбласти
#Область СКодом
Б = 1;
#КонецОбласти`
	d := def(t, "EmptyRegion")
	u := testkit.Unit(t, src)
	diags := testkit.Run(t, d, u, nil)
	wantCount(t, u, diags, 2)
	if diags[0].Message != "Region Пустая is empty" || diags[1].Message != "Region Внутренняя is empty" {
		t.Fatalf("unexpected findings %s", testkit.Summary(u, diags))
	}
}

func TestExportVariables(t *testing.T) {
	src := `Перем А Экспорт;
Перем Б;
#Область Переменные
Перем В, Г Экспорт;
#КонецОбласти
Процедура П()
	Перем Д;
КонецПроцедуры`
	d := def(t, "ExportVariables")
	u := testkit.Unit(t, src)
	diags := testkit.Run(t, d, u, nil)
	wantCount(t, u, diags, 2)
	if diags[0].Message != "Avoid exported module variable А" || diags[1].Message != "Avoid exported module variable Г" {
		t.Fatalf("unexpected findings %s", testkit.Summary(u, diags))
	}
}

func TestMissingMethodDescription(t *testing.T) {
	src := `// Описание метода.
Процедура А() Экспорт
КонецПроцедуры

Процедура Б() Экспорт
КонецПроцедуры

Процедура В()
КонецПроцедуры`
	d := def(t, "MissingMethodDescription")
	u := testkit.Unit(t, src)
	diags := testkit.Run(t, d, u, nil)
	wantCount(t, u, diags, 1)
	if diags[0].Message != "Method Б has no description" {
		t.Fatalf("unexpected message %q", diags[0].Message)
	}
	wantCount(t, u, testkit.Run(t, d, u, map[string]any{"checkAllMethods": true}), 2)
}

func TestUnusedLocalMethod(t *testing.T) {
	src := `Процедура Используемый()
КонецПроцедуры

Процедура Неиспользуемый()
	Неиспользуемый();
КонецПроцедуры

Процедура Экспортный() Экспорт
	Используемый();
КонецПроцедуры

Процедура Подключаемый_Обработчик()
КонецПроцедуры

&После("Метод")
Процедура Расш_Метод()
КонецПроцедуры

Процедура ПоОповещению(Результат, Параметры) Экспорт
КонецПроцедуры

Процедура ЧерезОповещение()
КонецПроцедуры

Оповещение = Новый ОписаниеОповещения("ЧерезОповещение", ЭтотОбъект);`
	d := def(t, "UnusedLocalMethod")
	u := testkit.Unit(t, src)
	diags := testkit.Run(t, d, u, nil)
	wantCount(t, u, diags, 1)
	if diags[0].Message != "Unused local method Неиспользуемый" {
		t.Fatalf("unexpected message %q", diags[0].Message)
	}
	diags = testkit.Run(t, d, u, map[string]any{"attachableMethodPrefixes": ""})
	wantCount(t, u, diags, 2)
}
