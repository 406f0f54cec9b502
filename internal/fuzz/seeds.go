package fuzztests

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const (
	maxSeedBytes = 64 << 10 // 64 KiB: ограничение для тестового корпуса
)

// builtinSeeds cover every statement form and the usual module layout.
var builtinSeeds = []string{
	"",
	"А = 1;",
	"Перем А Экспорт;\nПерем Б;\n",
	"#Область ПрограммныйИнтерфейс\n\n// Описание.\n//\n// Параметры:\n//  Б - Число - значение.\n//\n// Возвращаемое значение:\n//  Число\n//\nФункция А(Знач Б = 1) Экспорт\n\tВозврат Б * 2;\nКонецФункции\n\n#КонецОбласти\n",
	"&НаСервере\nПроцедура А()\n\tПопытка\n\t\tВызватьИсключение \"ошибка\";\n\tИсключение\n\t\tЗаписьЖурналаРегистрации(\"А\", УровеньЖурналаРегистрации.Ошибка);\n\tКонецПопытки;\nКонецПроцедуры\n",
	"Для Инд = 1 По 10 Цикл\n\tЕсли Инд % 2 = 0 Тогда\n\t\tПродолжить;\n\tИначеЕсли Инд > 8 Тогда\n\t\tПрервать;\n\tИначе\n\t\tБ = ?(Инд > 5, Инд, -Инд);\n\tКонецЕсли;\nКонецЦикла;\n",
	"Для Каждого Стр Из Таблица Цикл\n\tПока Стр.Кол > 0 Цикл\n\t\tСтр.Кол = Стр.Кол - 1;\n\tКонецЦикла;\nКонецЦикла;\n",
	"Запрос = Новый Запрос;\nЗапрос.Текст = \"ВЫБРАТЬ\n|\tТ.Ссылка\n|ИЗ\n|\tСправочник.Т КАК Т\";\nДата = '20240101000000';\n",
	"#Если Сервер Тогда\nА = Новый(\"Структура\", Новый Массив);\n#КонецЕсли\n~Метка:\nПерейти ~Метка;\n",
	"Procedure A(B) Export\n\tIf B <> Undefined And Not B Then\n\t\tReturn;\n\tEndIf;\nEndProcedure\n",
}

func addCorpusSeeds(f *testing.F) {
	for _, s := range builtinSeeds {
		f.Add([]byte(s))
	}
	addTestdataSeeds(f)
}

func addTestdataSeeds(f *testing.F) {
	root := filepath.Join("..", "..", "testdata")
	if _, err := os.Stat(root); err != nil {
		return
	}
	// проходим по дереву testdata, добавляем все *.bsl файлы
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".bsl") {
			return nil
		}
		// #nosec G304 -- path comes from repository testdata walk
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		f.Add(clampSeed(src))
		return nil
	})
}

func clampSeed(src []byte) []byte {
	if len(src) <= maxSeedBytes {
		return append([]byte(nil), src...)
	}
	return append([]byte(nil), src[:maxSeedBytes]...)
}
