package fuzztests

import (
	"context"
	"testing"
	"time"

	"bslint/internal/diag"
	"bslint/internal/parser"
	"bslint/internal/source"
	"bslint/internal/symbols"
	"bslint/internal/testkit"
)

// parseTimeout is the maximum time allowed for parsing a single input.
// If parsing takes longer, it indicates a potential infinite loop.
const parseTimeout = 5 * time.Second

func FuzzParserBuildsTree(f *testing.F) {
	addCorpusSeeds(f)
	f.Fuzz(func(t *testing.T, input []byte) {
		fs := source.NewFileSet()
		file := fs.Get(fs.AddNormalized("Fuzz.bsl", clampInput(input)))

		bag := diag.NewBag(128)
		res := parser.ParseFile(file, parser.Options{
			Reporter:  diag.BagReporter{Bag: bag},
			MaxErrors: 128,
		})
		if err := testkit.CheckSpanInvariants(res.Tree, file); err != nil {
			t.Fatalf("span invariants: %v\ninput: %q", err, truncateForLog(input, 200))
		}
		// таблица символов строится и для синтаксически битого модуля
		_ = symbols.Build(res.Tree)
	})
}

// FuzzParserNoHang tests that the parser doesn't hang on any input.
// Error recovery must always make progress.
func FuzzParserNoHang(f *testing.F) {
	addCorpusSeeds(f)

	f.Add([]byte("Процедура А()\n\tБ = 1\n\tВ = 2;\nКонецПроцедуры"))          // нет ';'
	f.Add([]byte("Если А Тогда Если Б Тогда Если В Тогда"))                    // незакрытые блоки
	f.Add([]byte("КонецЕсли; КонецЦикла; КонецПроцедуры; КонецФункции;"))      // лишние концы
	f.Add([]byte("А = ((((((((((1"))                                           // глубокие скобки
	f.Add([]byte("Для Каждого Из Цикл КонецЦикла"))                            // пустые части
	f.Add([]byte("#Область\n#Если Сервер Тогда\n#КонецОбласти"))               // перекрёст директив
	f.Add([]byte("&НаСервере(\nФункция Ф(Знач, , Знач Б = ) Экспорт Возврат")) // битая сигнатура
	f.Add([]byte("А = \"строка\n|продолжение"))                                // незакрытая строка
	f.Add([]byte("Б = '2024010"))                                              // незакрытая дата

	f.Fuzz(func(t *testing.T, input []byte) {
		input = clampInput(input)

		ctx, cancel := context.WithTimeout(context.Background(), parseTimeout)
		defer cancel()

		done := make(chan struct{})
		go func() {
			defer close(done)
			fs := source.NewFileSet()
			file := fs.Get(fs.AddNormalized("Fuzz.bsl", input))
			_ = parser.ParseFile(file, parser.Options{MaxErrors: 128})
		}()

		select {
		case <-done:
		case <-ctx.Done():
			t.Fatalf("parser hang detected: parsing took longer than %v\ninput (%d bytes): %q",
				parseTimeout, len(input), truncateForLog(input, 200))
		}
	})
}

// truncateForLog truncates input for logging purposes
func truncateForLog(input []byte, maxLen int) []byte {
	if len(input) <= maxLen {
		return input
	}
	return append(input[:maxLen:maxLen], []byte("...")...)
}
