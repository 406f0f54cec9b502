package token

import (
	"sync"

	"golang.org/x/text/cases"
)

// Script selects the keyword language used when the analyzer has to print code.
type Script uint8

const (
	ScriptRussian Script = iota
	ScriptEnglish
)

type spelling struct {
	kind Kind
	en   string
	ru   string
}

var spellings = []spelling{
	{KwProcedure, "Procedure", "Процедура"},
	{KwEndProcedure, "EndProcedure", "КонецПроцедуры"},
	{KwFunction, "Function", "Функция"},
	{KwEndFunction, "EndFunction", "КонецФункции"},
	{KwVar, "Var", "Перем"},
	{KwExport, "Export", "Экспорт"},
	{KwVal, "Val", "Знач"},
	{KwIf, "If", "Если"},
	{KwThen, "Then", "Тогда"},
	{KwElsIf, "ElsIf", "ИначеЕсли"},
	{KwElse, "Else", "Иначе"},
	{KwEndIf, "EndIf", "КонецЕсли"},
	{KwFor, "For", "Для"},
	{KwEach, "Each", "Каждого"},
	{KwIn, "In", "Из"},
	{KwTo, "To", "По"},
	{KwWhile, "While", "Пока"},
	{KwDo, "Do", "Цикл"},
	{KwEndDo, "EndDo", "КонецЦикла"},
	{KwTry, "Try", "Попытка"},
	{KwExcept, "Except", "Исключение"},
	{KwEndTry, "EndTry", "КонецПопытки"},
	{KwRaise, "Raise", "ВызватьИсключение"},
	{KwReturn, "Return", "Возврат"},
	{KwContinue, "Continue", "Продолжить"},
	{KwBreak, "Break", "Прервать"},
	{KwAnd, "And", "И"},
	{KwOr, "Or", "ИЛИ"},
	{KwNot, "Not", "НЕ"},
	{KwTrue, "True", "Истина"},
	{KwFalse, "False", "Ложь"},
	{KwUndefined, "Undefined", "Неопределено"},
	{KwNull, "Null", "NULL"},
	{KwNew, "New", "Новый"},
	{KwGoto, "Goto", "Перейти"},
	{KwExecute, "Execute", "Выполнить"},
	{KwAddHandler, "AddHandler", "ДобавитьОбработчик"},
	{KwRemoveHandler, "RemoveHandler", "УдалитьОбработчик"},
	{KwAsync, "Async", "Асинх"},
	{KwAwait, "Await", "Ждать"},
}

// Caser хранит состояние, поэтому на горутину свой экземпляр.
var folders = sync.Pool{New: func() any {
	c := cases.Fold()
	return &c
}}

var keywords = buildKeywordTable()

func buildKeywordTable() map[string]Kind {
	out := make(map[string]Kind, len(spellings)*2)
	for _, s := range spellings {
		out[Fold(s.en)] = s.kind
		out[Fold(s.ru)] = s.kind
	}
	return out
}

// Fold returns the case-folded form used for identifier and keyword comparison.
// Ключевые слова и идентификаторы в языке регистронезависимые.
func Fold(s string) string {
	c := folders.Get().(*cases.Caser)
	out := c.String(s)
	folders.Put(c)
	return out
}

// EqualFold compares two identifiers the way the language does.
func EqualFold(a, b string) bool {
	return Fold(a) == Fold(b)
}

// LookupKeyword возвращает тип и bool если это ключевое слово.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[Fold(ident)]
	return k, ok
}

// Spell returns the canonical spelling of a keyword in the given script.
func Spell(k Kind, script Script) string {
	for _, s := range spellings {
		if s.kind == k {
			if script == ScriptEnglish {
				return s.en
			}
			return s.ru
		}
	}
	return k.String()
}

// DetectScript guesses the script of a keyword spelling; non-ASCII means Russian.
func DetectScript(text string) Script {
	for _, r := range text {
		if r > 127 {
			return ScriptRussian
		}
	}
	return ScriptEnglish
}
