package token

// Kind represents the category of a source token.
type Kind uint8

const (
	// Invalid indicates an erroneous token.
	Invalid Kind = iota
	// EOF marks the end of the source input.
	EOF

	// hidden channel
	Whitespace
	Newline
	LineComment

	// Ident represents an identifier token.
	Ident
	Number
	String     // "..." целиком, включая многострочные продолжения
	DateLit    // '20240101'
	Preproc    // #Область Имя / #Region ... до конца строки
	Annotation // &НаСервере

	KwProcedure    // Процедура
	KwEndProcedure // КонецПроцедуры
	KwFunction     // Функция
	KwEndFunction  // КонецФункции
	KwVar          // Перем
	KwExport       // Экспорт
	KwVal          // Знач
	KwIf           // Если
	KwThen         // Тогда
	KwElsIf        // ИначеЕсли
	KwElse         // Иначе
	KwEndIf        // КонецЕсли
	KwFor          // Для
	KwEach         // Каждого
	KwIn           // Из
	KwTo           // По
	KwWhile        // Пока
	KwDo           // Цикл
	KwEndDo        // КонецЦикла
	KwTry          // Попытка
	KwExcept       // Исключение
	KwEndTry       // КонецПопытки
	KwRaise        // ВызватьИсключение
	KwReturn       // Возврат
	KwContinue     // Продолжить
	KwBreak        // Прервать
	KwAnd          // И
	KwOr           // ИЛИ
	KwNot          // НЕ
	KwTrue         // Истина
	KwFalse        // Ложь
	KwUndefined    // Неопределено
	KwNull         // NULL
	KwNew          // Новый
	KwGoto         // Перейти
	KwExecute      // Выполнить
	KwAddHandler   // ДобавитьОбработчик
	KwRemoveHandler
	KwAsync // Асинх
	KwAwait // Ждать

	LParen    // (
	RParen    // )
	LBracket  // [
	RBracket  // ]
	Comma     // ,
	Semicolon // ;
	Dot       // .
	Question  // ?
	Colon     // :
	Tilde     // ~
	Assign    // = (присваивание и сравнение различает парсер)
	NotEq     // <>
	Lt        // <
	LtEq      // <=
	Gt        // >
	GtEq      // >=
	Plus      // +
	Minus     // -
	Star      // *
	Slash     // /
	Percent   // %

	kindCount
)

var kindNames = [...]string{
	Invalid:         "Invalid",
	EOF:             "EOF",
	Whitespace:      "Whitespace",
	Newline:         "Newline",
	LineComment:     "LineComment",
	Ident:           "Ident",
	Number:          "Number",
	String:          "String",
	DateLit:         "Date",
	Preproc:         "Preproc",
	Annotation:      "Annotation",
	KwProcedure:     "Procedure",
	KwEndProcedure:  "EndProcedure",
	KwFunction:      "Function",
	KwEndFunction:   "EndFunction",
	KwVar:           "Var",
	KwExport:        "Export",
	KwVal:           "Val",
	KwIf:            "If",
	KwThen:          "Then",
	KwElsIf:         "ElsIf",
	KwElse:          "Else",
	KwEndIf:         "EndIf",
	KwFor:           "For",
	KwEach:          "Each",
	KwIn:            "In",
	KwTo:            "To",
	KwWhile:         "While",
	KwDo:            "Do",
	KwEndDo:         "EndDo",
	KwTry:           "Try",
	KwExcept:        "Except",
	KwEndTry:        "EndTry",
	KwRaise:         "Raise",
	KwReturn:        "Return",
	KwContinue:      "Continue",
	KwBreak:         "Break",
	KwAnd:           "And",
	KwOr:            "Or",
	KwNot:           "Not",
	KwTrue:          "True",
	KwFalse:         "False",
	KwUndefined:     "Undefined",
	KwNull:          "Null",
	KwNew:           "New",
	KwGoto:          "Goto",
	KwExecute:       "Execute",
	KwAddHandler:    "AddHandler",
	KwRemoveHandler: "RemoveHandler",
	KwAsync:         "Async",
	KwAwait:         "Await",
	LParen:          "(",
	RParen:          ")",
	LBracket:        "[",
	RBracket:        "]",
	Comma:           ",",
	Semicolon:       ";",
	Dot:             ".",
	Question:        "?",
	Colon:           ":",
	Tilde:           "~",
	Assign:          "=",
	NotEq:           "<>",
	Lt:              "<",
	LtEq:            "<=",
	Gt:              ">",
	GtEq:            ">=",
	Plus:            "+",
	Minus:           "-",
	Star:            "*",
	Slash:           "/",
	Percent:         "%",
}

func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "Kind(?)"
}

// IsKeyword reports whether k is a reserved word.
func (k Kind) IsKeyword() bool {
	return k >= KwProcedure && k <= KwAwait
}

// IsHidden reports whether tokens of this kind go to the hidden channel.
func (k Kind) IsHidden() bool {
	switch k {
	case Whitespace, Newline, LineComment:
		return true
	default:
		return false
	}
}
