package lexer

import (
	"bslint/internal/diag"
	"bslint/internal/token"
)

const utf8RuneSelf = 0x80

// scanIdentOrKeyword сканирует [Ident] и проверяет через LookupKeyword.
// Ключевые слова двуязычные и регистронезависимые. Token.Text: ровно исходный фрагмент.
func (lx *Lexer) scanIdentOrKeyword() token.Token {
	start := lx.cursor.Mark()

	r, sz := lx.cursor.PeekRune()
	if sz == 0 || !isIdentStart(r) {
		return lx.scanOperatorOrPunct()
	}
	lx.scanIdentTail()

	tok := lx.emit(token.Ident, start)
	if k, ok := token.LookupKeyword(tok.Text); ok {
		tok.Kind = k
	}
	return tok
}

// scanIdentTail съедает символы идентификатора начиная с текущей позиции.
func (lx *Lexer) scanIdentTail() {
	for {
		r, n := lx.cursor.PeekRune()
		if n == 0 || !isIdentContinue(r) {
			return
		}
		lx.cursor.Off += n
	}
}

// scanAnnotation: &НаСервере, &AtClient, &Перед("Метод").
// Аргументы аннотации разбирает парсер, здесь только '&' + имя.
func (lx *Lexer) scanAnnotation() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // '&'
	r, sz := lx.cursor.PeekRune()
	if sz == 0 || !isIdentStart(r) {
		sp := lx.cursor.SpanFrom(start)
		lx.errLex(diag.LexBadAnnotation, sp, "annotation name expected after '&'")
		return lx.emit(token.Invalid, start)
	}
	lx.scanIdentTail()
	return lx.emit(token.Annotation, start)
}

// scanPreproc: #Область Имя, #Если Сервер Тогда, #КонецЕсли: вся строка одним токеном.
func (lx *Lexer) scanPreproc() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // '#'
	lx.cursor.SkipLine()
	// хвостовой комментарий и пробелы остаются частью строки препроцессора
	return lx.emit(token.Preproc, start)
}
