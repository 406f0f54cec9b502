package lexer

import (
	"bslint/internal/diag"
	"bslint/internal/token"
)

// scanString: "..." с экранированием "" и продолжением на следующих строках через '|'.
// Между строками продолжения допускаются строки-комментарии //.
// Весь литерал, включая переводы строк: один токен.
func (lx *Lexer) scanString() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // opening '"'
	for !lx.cursor.EOF() {
		b := lx.cursor.Bump()
		switch b {
		case '"':
			if lx.cursor.Eat('"') {
				continue
			}
			return lx.emit(token.String, start)
		case '\n':
			if lx.continuationFollows() {
				continue
			}
			lx.cursor.Off-- // '\n' не входит в литерал
			sp := lx.cursor.SpanFrom(start)
			lx.errLex(diag.LexUnterminatedString, sp, "unterminated string literal")
			return lx.emit(token.Invalid, start)
		}
	}
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(diag.LexUnterminatedString, sp, "unterminated string literal")
	return lx.emit(token.Invalid, start)
}

// continuationFollows проверяет, что следующая значимая строка начинается с '|'.
// При успехе курсор стоит на '|', иначе не двигается.
func (lx *Lexer) continuationFollows() bool {
	mark := lx.cursor.Mark()
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		switch {
		case isSpaceByte(b):
			lx.cursor.Bump()
		case b == '|':
			return true
		case b == '/' && lx.cursor.PeekAt(1) == '/':
			lx.cursor.SkipLine()
			if !lx.cursor.Eat('\n') {
				lx.cursor.Reset(mark)
				return false
			}
		default:
			lx.cursor.Reset(mark)
			return false
		}
	}
	lx.cursor.Reset(mark)
	return false
}

// scanDate: '20240131' или '2024-01-31 10:00:00', только в пределах строки.
func (lx *Lexer) scanDate() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.Bump() // '\''
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if b == '\n' {
			break
		}
		lx.cursor.Bump()
		if b == '\'' {
			return lx.emit(token.DateLit, start)
		}
	}
	sp := lx.cursor.SpanFrom(start)
	lx.errLex(diag.LexUnterminatedDate, sp, "unterminated date literal")
	return lx.emit(token.Invalid, start)
}
