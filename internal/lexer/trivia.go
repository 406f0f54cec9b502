package lexer

import (
	"bslint/internal/token"
)

// scanWhitespace коалесцирует подряд идущие пробелы (кроме '\n') в один токен.
func (lx *Lexer) scanWhitespace() token.Token {
	start := lx.cursor.Mark()
	for !lx.cursor.EOF() {
		b := lx.cursor.Peek()
		if isSpaceByte(b) {
			lx.cursor.Bump()
			continue
		}
		if b >= utf8RuneSelf {
			if r, _ := lx.cursor.PeekRune(); isSpaceRune(r) {
				lx.cursor.BumpRune()
				continue
			}
		}
		break
	}
	return lx.emit(token.Whitespace, start)
}

// scanLineComment: //... до '\n' (не включая).
func (lx *Lexer) scanLineComment() token.Token {
	start := lx.cursor.Mark()
	lx.cursor.SkipLine()
	return lx.emit(token.LineComment, start)
}
