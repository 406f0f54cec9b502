package lexer

import "unicode"

// Классификаторы символов. Байтовые варианты нужны для диспетчеризации по
// первому байту, рунные работают для кириллицы.

func isIdentStartByte(b byte) bool {
	return b == '_' || 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z'
}

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }

func isIdentContinue(r rune) bool { return isIdentStart(r) || unicode.IsDigit(r) }

func isDec(b byte) bool { return '0' <= b && b <= '9' }

// isSpaceByte: ASCII-пробелы кроме '\n'.
func isSpaceByte(b byte) bool {
	switch b {
	case ' ', '\t', '\r', '\f', '\v':
		return true
	}
	return false
}

// isSpaceRune добавляет неразрывный пробел, BOM и прочие юникодные пробелы.
func isSpaceRune(r rune) bool {
	return r != '\n' && (unicode.IsSpace(r) || r == '\uFEFF')
}
