package lexer

import (
	"unicode/utf8"

	"bslint/internal/source"
	"bslint/internal/token"
)

type Lexer struct {
	file   *source.File
	cursor Cursor
	opts   Options
	look   *token.Token // 1 элементный буфер для токена

	line  uint32 // позиция начала следующего токена
	col   uint32
	index int
}

func New(file *source.File, opts Options) *Lexer {
	return &Lexer{
		file:   file,
		cursor: NewCursor(file),
		opts:   opts,
		line:   1,
	}
}

// Tokenize returns the full token stream of file, hidden channel included,
// terminated by a single EOF token.
func Tokenize(file *source.File, opts Options) []token.Token {
	lx := New(file, opts)
	tokens := make([]token.Token, 0, len(file.Content)/3+1)
	for {
		tok := lx.Next()
		tokens = append(tokens, tok)
		if tok.Kind == token.EOF {
			return tokens
		}
	}
}

// Next возвращает следующий токен полного потока, включая скрытый канал.
// После EOF всегда возвращает EOF.
func (lx *Lexer) Next() token.Token {
	if lx.look != nil {
		tok := *lx.look
		lx.look = nil
		return tok
	}

	tok := lx.scan()
	tok.Line, tok.Col = lx.line, lx.col
	tok.Index = lx.index
	if tok.Kind.IsHidden() {
		tok.Channel = token.ChannelHidden
	}
	if tok.Kind != token.EOF {
		lx.index++
		lx.advance(tok.Text)
	}
	return tok
}

// Peek возвращает следующий токен, не потребляя его.
func (lx *Lexer) Peek() token.Token {
	t := lx.Next()
	lx.look = &t
	return t
}

func (lx *Lexer) scan() token.Token {
	if lx.cursor.EOF() {
		return token.Token{Kind: token.EOF, Span: lx.emptySpan()}
	}

	ch := lx.cursor.Peek()
	switch {
	case ch == '\n':
		start := lx.cursor.Mark()
		lx.cursor.Bump()
		return lx.emit(token.Newline, start)

	case isSpaceByte(ch):
		return lx.scanWhitespace()

	case ch >= utf8.RuneSelf:
		// неразрывный пробел и прочие юникодные пробелы тоже пробелы
		if r, _ := lx.cursor.PeekRune(); isSpaceRune(r) {
			return lx.scanWhitespace()
		}
		return lx.scanIdentOrKeyword()

	case ch == '/' && lx.cursor.PeekAt(1) == '/':
		return lx.scanLineComment()

	case isIdentStartByte(ch):
		return lx.scanIdentOrKeyword()

	case isDec(ch):
		return lx.scanNumber()

	case ch == '"':
		return lx.scanString()

	case ch == '\'':
		return lx.scanDate()

	case ch == '#':
		return lx.scanPreproc()

	case ch == '&':
		return lx.scanAnnotation()

	default:
		return lx.scanOperatorOrPunct()
	}
}

// advance двигает line/col за текстом только что выданного токена.
func (lx *Lexer) advance(text string) {
	for _, r := range text {
		if r == '\n' {
			lx.line++
			lx.col = 0
			continue
		}
		lx.col++
	}
}

func (lx *Lexer) emit(k token.Kind, start Mark) token.Token {
	sp := lx.cursor.SpanFrom(start)
	return token.Token{
		Kind: k,
		Span: sp,
		Text: string(lx.file.Content[sp.Start:sp.End]),
	}
}

func (lx *Lexer) emptySpan() source.Span {
	return source.Span{File: lx.file.ID, Start: lx.cursor.Off, End: lx.cursor.Off}
}
