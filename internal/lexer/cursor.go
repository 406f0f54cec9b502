package lexer

import (
	"fmt"
	"unicode/utf8"

	"fortio.org/safecast"

	"bslint/internal/source"
)

// Cursor: байтовая позиция в содержимом одного файла. Вне [0, Limit) все
// чтения возвращают 0.
type Cursor struct {
	src   []byte
	file  source.FileID
	Off   uint32
	Limit uint32
}

func NewCursor(f *source.File) Cursor {
	limit, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("file %s is too large: %w", f.Path, err))
	}
	return Cursor{src: f.Content, file: f.ID, Limit: limit}
}

func (c *Cursor) EOF() bool { return c.Off >= c.Limit }

func (c *Cursor) Peek() byte { return c.PeekAt(0) }

// PeekAt смотрит на n байт вперёд.
func (c *Cursor) PeekAt(n uint32) byte {
	if c.Off+n >= c.Limit {
		return 0
	}
	return c.src[c.Off+n]
}

// Bump съедает и возвращает текущий байт.
func (c *Cursor) Bump() byte {
	b := c.Peek()
	if !c.EOF() {
		c.Off++
	}
	return b
}

// Eat съедает b, если он текущий.
func (c *Cursor) Eat(b byte) bool {
	if c.EOF() || c.src[c.Off] != b {
		return false
	}
	c.Off++
	return true
}

// SkipLine встаёт на '\n' конца строки или на EOF.
func (c *Cursor) SkipLine() {
	for !c.EOF() && c.src[c.Off] != '\n' {
		c.Off++
	}
}

// Mark запоминает позицию начала токена.
type Mark uint32

func (c *Cursor) Mark() Mark { return Mark(c.Off) }

func (c *Cursor) Reset(m Mark) { c.Off = uint32(m) }

// SpanFrom: от метки до текущей позиции.
func (c *Cursor) SpanFrom(m Mark) source.Span {
	return source.Span{File: c.file, Start: uint32(m), End: c.Off}
}

// PeekRune декодирует руну в текущей позиции; size 0 на EOF.
func (c *Cursor) PeekRune() (r rune, size uint32) {
	if c.EOF() {
		return utf8.RuneError, 0
	}
	if b := c.src[c.Off]; b < utf8.RuneSelf {
		return rune(b), 1
	}
	r, n := utf8.DecodeRune(c.src[c.Off:c.Limit])
	return r, uint32(n) // n <= utf8.UTFMax
}

func (c *Cursor) BumpRune() {
	_, n := c.PeekRune()
	c.Off += n
}
