package source

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"fortio.org/safecast"
)

// LineCount is at least one: an empty module has one empty line.
func (f *File) LineCount() int {
	return len(f.LineIdx) + 1
}

func (f *File) hasLine(line uint32) bool {
	return line >= 1 && int(line) <= f.LineCount()
}

// LineStart returns the offset of the first byte of a 1-based line.
func (f *File) LineStart(line uint32) (uint32, bool) {
	switch {
	case !f.hasLine(line):
		return 0, false
	case line == 1:
		return 0, true
	}
	return f.LineIdx[line-2] + 1, true
}

// LineEnd returns the offset of the line's '\n', or the content length for
// the last line.
func (f *File) LineEnd(line uint32) (uint32, bool) {
	if !f.hasLine(line) {
		return 0, false
	}
	if i := int(line) - 1; i < len(f.LineIdx) {
		return f.LineIdx[i], true
	}
	return f.size(), true
}

// GetLine returns the text of a 1-based line without '\n'; "" past the end.
func (f *File) GetLine(line uint32) string {
	start, ok := f.LineStart(line)
	if !ok {
		return ""
	}
	end, _ := f.LineEnd(line)
	return f.Text(Span{File: f.ID, Start: start, End: end})
}

// Offset converts a 1-based line and a 0-based rune column to a byte offset,
// clamping the column to the line end. Editors send columns in characters.
func (f *File) Offset(line, col uint32) (uint32, bool) {
	off, ok := f.LineStart(line)
	if !ok {
		return 0, false
	}
	end, _ := f.LineEnd(line)
	for ; col > 0 && off < end; col-- {
		_, size := utf8.DecodeRune(f.Content[off:end])
		off += uint32(size) // #nosec G115 -- size <= utf8.UTFMax
	}
	return off, true
}

// Position is the inverse of Offset: a 1-based line and a 0-based rune column.
func (f *File) Position(off uint32) (line, col uint32) {
	off = min(off, f.size())
	line = toLineCol(f.LineIdx, off).Line
	start, _ := f.LineStart(line)
	if start >= off {
		return line, 0
	}
	col, err := safecast.Conv[uint32](utf8.RuneCount(f.Content[start:off]))
	if err != nil {
		panic(fmt.Errorf("column overflow at offset %d: %w", off, err))
	}
	return line, col
}

// Text returns the bytes under span as a string; "" for a span outside f.
func (f *File) Text(span Span) string {
	if span.Start > span.End || span.End > f.size() {
		return ""
	}
	return string(f.Content[span.Start:span.End])
}

func (f *File) size() uint32 {
	n, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("module %s is too large: %w", f.Path, err))
	}
	return n
}

// FormatPath renders f.Path for output. mode is one of "absolute",
// "relative" (to baseDir, or the working directory when empty), "basename"
// and "auto"; any other value returns the path unchanged.
func (f *File) FormatPath(mode, baseDir string) string {
	switch mode {
	case "absolute":
		abs, err := filepath.Abs(f.Path)
		if err != nil {
			return f.Path
		}
		return filepath.ToSlash(abs)
	case "relative":
		if baseDir == "" {
			baseDir, _ = os.Getwd()
		}
		return relativePath(f.Path, baseDir)
	case "basename":
		return filepath.Base(f.Path)
	case "auto":
		// длинные абсолютные пути выгрузки сворачиваем до имени модуля
		if filepath.IsAbs(f.Path) && len(f.Path) >= 40 {
			return filepath.Base(f.Path)
		}
	}
	return f.Path
}
