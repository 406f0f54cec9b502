package lsp

import (
	"sort"
	"strings"
	"unicode/utf8"

	"fortio.org/safecast"

	"bslint/internal/source"
)

// Позиции LSP считают символы в единицах UTF-16, а смещения в исходнике байтовые.

func utf16Len(r rune) int {
	if r > 0xFFFF {
		return 2
	}
	return 1
}

func toUint32(n int) uint32 {
	if n < 0 {
		return 0
	}
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return ^uint32(0)
	}
	return v
}

// advanceUTF16 walks line from its start and returns the byte offset reached
// after units UTF-16 code units, stopping at the end of line.
func advanceUTF16(line []byte, units int) int {
	off, seen := 0, 0
	for off < len(line) && seen < units {
		r, size := utf8.DecodeRune(line[off:])
		need := utf16Len(r)
		if seen+need > units {
			break
		}
		seen += need
		off += size
	}
	return off
}

func countUTF16(b []byte) int {
	units := 0
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		units += utf16Len(r)
		b = b[size:]
	}
	return units
}

// offsetForPosition maps pos to a byte offset in file; positions past the end
// clamp to the end of the line or the file.
func offsetForPosition(file *source.File, pos position) uint32 {
	if file == nil || pos.Line < 0 || pos.Character < 0 {
		return 0
	}
	contentLen := toUint32(len(file.Content))
	if pos.Line > len(file.LineIdx) {
		return contentLen
	}
	var lineStart uint32
	if pos.Line > 0 {
		lineStart = file.LineIdx[pos.Line-1] + 1
	}
	lineEnd := contentLen
	if pos.Line < len(file.LineIdx) {
		lineEnd = file.LineIdx[pos.Line]
	}
	if lineStart > lineEnd {
		return lineEnd
	}
	return lineStart + toUint32(advanceUTF16(file.Content[lineStart:lineEnd], pos.Character))
}

func positionForOffset(file *source.File, offset uint32) position {
	if file == nil {
		return position{}
	}
	if n := toUint32(len(file.Content)); offset > n {
		offset = n
	}
	idx := sort.Search(len(file.LineIdx), func(i int) bool { return file.LineIdx[i] >= offset })
	var lineStart uint32
	if idx > 0 {
		lineStart = file.LineIdx[idx-1] + 1
	}
	if lineStart > offset {
		lineStart = offset
	}
	return position{Line: idx, Character: countUTF16(file.Content[lineStart:offset])}
}

func rangeForSpan(file *source.File, span source.Span) lspRange {
	if file == nil {
		return lspRange{}
	}
	return lspRange{
		Start: positionForOffset(file, span.Start),
		End:   positionForOffset(file, span.End),
	}
}

// textOffset is offsetForPosition for a plain document text.
func textOffset(text string, pos position) int {
	if pos.Line < 0 || pos.Character < 0 {
		return 0
	}
	i := 0
	for line := 0; line < pos.Line; line++ {
		nl := strings.IndexByte(text[i:], '\n')
		if nl < 0 {
			return len(text)
		}
		i += nl + 1
	}
	end := strings.IndexByte(text[i:], '\n')
	if end < 0 {
		end = len(text) - i
	}
	return i + advanceUTF16([]byte(text[i:i+end]), pos.Character)
}

// applyChanges applies incremental or full content changes in order.
func applyChanges(text string, changes []textDocumentContentChangeEvent) string {
	for _, change := range changes {
		if change.Range == nil {
			text = change.Text
			continue
		}
		start := textOffset(text, change.Range.Start)
		end := textOffset(text, change.Range.End)
		if end < start {
			end = start
		}
		text = text[:start] + change.Text + text[end:]
	}
	return text
}

// overlaps reports whether two ranges share at least a point; an empty range
// touching the other counts as overlapping.
func overlaps(a, b lspRange) bool {
	return !before(a.End, b.Start) && !before(b.End, a.Start)
}

func before(a, b position) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Character < b.Character
}
