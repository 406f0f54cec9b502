package source

import (
	"bytes"
	"path/filepath"
	"slices"
	"strings"
)

var (
	utf8BOM = []byte{0xEF, 0xBB, 0xBF}
	crlf    = []byte("\r\n")
	lf      = []byte("\n")
)

func removeBOM(content []byte) ([]byte, bool) {
	return bytes.CutPrefix(content, utf8BOM)
}

// normalizeCRLF rewrites CRLF pairs to LF; a lone '\r' stays.
func normalizeCRLF(content []byte) ([]byte, bool) {
	if !bytes.Contains(content, crlf) {
		return content, false
	}
	return bytes.ReplaceAll(content, crlf, lf), true
}

// Denormalize brings back what AddNormalized took away: the BOM and CRLF
// endings recorded in flags. A file with mixed endings is written back as
// CRLF throughout; уже стоящие \r\n не удваиваются.
func Denormalize(content []byte, flags FileFlags) []byte {
	var out []byte
	if flags&FileNormalizedCRLF != 0 {
		out = bytes.ReplaceAll(content, crlf, lf)
		out = bytes.ReplaceAll(out, lf, crlf)
	} else {
		out = content
	}
	if flags&FileHadBOM != 0 {
		out = append(slices.Clip(utf8BOM), out...)
	}
	return out
}

func buildLineIndex(content []byte) []uint32 {
	idx := make([]uint32, 0, bytes.Count(content, lf))
	for off := 0; ; {
		i := bytes.IndexByte(content[off:], '\n')
		if i < 0 {
			return idx
		}
		off += i
		idx = append(idx, uint32(off)) // #nosec G115 -- Add checks the size
		off++
	}
}

// toLineCol maps a byte offset to a 1-based line and a 1-based byte column.
func toLineCol(lineIdx []uint32, off uint32) LineCol {
	// число '\n' строго до off
	before, _ := slices.BinarySearch(lineIdx, off)
	if before == 0 {
		return LineCol{Line: 1, Col: off + 1}
	}
	return LineCol{Line: uint32(before) + 1, Col: off - lineIdx[before-1]} // #nosec G115
}

// normalizePath gives one spelling per path: clean and forward slashes.
func normalizePath(p string) string {
	return filepath.ToSlash(filepath.Clean(p))
}

// relativePath returns target relative to base, or the absolute target when
// it lies outside base.
func relativePath(target, base string) string {
	abs, err := filepath.Abs(target)
	if err != nil {
		return target
	}
	if base, err = filepath.Abs(base); err != nil {
		return filepath.ToSlash(abs)
	}
	rel, err := filepath.Rel(base, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(rel)
}
