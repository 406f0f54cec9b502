package diagfmt

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"bslint/internal/diag"
	"bslint/internal/source"
)

// fixEditPreview: целые строки, которых касается правка, до и после неё.
type fixEditPreview struct {
	before []string
	after  []string
}

func buildFixEditPreview(fs *source.FileSet, edit diag.TextEdit) (fixEditPreview, error) {
	var f *source.File
	if fs != nil {
		f = fs.Get(edit.Span.File)
	}
	if f == nil {
		return fixEditPreview{}, fmt.Errorf("file %d is not loaded", edit.Span.File)
	}
	sp := edit.Span
	first, _ := f.Position(sp.Start)
	last, _ := f.Position(sp.End)
	from, _ := f.LineStart(first)
	to, _ := f.LineEnd(max(first, last))
	if sp.Start > sp.End || sp.Start < from || sp.End > to {
		return fixEditPreview{}, fmt.Errorf("edit %d..%d does not fit lines %d-%d", sp.Start, sp.End, first, last)
	}

	block := f.Content[from:to]
	var after bytes.Buffer
	after.Write(block[:sp.Start-from])
	after.WriteString(edit.NewText)
	after.Write(block[sp.End-from:])

	return fixEditPreview{
		before: previewLines(block),
		after:  previewLines(after.Bytes()),
	}, nil
}

// previewLines: пустой блок даёт ноль строк, завершающий '\n' не даёт лишней.
func previewLines(b []byte) []string {
	if len(b) == 0 {
		return nil
	}
	return strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
}

// UnifiedDiff renders the change of one file as a unified diff with three
// lines of context. Equal contents yield "".
func UnifiedDiff(path string, before, after []byte) (string, error) {
	if bytes.Equal(before, after) {
		return "", nil
	}
	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(before)),
		B:        difflib.SplitLines(string(after)),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  3,
	})
	if err != nil {
		return "", fmt.Errorf("diff %s: %w", path, err)
	}
	return text, nil
}
