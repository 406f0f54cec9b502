package diagfmt

import (
	"fmt"
	"strings"
)

// PathMode selects how file paths are printed. Relative paths are taken
// against the FileSet base directory, the configuration root.
type PathMode uint8

const (
	PathModeAuto PathMode = iota // as the file was opened
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

var (
	pathModeNames   = [...]string{"auto", "absolute", "relative", "basename"}
	pathModeAliases = map[string]string{"": "auto", "abs": "absolute", "rel": "relative", "base": "basename"}
)

// ParsePathMode also accepts abs, rel and base; "" is auto.
func ParsePathMode(s string) (PathMode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if full, ok := pathModeAliases[name]; ok {
		name = full
	}
	for m, n := range pathModeNames {
		if n == name {
			return PathMode(m), nil
		}
	}
	return PathModeAuto, fmt.Errorf("unknown path mode %q", s)
}

func (m PathMode) String() string {
	if int(m) < len(pathModeNames) {
		return pathModeNames[m]
	}
	return "auto"
}

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color       bool
	Context     int8 // строк контекста вокруг основной
	PathMode    PathMode
	ShowNotes   bool
	ShowFixes   bool
	ShowPreview bool
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	IncludePositions bool // добавить line/col
	PathMode         PathMode
	Max              int // обрезка вывода, не Bag
	IncludeNotes     bool
	IncludeFixes     bool
	IncludePreviews  bool
}

// SarifRunMeta provides metadata for SARIF output.
type SarifRunMeta struct {
	ToolName       string
	ToolVersion    string
	InvocationArgs []string
}
