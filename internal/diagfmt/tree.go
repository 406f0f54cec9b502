package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"bslint/internal/cst"
	"bslint/internal/source"
)

// TreeFormat selects the CST dump layout.
type TreeFormat uint8

const (
	TreeIndented TreeFormat = iota
	TreeSexpr
	TreeJSON
)

// ParseTreeFormat accepts "tree", "sexpr" and "json".
func ParseTreeFormat(s string) (TreeFormat, error) {
	switch s {
	case "", "tree", "pretty":
		return TreeIndented, nil
	case "sexpr":
		return TreeSexpr, nil
	case "json":
		return TreeJSON, nil
	}
	return TreeIndented, fmt.Errorf("unknown tree format %q", s)
}

// NodeJSON is one CST node in the JSON dump.
type NodeJSON struct {
	Kind     string     `json:"kind"`
	Span     [2]uint32  `json:"span"`
	Line     uint32     `json:"line"`
	Token    string     `json:"token,omitempty"`
	Text     string     `json:"text,omitempty"`
	Error    string     `json:"error,omitempty"`
	Children []NodeJSON `json:"children,omitempty"`
}

// FormatTree dumps the subtree rooted at n.
func FormatTree(w io.Writer, n *cst.Node, file *source.File, format TreeFormat) error {
	switch format {
	case TreeSexpr:
		_, err := fmt.Fprintln(w, cst.Sexpr(n))
		return err
	case TreeJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(nodeJSON(n))
	default:
		var b strings.Builder
		writeIndented(&b, n, file, 0)
		_, err := io.WriteString(w, b.String())
		return err
	}
}

func writeIndented(b *strings.Builder, n *cst.Node, file *source.File, depth int) {
	if n == nil {
		return
	}
	b.WriteString(strings.Repeat("  ", depth))
	line, col := n.Line(), n.Col()
	if file != nil && !n.Empty() {
		line, col = file.Position(n.Span().Start)
	}
	if n.Kind() == cst.KindTerminal {
		fmt.Fprintf(b, "%s %q @%d:%d\n", n.TokenKind(), n.Token().Text, line, col+1)
		return
	}
	b.WriteString(n.Kind().String())
	if n.Empty() {
		b.WriteString(" <empty>")
	} else {
		fmt.Fprintf(b, " @%d:%d", line, col+1)
	}
	if n.Kind() == cst.KindError {
		fmt.Fprintf(b, " %q", n.ErrorMessage())
	}
	b.WriteByte('\n')
	for _, c := range n.Children() {
		writeIndented(b, c, file, depth+1)
	}
}

func nodeJSON(n *cst.Node) NodeJSON {
	sp := n.Span()
	out := NodeJSON{
		Kind: n.Kind().String(),
		Span: [2]uint32{sp.Start, sp.End},
		Line: n.Line(),
	}
	if n.Kind() == cst.KindTerminal {
		out.Token = n.TokenKind().String()
		out.Text = n.Token().Text
		return out
	}
	if n.Kind() == cst.KindError {
		out.Error = n.ErrorMessage()
	}
	for _, c := range n.Children() {
		out.Children = append(out.Children, nodeJSON(c))
	}
	return out
}
