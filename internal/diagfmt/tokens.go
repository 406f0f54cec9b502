package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"

	"bslint/internal/source"
	"bslint/internal/token"
)

type TokenOutput struct {
	Kind   string      `json:"kind"`
	Text   string      `json:"text,omitempty"`
	Span   source.Span `json:"span"`
	Line   uint32      `json:"line"`
	Col    uint32      `json:"col"`
	Hidden bool        `json:"hidden,omitempty"`
}

// FormatTokensPretty выводит токены в человекочитаемом формате.
// Скрытый канал печатается только при showHidden.
func FormatTokensPretty(w io.Writer, tokens []token.Token, fs *source.FileSet, showHidden bool) error {
	n := 0
	for _, tok := range tokens {
		if tok.Channel == token.ChannelHidden && !showHidden {
			continue
		}
		n++
		startPos, endPos := fs.Resolve(tok.Span)

		if _, err := fmt.Fprintf(w, "%3d: %-15s", n, tok.Kind.String()); err != nil {
			return err
		}
		if tok.Text != "" && tok.Kind != token.Newline {
			fmt.Fprintf(w, " %q", tok.Text)
		}
		fmt.Fprintf(w, " at %d:%d-%d:%d",
			startPos.Line, startPos.Col,
			endPos.Line, endPos.Col)
		if tok.Channel == token.ChannelHidden {
			fmt.Fprint(w, " (hidden)")
		}
		fmt.Fprintln(w)

		if tok.Kind == token.EOF {
			break
		}
	}
	return nil
}

// FormatTokensJSON выводит токены в JSON формате
func FormatTokensJSON(w io.Writer, tokens []token.Token, showHidden bool) error {
	output := make([]TokenOutput, 0, len(tokens))
	for _, tok := range tokens {
		if tok.Channel == token.ChannelHidden && !showHidden {
			continue
		}
		output = append(output, TokenOutput{
			Kind:   tok.Kind.String(),
			Text:   tok.Text,
			Span:   tok.Span,
			Line:   tok.Line,
			Col:    tok.Col,
			Hidden: tok.Channel == token.ChannelHidden,
		})
		if tok.Kind == token.EOF {
			break
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
