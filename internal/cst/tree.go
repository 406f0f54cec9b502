package cst

import (
	"strings"

	"bslint/internal/source"
	"bslint/internal/token"
)

// Tree bundles the root of a parsed unit with its full token stream.
type Tree struct {
	Root   *Node
	Tokens []token.Token // полный поток, включая скрытый канал, с EOF в конце
	File   *source.File

	significant []token.Token
}

// NewTree freezes a parsed unit. The tree must not be modified afterwards.
func NewTree(root *Node, tokens []token.Token, file *source.File) *Tree {
	return &Tree{
		Root:        root,
		Tokens:      tokens,
		File:        file,
		significant: token.DefaultChannel(tokens),
	}
}

// DefaultTokens returns the significant tokens, EOF included.
func (t *Tree) DefaultTokens() []token.Token { return t.significant }

// HiddenTokens returns whitespace, newline and comment tokens in order.
func (t *Tree) HiddenTokens() []token.Token {
	out := make([]token.Token, 0, len(t.Tokens)-len(t.significant))
	for _, tok := range t.Tokens {
		if tok.Channel == token.ChannelHidden {
			out = append(out, tok)
		}
	}
	return out
}

// Comments returns the comment tokens in order.
func (t *Tree) Comments() []token.Token {
	var out []token.Token
	for _, tok := range t.Tokens {
		if tok.Kind == token.LineComment {
			out = append(out, tok)
		}
	}
	return out
}

// Token returns the token with the given stream index.
func (t *Tree) Token(i int) (token.Token, bool) {
	if i < 0 || i >= len(t.Tokens) {
		return token.Token{}, false
	}
	return t.Tokens[i], true
}

// Text returns the source text covered by n.
func (t *Tree) Text(n *Node) string {
	if n == nil || t.File == nil {
		return ""
	}
	return t.File.Text(n.Span())
}

// CompactText returns the token texts of n joined without hidden tokens, used to
// compare code fragments regardless of formatting.
func (t *Tree) CompactText(n *Node) string {
	var b strings.Builder
	Inspect(n, func(x *Node) bool {
		if x.kind == KindTerminal {
			b.WriteString(x.tok.Text)
		}
		return true
	})
	return b.String()
}

// Lines returns the file content split on '\n'.
func (t *Tree) Lines() []string {
	if t.File == nil {
		return nil
	}
	return strings.Split(string(t.File.Content), "\n")
}

// CommentsBefore returns the consecutive comment lines that directly precede the
// token with stream index idx (only whitespace and single newlines in between).
func (t *Tree) CommentsBefore(idx int) []token.Token {
	var out []token.Token
	newlines := 0
scan:
	for i := idx - 1; i >= 0; i-- {
		tok := t.Tokens[i]
		switch tok.Kind {
		case token.Whitespace:
		case token.Newline:
			newlines++
			if newlines > 1 {
				break scan
			}
		case token.LineComment:
			out = append(out, tok)
			newlines = 0
		default:
			break scan
		}
	}
	return reverse(out)
}

func reverse(toks []token.Token) []token.Token {
	for i, j := 0, len(toks)-1; i < j; i, j = i+1, j-1 {
		toks[i], toks[j] = toks[j], toks[i]
	}
	return toks
}
