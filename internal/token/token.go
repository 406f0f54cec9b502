package token

import (
	"bslint/internal/source"
)

// Channel separates significant tokens from trivia.
type Channel uint8

const (
	ChannelDefault Channel = iota
	ChannelHidden          // пробелы, переводы строк, комментарии
)

// Token represents a single source token with its location.
type Token struct {
	Kind    Kind
	Span    source.Span
	Text    string
	Line    uint32 // 1-based
	Col     uint32 // 0-based, в рунах
	Channel Channel
	Index   int // позиция в полном потоке токенов
}

// IsLiteral reports whether the token is a constant value.
func (t Token) IsLiteral() bool {
	switch t.Kind {
	case Number, String, DateLit, KwTrue, KwFalse, KwUndefined, KwNull:
		return true
	default:
		return false
	}
}

// IsIdent reports whether the token is an identifier.
func (t Token) IsIdent() bool { return t.Kind == Ident }

// Is reports whether the token is one of kinds.
func (t Token) Is(kinds ...Kind) bool {
	for _, k := range kinds {
		if t.Kind == k {
			return true
		}
	}
	return false
}

// DefaultChannel filters the significant tokens, keeping stream order.
func DefaultChannel(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	for _, t := range tokens {
		if t.Channel == ChannelDefault {
			out = append(out, t)
		}
	}
	return out
}
