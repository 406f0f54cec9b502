package cst

import (
	"strings"
	"unicode"

	"bslint/internal/token"
)

// Directive classifies a preprocessor line.
type Directive uint8

const (
	DirectiveOther Directive = iota
	DirectiveRegion
	DirectiveEndRegion
	DirectiveIf
	DirectiveElsIf
	DirectiveElse
	DirectiveEndIf
	DirectiveInsert
	DirectiveEndInsert
	DirectiveDelete
	DirectiveEndDelete
	DirectiveUse
)

var directives = map[string]Directive{
	"область":       DirectiveRegion,
	"region":        DirectiveRegion,
	"конецобласти":  DirectiveEndRegion,
	"endregion":     DirectiveEndRegion,
	"если":          DirectiveIf,
	"if":            DirectiveIf,
	"иначеесли":     DirectiveElsIf,
	"elsif":         DirectiveElsIf,
	"иначе":         DirectiveElse,
	"else":          DirectiveElse,
	"конецесли":     DirectiveEndIf,
	"endif":         DirectiveEndIf,
	"вставка":       DirectiveInsert,
	"insert":        DirectiveInsert,
	"конецвставки":  DirectiveEndInsert,
	"endinsert":     DirectiveEndInsert,
	"удаление":      DirectiveDelete,
	"delete":        DirectiveDelete,
	"конецудаления": DirectiveEndDelete,
	"enddelete":     DirectiveEndDelete,
	"использовать":  DirectiveUse,
	"use":           DirectiveUse,
}

// ParseDirective splits a preprocessor line ("#Область Имя // комм") into its
// directive and the argument text with a trailing comment removed.
func ParseDirective(text string) (Directive, string) {
	text = strings.TrimPrefix(strings.TrimSpace(text), "#")
	if i := strings.Index(text, "//"); i >= 0 {
		text = text[:i]
	}
	text = strings.TrimLeftFunc(text, unicode.IsSpace)
	end := strings.IndexFunc(text, func(r rune) bool { return !unicode.IsLetter(r) })
	word, rest := text, ""
	if end >= 0 {
		word, rest = text[:end], text[end:]
	}
	d, ok := directives[token.Fold(word)]
	if !ok {
		d = DirectiveOther
	}
	return d, strings.TrimSpace(rest)
}

// Directive returns the directive of a KindPreprocessor node.
func (n *Node) Directive() (Directive, string) {
	if n == nil || n.kind != KindPreprocessor || len(n.children) == 0 {
		return DirectiveOther, ""
	}
	return ParseDirective(n.children[0].tok.Text)
}
