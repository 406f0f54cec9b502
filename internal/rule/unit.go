package rule

import (
	"bslint/internal/cst"
	"bslint/internal/module"
	"bslint/internal/refs"
	"bslint/internal/source"
	"bslint/internal/symbols"
	"bslint/internal/token"
)

// Unit is everything known about one module. It is shared read-only by all
// rules of a run. Symbols and Refs may be nil.
type Unit struct {
	File    *source.File
	Tree    *cst.Tree
	Symbols *symbols.Module
	Refs    *refs.Index
	Module  module.Context
	// Script is the keyword language used when a fix has to print code.
	Script token.Script
	// Language selects message templates: "ru" or "en".
	Language string
}

func (u *Unit) Root() *cst.Node {
	if u == nil || u.Tree == nil {
		return nil
	}
	return u.Tree.Root
}

// Tokens is the full stream, hidden channel included.
func (u *Unit) Tokens() []token.Token {
	if u == nil || u.Tree == nil {
		return nil
	}
	return u.Tree.Tokens
}

func (u *Unit) DefaultTokens() []token.Token {
	if u == nil || u.Tree == nil {
		return nil
	}
	return u.Tree.DefaultTokens()
}

func (u *Unit) Lines() []string {
	if u == nil || u.Tree == nil {
		return nil
	}
	return u.Tree.Lines()
}

func (u *Unit) Text(n *cst.Node) string {
	if u == nil || u.Tree == nil || n == nil {
		return ""
	}
	return u.Tree.Text(n)
}

// Methods returns all methods or nil when no symbol tree was built.
func (u *Unit) Methods() []*symbols.Method {
	if u == nil {
		return nil
	}
	return u.Symbols.AllMethods()
}
