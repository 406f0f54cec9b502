// Package refs indexes the method references of one module: direct calls,
// calls through ThisObject and method names passed to NotifyDescription.
package refs

import (
	"strings"

	"bslint/internal/cst"
	"bslint/internal/source"
	"bslint/internal/symbols"
	"bslint/internal/token"
)

type Kind uint8

const (
	KindCall   Kind = iota // Метод() или ЭтотОбъект.Метод()
	KindNotify             // Новый ОписаниеОповещения("Метод", ...)
)

func (k Kind) String() string {
	if k == KindNotify {
		return "notify"
	}
	return "call"
}

// Reference is one use of a method name.
type Reference struct {
	Name string
	Kind Kind
	Span source.Span
	Node *cst.Node
	// From is the enclosing method; nil for the module body.
	From *symbols.Method
}

type Index struct {
	refs   []Reference
	byName map[string][]int
}

var (
	thisObject  = []string{"ЭтотОбъект", "ThisObject"}
	notifyTypes = []string{"ОписаниеОповещения", "NotifyDescription"}
)

func oneOf(s string, names []string) bool {
	for _, n := range names {
		if token.EqualFold(s, n) {
			return true
		}
	}
	return false
}

// Build walks the whole tree once. mod may be nil; From is then always nil.
func Build(tree *cst.Tree, mod *symbols.Module) *Index {
	idx := &Index{byName: make(map[string][]int)}
	if tree == nil || tree.Root == nil {
		return idx
	}
	owners := make(map[*cst.Node]*symbols.Method)
	for _, m := range mod.AllMethods() {
		owners[m.Node] = m
	}
	owner := func(n *cst.Node) *symbols.Method {
		if a := n.Ancestor(cst.KindProcedure, cst.KindFunction); a != nil {
			return owners[a]
		}
		return nil
	}
	cst.Inspect(tree.Root, func(n *cst.Node) bool {
		switch n.Kind() {
		case cst.KindGlobalCall:
			if name := n.Terminal(token.Ident); name != nil {
				idx.add(Reference{Name: name.Token().Text, Kind: KindCall, Span: name.Span(), Node: n, From: owner(n)})
			}
		case cst.KindComplexIdentifier:
			kids := n.Children()
			if len(kids) >= 2 && kids[0].IsTerminal(token.Ident) && oneOf(kids[0].Token().Text, thisObject) &&
				kids[1].Kind() == cst.KindAccessCall {
				if name := kids[1].Child(1); name != nil && name.Kind() == cst.KindTerminal {
					idx.add(Reference{Name: name.Token().Text, Kind: KindCall, Span: name.Span(), Node: kids[1], From: owner(n)})
				}
			}
		case cst.KindNewExpr:
			typ := n.Terminal(token.Ident)
			if typ == nil || !oneOf(typ.Token().Text, notifyTypes) {
				break
			}
			if lit := firstStringArg(n.FirstChild(cst.KindArgList)); lit != nil {
				name := strings.Trim(lit.Token().Text, `"`)
				idx.add(Reference{Name: name, Kind: KindNotify, Span: lit.Span(), Node: n, From: owner(n)})
			}
		}
		return true
	})
	return idx
}

// firstStringArg: строковая константа первого аргумента, если он ровно такой.
func firstStringArg(list *cst.Node) *cst.Node {
	if list == nil {
		return nil
	}
	arg := list.FirstChild(cst.KindArg)
	if arg == nil {
		return nil
	}
	expr := arg.FirstChild(cst.KindExpression)
	if expr == nil || expr.ChildCount() != 1 {
		return nil
	}
	member := expr.Child(0)
	if member.ChildCount() != 1 || member.Child(0).Kind() != cst.KindConstValue {
		return nil
	}
	c := member.Child(0)
	if c.ChildCount() != 1 || !c.Child(0).IsTerminal(token.String) {
		return nil
	}
	return c.Child(0)
}

func (idx *Index) add(r Reference) {
	idx.byName[token.Fold(r.Name)] = append(idx.byName[token.Fold(r.Name)], len(idx.refs))
	idx.refs = append(idx.refs, r)
}

// All returns every reference in source order.
func (idx *Index) All() []Reference {
	if idx == nil {
		return nil
	}
	return idx.refs
}

// To returns references to name, case-insensitively.
func (idx *Index) To(name string) []Reference {
	if idx == nil {
		return nil
	}
	ids := idx.byName[token.Fold(name)]
	out := make([]Reference, 0, len(ids))
	for _, i := range ids {
		out = append(out, idx.refs[i])
	}
	return out
}

// From returns references made inside m.
func (idx *Index) From(m *symbols.Method) []Reference {
	if idx == nil {
		return nil
	}
	var out []Reference
	for _, r := range idx.refs {
		if r.From == m {
			out = append(out, r)
		}
	}
	return out
}

// IsUsed reports whether m is referenced from anywhere but its own body.
func (idx *Index) IsUsed(m *symbols.Method) bool {
	for _, r := range idx.To(m.Name) {
		if r.From != m {
			return true
		}
	}
	return false
}
