package symbols

import (
	"strings"

	"bslint/internal/cst"
	"bslint/internal/token"
)

// Build collects the symbol tree of a parsed module. Error nodes are skipped;
// an unclosed region extends to the end of the file.
func Build(tree *cst.Tree) *Module {
	mod := &Module{Tree: tree, byName: make(map[string]*Method)}
	if tree == nil || tree.Root == nil {
		return mod
	}
	b := builder{tree: tree, mod: mod}
	for _, c := range tree.Root.Children() {
		b.item(c)
	}
	end := tree.Root.Span().ZeroideToEnd()
	for _, r := range b.stack {
		r.Span = r.Start.Span().Cover(end)
	}
	return mod
}

type builder struct {
	tree  *cst.Tree
	mod   *Module
	stack []*Region
}

func (b *builder) top() *Region {
	if len(b.stack) == 0 {
		return nil
	}
	return b.stack[len(b.stack)-1]
}

func (b *builder) item(n *cst.Node) {
	switch n.Kind() {
	case cst.KindPreprocessor:
		b.preprocessor(n)
	case cst.KindModuleVar:
		b.moduleVar(n)
	case cst.KindProcedure, cst.KindFunction:
		b.method(n)
	case cst.KindCodeBlock:
		for _, st := range n.Children() {
			if st.Kind() == cst.KindPreprocessor {
				b.preprocessor(st)
				continue
			}
			if r := b.top(); r != nil {
				r.hasCode = true
			}
		}
	default:
		if r := b.top(); r != nil {
			r.hasCode = true
		}
	}
}

func (b *builder) preprocessor(n *cst.Node) {
	dir, arg := n.Directive()
	switch dir {
	case cst.DirectiveRegion:
		r := &Region{Name: arg, Start: n, Span: n.Span(), Parent: b.top()}
		if r.Parent != nil {
			r.Parent.Regions = append(r.Parent.Regions, r)
		} else {
			b.mod.Regions = append(b.mod.Regions, r)
		}
		b.mod.allRegs = append(b.mod.allRegs, r)
		b.stack = append(b.stack, r)
	case cst.DirectiveEndRegion:
		r := b.top()
		if r == nil {
			return
		}
		r.End = n
		r.Span = r.Start.Span().Cover(n.Span())
		b.stack = b.stack[:len(b.stack)-1]
	}
}

func (b *builder) moduleVar(n *cst.Node) {
	desc := b.describe(n)
	for _, item := range n.ChildrenOf(cst.KindVarItem) {
		name := item.Terminal(token.Ident)
		if name == nil {
			continue
		}
		v := &Variable{
			Name:        name.Token().Text,
			Kind:        VarModule,
			Span:        name.Span(),
			Node:        item,
			Description: desc,
			Region:      b.top(),
		}
		if item.Terminal(token.KwExport) != nil {
			v.Flags |= FlagExport
		}
		if r := b.top(); r != nil {
			r.Variables = append(r.Variables, v)
		} else {
			b.mod.Variables = append(b.mod.Variables, v)
		}
	}
}

func (b *builder) method(n *cst.Node) {
	m := &Method{Node: n, Region: b.top(), Description: b.describe(n)}
	if name := n.Terminal(token.Ident); name != nil {
		m.Name = name.Token().Text
		m.NameSpan = name.Span()
	} else {
		m.NameSpan = n.Span().ZeroideToStart()
	}
	if n.Kind() == cst.KindFunction {
		m.Flags |= FlagFunction
	}
	if n.Terminal(token.KwExport) != nil {
		m.Flags |= FlagExport
	}
	if n.Terminal(token.KwAsync) != nil {
		m.Flags |= FlagAsync
	}
	if m.Description != nil && m.Description.Deprecated {
		m.Flags |= FlagDeprecated
	}
	for _, a := range n.ChildrenOf(cst.KindAnnotation) {
		m.Annotations = append(m.Annotations, strings.TrimPrefix(a.Children()[0].Token().Text, "&"))
	}
	if list := n.FirstChild(cst.KindParamList); list != nil {
		for _, p := range list.ChildrenOf(cst.KindParam) {
			name := p.Terminal(token.Ident)
			if name == nil {
				continue
			}
			v := &Variable{Name: name.Token().Text, Kind: VarParam, Span: name.Span(), Node: p, Method: m, Region: m.Region}
			if p.Terminal(token.KwVal) != nil {
				v.Flags |= FlagByValue
			}
			if p.FirstChild(cst.KindDefaultValue) != nil {
				v.Flags |= FlagHasDefault
			}
			m.Params = append(m.Params, v)
		}
	}
	b.locals(m)

	if r := b.top(); r != nil {
		r.Methods = append(r.Methods, m)
	} else {
		b.mod.Methods = append(b.mod.Methods, m)
	}
	b.mod.all = append(b.mod.all, m)
	if m.Name != "" {
		key := token.Fold(m.Name)
		if _, dup := b.mod.byName[key]; !dup {
			b.mod.byName[key] = m
		}
	}
}

// locals собирает Перем внутри метода и неявные переменные из присваиваний.
func (b *builder) locals(m *Method) {
	body := m.Body()
	if body == nil {
		return
	}
	known := func(name string) bool {
		if m.FindVariable(name) != nil {
			return true
		}
		for _, v := range b.moduleVars() {
			if token.EqualFold(v.Name, name) {
				return true
			}
		}
		return false
	}
	cst.Inspect(body, func(n *cst.Node) bool {
		switch n.Kind() {
		case cst.KindVarStatement:
			for _, item := range n.ChildrenOf(cst.KindVarItem) {
				if name := item.Terminal(token.Ident); name != nil {
					m.Variables = append(m.Variables, &Variable{
						Name: name.Token().Text, Kind: VarLocal, Span: name.Span(), Node: item, Method: m, Region: m.Region,
					})
				}
			}
			return false
		case cst.KindAssignment, cst.KindFor, cst.KindForEach:
			target := n.FirstChild(cst.KindComplexIdentifier)
			if n.Kind() != cst.KindAssignment {
				target = n.Terminal(token.Ident)
			}
			if name := simpleName(target); name != nil && !known(name.Token().Text) {
				m.Variables = append(m.Variables, &Variable{
					Name: name.Token().Text, Kind: VarImplicit, Span: name.Span(), Node: n, Method: m, Region: m.Region,
				})
			}
		case cst.KindExpression:
			return false
		}
		return true
	})
}

// simpleName возвращает терминал имени, если цель присваивания является голым идентификатором.
func simpleName(n *cst.Node) *cst.Node {
	if n == nil {
		return nil
	}
	if n.IsTerminal(token.Ident) {
		return n
	}
	if n.Kind() == cst.KindComplexIdentifier && n.ChildCount() == 1 && n.Child(0).IsTerminal(token.Ident) {
		return n.Child(0)
	}
	return nil
}

func (b *builder) moduleVars() []*Variable {
	out := append([]*Variable(nil), b.mod.Variables...)
	for _, r := range b.mod.allRegs {
		out = append(out, r.Variables...)
	}
	return out
}

// describe читает комментарии непосредственно над объявлением.
func (b *builder) describe(n *cst.Node) *Description {
	first, ok := n.FirstToken()
	if !ok {
		return nil
	}
	comments := b.tree.CommentsBefore(first.Index)
	if len(comments) == 0 {
		return nil
	}
	d := &Description{Span: comments[0].Span.Cover(comments[len(comments)-1].Span)}
	for _, c := range comments {
		line := strings.TrimPrefix(c.Text, "//")
		line = strings.TrimPrefix(line, " ")
		d.Lines = append(d.Lines, strings.TrimRight(line, " \t"))
	}
	for _, l := range d.Lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		folded := token.Fold(strings.TrimSpace(l))
		d.Deprecated = strings.HasPrefix(folded, token.Fold("Устарела")) || strings.HasPrefix(folded, "deprecated")
		break
	}
	return d
}
