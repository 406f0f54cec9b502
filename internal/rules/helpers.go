package rules

import (
	"bslint/internal/cst"
	"bslint/internal/diag"
	"bslint/internal/exprtree"
	"bslint/internal/fix"
	"bslint/internal/rule"
	"bslint/internal/token"
)

// oneOf сравнивает имя со списком без учёта регистра.
func oneOf(name string, names ...string) bool {
	for _, n := range names {
		if token.EqualFold(name, n) {
			return true
		}
	}
	return false
}

// globalCallName returns the name of a GlobalCall node.
func globalCallName(n *cst.Node) string {
	if n == nil || n.Kind() != cst.KindGlobalCall {
		return ""
	}
	if id := n.Terminal(token.Ident); id != nil {
		return id.Token().Text
	}
	return ""
}

// callOf returns the GlobalCall of a statement of the form `Имя(...);`.
func callOf(st *cst.Node) *cst.Node {
	if st == nil || st.Kind() != cst.KindCallStatement {
		return nil
	}
	id := st.FirstChild(cst.KindComplexIdentifier)
	if id == nil || id.ChildCount() != 1 {
		return nil
	}
	if c := id.Child(0); c.Kind() == cst.KindGlobalCall {
		return c
	}
	return nil
}

// calledName returns the name of a GlobalCall or the member name of an AccessCall.
func calledName(n *cst.Node) string {
	switch n.Kind() {
	case cst.KindGlobalCall:
		return globalCallName(n)
	case cst.KindAccessCall:
		if n.ChildCount() > 1 && n.Child(1).Kind() == cst.KindTerminal {
			return n.Child(1).Token().Text
		}
	}
	return ""
}

// firstArg returns the expression of the first argument, nil when skipped.
func firstArg(call *cst.Node) *cst.Node {
	list := call.FirstChild(cst.KindArgList)
	if list == nil {
		return nil
	}
	args := list.ChildrenOf(cst.KindArg)
	if len(args) == 0 {
		return nil
	}
	return args[0].FirstChild(cst.KindExpression)
}

func containsToken(n *cst.Node, kinds ...token.Kind) bool {
	found := false
	cst.Inspect(n, func(x *cst.Node) bool {
		if found {
			return false
		}
		if x.IsTerminal(kinds...) {
			found = true
		}
		return true
	})
	return found
}

func containsKind(n *cst.Node, k cst.Kind) bool {
	found := false
	cst.Inspect(n, func(x *cst.Node) bool {
		if found {
			return false
		}
		if x.Kind() == k {
			found = true
		}
		return true
	})
	return found
}

// methodBlocks returns the code blocks analysed as independent sequences: the
// body of every method and the module body.
func methodBlocks(root *cst.Node) []*cst.Node {
	if root == nil {
		return nil
	}
	var out []*cst.Node
	for _, c := range root.Children() {
		switch {
		case c.Kind().IsMethod():
			if b := c.FirstChild(cst.KindCodeBlock); b != nil {
				out = append(out, b)
			}
		case c.Kind() == cst.KindCodeBlock:
			out = append(out, c)
		}
	}
	return out
}

// compound reports whether printing n in place of an operand might change how
// the surrounding expression parses.
func compound(n exprtree.Node) bool {
	switch x := n.(type) {
	case *exprtree.BinaryOp:
		return true
	case *exprtree.UnaryOp:
		return x.Op == exprtree.OpNot
	}
	return false
}

// replacement prints repl for the place of target inside root, adding parens
// when target is not the whole expression.
func replacement(root, target, repl exprtree.Node, script token.Script) string {
	s := exprtree.Print(repl, script)
	if root != target && compound(repl) {
		return "(" + s + ")"
	}
	return s
}

// textFixes turns findings whose Data is the replacement text into fixes
// replacing the reported span.
func textFixes(title string, diags []diag.Diagnostic, ec rule.EditContext) []rule.CodeAction {
	out := make([]rule.CodeAction, 0, len(diags))
	for _, d := range diags {
		text, ok := d.Data.(string)
		if !ok {
			continue
		}
		old := ""
		if ec.File != nil {
			old = ec.File.Text(d.Primary)
		}
		out = append(out, rule.CodeAction{
			Diagnostic: d,
			Fix:        fix.ReplaceSpan(title, d.Primary, text, old, fix.Preferred()),
		})
	}
	return out
}
