package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"bslint/internal/cst"
	"bslint/internal/source"
)

// CheckSpanInvariants runs a minimal set of span invariants on a parsed tree:
// 1) the root span lies within the file content
// 2) every node span is contained in its parent's span and points to the file
// 3) sibling spans do not go backwards
func CheckSpanInvariants(tree *cst.Tree, sf *source.File) error {
	if tree == nil || tree.Root == nil || sf == nil {
		return fmt.Errorf("nil tree or file")
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	root := tree.Root.Span()
	if root.End > lenContent {
		return fmt.Errorf("root span end beyond content: %d > %d", root.End, lenContent)
	}
	return checkNode(tree.Root, sf.ID)
}

func checkNode(n *cst.Node, file source.FileID) error {
	if n.Empty() {
		return nil
	}
	sp := n.Span()
	if sp.End < sp.Start {
		return fmt.Errorf("%s: inverted span %v", n.Kind(), sp)
	}
	if sp.File != file {
		return fmt.Errorf("%s: span file mismatch: got=%d want=%d", n.Kind(), sp.File, file)
	}
	var prevEnd uint32
	for i, c := range n.Children() {
		csp := c.Span()
		// пустые узлы стоят на позиции следующего токена
		if c.Empty() {
			continue
		}
		if csp.Start < sp.Start || csp.End > sp.End {
			return fmt.Errorf("%s child %d (%s) span %v is outside %v", n.Kind(), i, c.Kind(), csp, sp)
		}
		if csp.Start < prevEnd {
			return fmt.Errorf("%s child %d (%s) starts before previous sibling ends", n.Kind(), i, c.Kind())
		}
		if csp.End > prevEnd {
			prevEnd = csp.End
		}
		if err := checkNode(c, file); err != nil {
			return err
		}
	}
	return nil
}
