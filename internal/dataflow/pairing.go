// Package dataflow holds the sequential-statement patterns rules share:
// start/end pairing inside one block and the forward scan for a release of an
// acquired handle.
package dataflow

import (
	"bslint/internal/cst"
)

// Pairing tracks at most one pending start while walking the statements of a
// block in source order.
//
// Reset statements clear the pending start and their nested blocks are walked
// guarded: starts inside are protected and neither tracked nor flagged. Nested
// blocks of other compound statements are independent sequences. A pending
// start is flagged when a statement other than an End follows it, or when the
// block ends.
type Pairing struct {
	Start func(st *cst.Node) bool
	End   func(st *cst.Node) bool
	Reset func(st *cst.Node) bool
	Flag  func(start *cst.Node)
}

// Walk processes block and every block nested in it.
func (p *Pairing) Walk(block *cst.Node) {
	if block == nil {
		return
	}
	p.walk(block, false)
}

func (p *Pairing) is(f func(*cst.Node) bool, st *cst.Node) bool {
	return f != nil && f(st)
}

func (p *Pairing) walk(block *cst.Node, guarded bool) {
	var pending *cst.Node
	for _, st := range block.Statements() {
		switch {
		case p.is(p.Reset, st):
			pending = nil
			for _, nested := range NestedBlocks(st) {
				p.walk(nested, true)
			}
			continue
		case guarded:
		case pending == nil:
			if p.is(p.Start, st) {
				pending = st
			}
		case p.is(p.End, st):
			pending = nil
		default:
			p.flag(pending)
			pending = nil
			if p.is(p.Start, st) {
				pending = st
			}
		}
		for _, nested := range NestedBlocks(st) {
			p.walk(nested, guarded)
		}
	}
	if pending != nil {
		p.flag(pending)
	}
}

func (p *Pairing) flag(st *cst.Node) {
	if p.Flag != nil {
		p.Flag(st)
	}
}

// NestedBlocks returns the code blocks directly owned by a statement: If and
// its ElsIf/Else branches, loop bodies, Try and Except bodies.
func NestedBlocks(st *cst.Node) []*cst.Node {
	var out []*cst.Node
	for _, c := range st.Children() {
		cst.Inspect(c, func(n *cst.Node) bool {
			switch n.Kind() {
			case cst.KindCodeBlock:
				out = append(out, n)
				return false
			case cst.KindExpression:
				return false
			}
			return true
		})
	}
	return out
}
