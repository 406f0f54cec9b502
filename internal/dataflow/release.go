package dataflow

import (
	"bslint/internal/cst"
	"bslint/internal/exprtree"
)

// ScopeCache memoises one value per code block for as long as a walk is inside
// that block.
type ScopeCache[T any] struct {
	m     map[*cst.Node]T
	calls int
}

func NewScopeCache[T any]() *ScopeCache[T] {
	return &ScopeCache[T]{m: make(map[*cst.Node]T)}
}

// Get returns the cached value for block, computing it on first use.
func (c *ScopeCache[T]) Get(block *cst.Node, compute func() T) T {
	if v, ok := c.m[block]; ok {
		return v
	}
	c.calls++
	v := compute()
	c.m[block] = v
	return v
}

// Leave drops the entry of block.
func (c *ScopeCache[T]) Leave(block *cst.Node) {
	delete(c.m, block)
}

func (c *ScopeCache[T]) Len() int { return len(c.m) }

// Computed is the number of times Get had to compute a value.
func (c *ScopeCache[T]) Computed() int { return c.calls }

// Release is one release call found in a block.
type Release struct {
	Arg  exprtree.Node
	Stmt *cst.Node // оператор блока, внутри которого вызов
}

// ReleaseScan answers whether an acquired handle is released later in the
// same block.
type ReleaseScan struct {
	// Releases extracts the released handles from one statement, nested
	// blocks included.
	Releases func(st *cst.Node) []exprtree.Node
	cache    *ScopeCache[[]Release]
}

func (r *ReleaseScan) releases(block *cst.Node) []Release {
	if r.cache == nil {
		r.cache = NewScopeCache[[]Release]()
	}
	return r.cache.Get(block, func() []Release {
		var out []Release
		for _, st := range block.Statements() {
			if r.Releases == nil {
				break
			}
			for _, arg := range r.Releases(st) {
				out = append(out, Release{Arg: arg, Stmt: st})
			}
		}
		return out
	})
}

// Released reports whether a statement after trigger in its enclosing block
// releases handle.
func (r *ReleaseScan) Released(trigger *cst.Node, handle exprtree.Node) bool {
	block := trigger.Ancestor(cst.KindCodeBlock)
	if block == nil || handle == nil {
		return false
	}
	for _, rel := range r.releases(block) {
		if rel.Stmt.Start() > trigger.Start() && exprtree.Equal(rel.Arg, handle) {
			return true
		}
	}
	return false
}

// Leave forgets the cached release list of block.
func (r *ReleaseScan) Leave(block *cst.Node) {
	if r.cache != nil {
		r.cache.Leave(block)
	}
}

// Cache exposes the memo for inspection.
func (r *ReleaseScan) Cache() *ScopeCache[[]Release] {
	if r.cache == nil {
		r.cache = NewScopeCache[[]Release]()
	}
	return r.cache
}
