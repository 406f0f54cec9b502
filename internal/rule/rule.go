package rule

import (
	"context"

	"bslint/internal/cst"
	"bslint/internal/diag"
	"bslint/internal/source"
	"bslint/internal/token"
)

// Rule is a single diagnostic. Instances live for one run over one unit.
type Rule interface {
	Check(ctx *Context)
}

// Definition pairs a descriptor with a constructor. New receives compiled
// parameters and must return a fresh instance.
type Definition struct {
	Descriptor Descriptor
	New        func(Params) Rule
}

// EditContext is what a rule may look at while building fixes.
type EditContext struct {
	File   *source.File
	Tree   *cst.Tree
	Script token.Script
}

// CodeAction is a fix offered for one of the rule's diagnostics.
type CodeAction struct {
	Diagnostic diag.Diagnostic
	Fix        diag.Fix
}

// QuickFixer is implemented by rules that build fixes after detection, usually
// from Diagnostic.Data stashed by Check.
type QuickFixer interface {
	QuickFixes(diags []diag.Diagnostic, ec EditContext) []CodeAction
}

// Context is the per-rule, per-run environment.
type Context struct {
	ctx        context.Context
	Unit       *Unit
	Descriptor Descriptor
	Params     Params
	Storage    *Storage
}

func NewContext(parent context.Context, u *Unit, desc Descriptor, params Params, storage *Storage) *Context {
	if parent == nil {
		parent = context.Background()
	}
	return &Context{ctx: parent, Unit: u, Descriptor: desc, Params: params, Storage: storage}
}

// Context returns the run's context.Context.
func (c *Context) Context() context.Context { return c.ctx }

// Add is a shortcut for c.Storage.Add.
func (c *Context) Add(loc Location, opts ...AddOption) diag.Diagnostic {
	return c.Storage.Add(loc, opts...)
}

func (c *Context) Root() *cst.Node { return c.Unit.Root() }

func (c *Context) Tree() *cst.Tree {
	if c.Unit == nil {
		return nil
	}
	return c.Unit.Tree
}

// EditContext describes the unit for QuickFixes.
func (c *Context) EditContext() EditContext {
	if c.Unit == nil {
		return EditContext{}
	}
	return EditContext{File: c.Unit.File, Tree: c.Unit.Tree, Script: c.Unit.Script}
}
