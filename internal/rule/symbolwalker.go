package rule

import (
	"bslint/internal/symbols"
)

// SymbolWalker walks the symbol tree. A callback returning false stops descent
// below that symbol; nil callbacks continue.
//
// Order: module → top-level variables, methods, regions; region → nested
// regions, methods, variables; method → parameters and locals.
type SymbolWalker struct {
	Module   func(ctx *Context, m *symbols.Module) bool
	Region   func(ctx *Context, r *symbols.Region) bool
	Method   func(ctx *Context, m *symbols.Method) bool
	Variable func(ctx *Context, v *symbols.Variable) bool
}

func (w *SymbolWalker) Check(ctx *Context) {
	if ctx.Unit == nil || ctx.Unit.Symbols == nil {
		return
	}
	w.module(ctx, ctx.Unit.Symbols)
}

func (w *SymbolWalker) module(ctx *Context, m *symbols.Module) {
	if w.Module != nil && !w.Module(ctx, m) {
		return
	}
	for _, v := range m.Variables {
		w.variable(ctx, v)
	}
	for _, mt := range m.Methods {
		w.method(ctx, mt)
	}
	for _, r := range m.Regions {
		w.region(ctx, r)
	}
}

func (w *SymbolWalker) region(ctx *Context, r *symbols.Region) {
	if w.Region != nil && !w.Region(ctx, r) {
		return
	}
	for _, nested := range r.Regions {
		w.region(ctx, nested)
	}
	for _, mt := range r.Methods {
		w.method(ctx, mt)
	}
	for _, v := range r.Variables {
		w.variable(ctx, v)
	}
}

func (w *SymbolWalker) method(ctx *Context, m *symbols.Method) {
	if w.Method != nil && !w.Method(ctx, m) {
		return
	}
	for _, v := range m.Params {
		w.variable(ctx, v)
	}
	for _, v := range m.Variables {
		w.variable(ctx, v)
	}
}

func (w *SymbolWalker) variable(ctx *Context, v *symbols.Variable) {
	if w.Variable != nil {
		w.Variable(ctx, v)
	}
}
