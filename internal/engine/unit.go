package engine

import (
	"strconv"

	"bslint/internal/diag"
	"bslint/internal/module"
	"bslint/internal/observ"
	"bslint/internal/parser"
	"bslint/internal/refs"
	"bslint/internal/rule"
	"bslint/internal/source"
	"bslint/internal/symbols"
	"bslint/internal/token"
)

// UnitOptions describe how a file becomes a rule.Unit.
type UnitOptions struct {
	// Module overrides the context; a zero Kind is derived from the path.
	Module    module.Context
	Language  string // "ru" (default) or "en"
	MaxErrors uint
	// SkipSymbols leaves Symbols and Refs nil.
	SkipSymbols bool
	Timer       *observ.Timer
}

// Prepare parses file and builds the symbol tree and the reference index.
// Syntax problems go to the returned bag; the tree always exists.
func Prepare(file *source.File, opts UnitOptions) (*rule.Unit, *diag.Bag) {
	timer := opts.Timer
	if timer == nil {
		timer = observ.NewTimer()
	}
	bag := diag.NewBag(0)

	stop := timer.Measure("parse")
	res := parser.ParseFile(file, parser.Options{MaxErrors: opts.MaxErrors, Reporter: diag.BagReporter{Bag: bag}})
	stop(strconv.Itoa(len(res.Tree.DefaultTokens())) + " tokens")

	mctx := opts.Module
	if mctx.Path == "" {
		mctx.Path = file.Path
	}
	if mctx.Kind == module.KindUnknown {
		mctx.Kind = module.KindFromPath(file.Path)
	}
	lang := opts.Language
	if lang == "" {
		lang = "ru"
	}

	u := &rule.Unit{
		File:     file,
		Tree:     res.Tree,
		Module:   mctx,
		Script:   detectScript(res.Tree.DefaultTokens()),
		Language: lang,
	}
	if !opts.SkipSymbols {
		stop = timer.Measure("symbols")
		u.Symbols = symbols.Build(res.Tree)
		u.Refs = refs.Build(res.Tree, u.Symbols)
		stop(strconv.Itoa(len(u.Symbols.AllMethods())) + " methods")
	}
	return u, bag
}

// detectScript picks the keyword language most of the module is written in.
func detectScript(toks []token.Token) token.Script {
	ru, en := 0, 0
	for _, t := range toks {
		if !t.Kind.IsKeyword() {
			continue
		}
		if token.DetectScript(t.Text) == token.ScriptEnglish {
			en++
		} else {
			ru++
		}
	}
	if en > ru {
		return token.ScriptEnglish
	}
	return token.ScriptRussian
}
