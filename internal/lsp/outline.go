package lsp

import (
	"encoding/json"
	"sort"
	"strings"

	"bslint/internal/cst"
	"bslint/internal/parser"
	"bslint/internal/source"
	"bslint/internal/symbols"
)

// outline is the parsed current text of a document.
type outline struct {
	file   *source.File
	module *symbols.Module
}

// outlineFor parses the current text of uri. Outline requests work on the
// live text and never wait for the debounced analysis.
func (s *Server) outlineFor(uri string) *outline {
	s.mu.Lock()
	doc := s.docs[uri]
	if doc == nil {
		s.mu.Unlock()
		return nil
	}
	text := doc.text
	s.mu.Unlock()

	fs := source.NewFileSet()
	file := fs.Get(fs.AddNormalized(uri, []byte(text)))
	file.Flags |= source.FileVirtual
	res := parser.ParseFile(file, parser.Options{})
	return &outline{file: file, module: symbols.Build(res.Tree)}
}

func (s *Server) handleDocumentSymbol(msg *rpcMessage) error {
	var params documentSymbolParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, "invalid params")
	}
	o := s.outlineFor(canonicalURI(params.TextDocument.URI))
	if o == nil {
		return s.sendResponse(msg.ID, []documentSymbol{})
	}
	return s.sendResponse(msg.ID, buildDocumentSymbols(o))
}

func buildDocumentSymbols(o *outline) []documentSymbol {
	m := o.module
	out := make([]documentSymbol, 0, len(m.Variables)+len(m.Methods)+len(m.Regions))
	for _, v := range m.Variables {
		out = append(out, variableSymbol(o.file, v))
	}
	for _, r := range m.Regions {
		out = append(out, regionSymbol(o.file, r))
	}
	for _, meth := range m.Methods {
		out = append(out, methodSymbol(o.file, meth))
	}
	sortSymbols(out)
	return out
}

func regionSymbol(file *source.File, r *symbols.Region) documentSymbol {
	sym := documentSymbol{
		Name:           r.Name,
		Kind:           symbolNamespace,
		Range:          rangeForSpan(file, r.Span),
		SelectionRange: rangeForSpan(file, r.Start.Span()),
	}
	if sym.Name == "" {
		sym.Name = "#Область"
	}
	for _, v := range r.Variables {
		sym.Children = append(sym.Children, variableSymbol(file, v))
	}
	for _, child := range r.Regions {
		sym.Children = append(sym.Children, regionSymbol(file, child))
	}
	for _, meth := range r.Methods {
		sym.Children = append(sym.Children, methodSymbol(file, meth))
	}
	sortSymbols(sym.Children)
	return sym
}

func methodSymbol(file *source.File, m *symbols.Method) documentSymbol {
	kind := symbolMethod
	if m.IsFunction() {
		kind = symbolFunction
	}
	params := make([]string, 0, len(m.Params))
	for _, p := range m.Params {
		params = append(params, p.Name)
	}
	detail := "(" + strings.Join(params, ", ") + ")"
	if m.IsExport() {
		detail += " Экспорт"
	}
	sym := documentSymbol{
		Name:           m.Name,
		Detail:         detail,
		Kind:           kind,
		Range:          rangeForSpan(file, m.Node.Span()),
		SelectionRange: rangeForSpan(file, m.NameSpan),
	}
	if m.Description != nil && m.Description.Deprecated {
		sym.Tags = []int{1} // SymbolTag.Deprecated
	}
	return sym
}

func variableSymbol(file *source.File, v *symbols.Variable) documentSymbol {
	sym := documentSymbol{
		Name:           v.Name,
		Kind:           symbolVariable,
		Range:          rangeForSpan(file, v.Span),
		SelectionRange: rangeForSpan(file, v.Span),
	}
	if v.IsExport() {
		sym.Detail = "Экспорт"
	}
	return sym
}

func sortSymbols(list []documentSymbol) {
	sort.SliceStable(list, func(i, j int) bool {
		return before(list[i].Range.Start, list[j].Range.Start)
	})
}

func (s *Server) handleFoldingRange(msg *rpcMessage) error {
	var params foldingRangeParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, "invalid params")
	}
	o := s.outlineFor(canonicalURI(params.TextDocument.URI))
	if o == nil {
		return s.sendResponse(msg.ID, []foldingRange{})
	}
	return s.sendResponse(msg.ID, buildFoldingRanges(o))
}

// foldable are the statements whose body can be collapsed.
var foldable = map[cst.Kind]bool{
	cst.KindProcedure: true,
	cst.KindFunction:  true,
	cst.KindIf:        true,
	cst.KindWhile:     true,
	cst.KindFor:       true,
	cst.KindForEach:   true,
	cst.KindTry:       true,
}

func buildFoldingRanges(o *outline) []foldingRange {
	ranges := make([]foldingRange, 0)
	add := func(span source.Span, kind string) {
		start := positionForOffset(o.file, span.Start).Line
		end := positionForOffset(o.file, lastOffset(span)).Line
		if start < end {
			ranges = append(ranges, foldingRange{StartLine: start, EndLine: end, Kind: kind})
		}
	}
	for _, r := range o.module.AllRegions() {
		if r.End != nil {
			add(r.Span, "region")
		}
	}
	cst.Inspect(o.module.Tree.Root, func(n *cst.Node) bool {
		if foldable[n.Kind()] {
			add(n.Span(), "")
		}
		return true
	})
	for _, block := range commentBlocks(o.module.Tree) {
		add(block, "comment")
	}
	sort.Slice(ranges, func(i, j int) bool {
		if ranges[i].StartLine == ranges[j].StartLine {
			return ranges[i].EndLine < ranges[j].EndLine
		}
		return ranges[i].StartLine < ranges[j].StartLine
	})
	return ranges
}

// commentBlocks joins comments on consecutive lines into one span.
func commentBlocks(tree *cst.Tree) []source.Span {
	var out []source.Span
	var cur source.Span
	open := false
	var lastLine uint32
	for _, c := range tree.Comments() {
		line, _ := tree.File.Position(c.Span.Start)
		if open && line == lastLine+1 {
			cur.End = c.Span.End
		} else {
			if open {
				out = append(out, cur)
			}
			cur, open = c.Span, true
		}
		lastLine = line
	}
	if open {
		out = append(out, cur)
	}
	return out
}

func lastOffset(span source.Span) uint32 {
	if span.End > span.Start {
		return span.End - 1
	}
	return span.End
}
