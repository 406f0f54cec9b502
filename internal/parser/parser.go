package parser

import (
	"slices"

	"bslint/internal/cst"
	"bslint/internal/diag"
	"bslint/internal/lexer"
	"bslint/internal/source"
	"bslint/internal/token"
)

type Options struct {
	MaxErrors     uint
	CurrentErrors uint
	Reporter      diag.Reporter
}

// Enough - проверить, достигли ли мы максимального количества ошибок
func (o *Options) Enough() bool {
	if o.MaxErrors == 0 {
		return false
	}
	return o.CurrentErrors >= o.MaxErrors
}

type Result struct {
	Tree *cst.Tree
	Bag  *diag.Bag
}

// Parser: состояние парсера на один файл
type Parser struct {
	file     *source.File
	toks     []token.Token  // только значимые токены, EOF в конце
	pos      int
	opts     Options
	lastSpan source.Span     // span последнего съеденного токена для лучшей диагностики
	stops    [][]token.Kind // терминаторы, которые ждут объемлющие блоки
}

// ParseFile лексит и разбирает один файл. Ошибки лексера и парсера идут в
// opts.Reporter; в дереве они представлены узлами KindError.
func ParseFile(file *source.File, opts Options) Result {
	bag := bagOf(opts.Reporter)
	opts.Reporter = diag.Once(opts.Reporter)
	all := lexer.Tokenize(file, lexer.Options{Reporter: opts.Reporter})
	p := Parser{
		file: file,
		toks: token.DefaultChannel(all),
		opts: opts,
	}
	p.lastSpan = p.toks[0].Span.ZeroideToStart()

	root := p.parseFile()
	return Result{
		Tree: cst.NewTree(root, all, file),
		Bag:  bag,
	}
}

func bagOf(r diag.Reporter) *diag.Bag {
	switch br := r.(type) {
	case diag.BagReporter:
		return br.Bag
	case *diag.BagReporter:
		return br.Bag
	}
	return nil
}

func (p *Parser) peek() token.Token {
	return p.toks[p.pos]
}

func (p *Parser) peekN(n int) token.Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *Parser) at(k token.Kind) bool {
	return p.peek().Kind == k
}

func (p *Parser) atOr(kinds ...token.Kind) bool {
	return slices.Contains(kinds, p.peek().Kind)
}

// atLineStart: первый значимый токен на своей строке.
func (p *Parser) atLineStart() bool {
	if p.pos == 0 {
		return true
	}
	return p.toks[p.pos-1].Line != p.peek().Line
}

// parseFile: верхний уровень: препроцессор, переменные модуля, методы и
// код основной программы.
func (p *Parser) parseFile() *cst.Node {
	var kids []*cst.Node
	for !p.at(token.EOF) {
		switch {
		case p.at(token.Preproc):
			kids = append(kids, p.parsePreprocessor())
		case p.atMethodStart():
			kids = append(kids, p.parseMethodOrModuleVar())
		case p.at(token.KwVar):
			kids = append(kids, p.parseModuleVar(nil))
		default:
			before := p.pos
			block := p.parseCodeBlock()
			if block.ChildCount() > 0 {
				kids = append(kids, block)
			}
			if p.pos == before {
				kids = append(kids, p.errorConsume(diag.SynUnexpectedTopLevel, "unexpected token at module level"))
			}
		}
	}
	return cst.NewNode(cst.KindFile, p.peek(), kids...)
}

// atMethodStart: аннотация, Асинх или Процедура/Функция.
func (p *Parser) atMethodStart() bool {
	switch p.peek().Kind {
	case token.KwProcedure, token.KwFunction, token.Annotation:
		return true
	case token.KwAsync:
		k := p.peekN(1).Kind
		return k == token.KwProcedure || k == token.KwFunction
	}
	return false
}

func (p *Parser) parsePreprocessor() *cst.Node {
	tok := p.peek()
	return cst.NewNode(cst.KindPreprocessor, tok, p.term())
}
