package parser

import (
	"bslint/internal/cst"
	"bslint/internal/diag"
	"bslint/internal/token"
)

// parseCodeBlock: операторы до одного из stops, до начала метода или EOF.
// Чужой терминатор, который не ждёт ни один объемлющий блок, съедается в узел ошибки.
func (p *Parser) parseCodeBlock(stops ...token.Kind) *cst.Node {
	at := p.peek()
	p.stops = append(p.stops, stops)
	defer func() { p.stops = p.stops[:len(p.stops)-1] }()

	var kids []*cst.Node
	for {
		k := p.peek().Kind
		if k == token.EOF || p.atMethodStart() {
			break
		}
		if isBlockTerminator(k) {
			if p.enclosingAccepts(k) {
				break
			}
			kids = append(kids, p.errorConsume(diag.SynUnexpectedToken, "unexpected "+k.String()))
			continue
		}
		before := p.pos
		switch {
		case k == token.Preproc:
			kids = append(kids, p.parsePreprocessor())
		case k == token.Tilde && p.peekN(1).Kind == token.Ident && p.peekN(2).Kind == token.Colon:
			lat := p.peek()
			kids = append(kids, cst.NewNode(cst.KindLabel, lat, p.term(), p.term(), p.term()))
		case k == token.Semicolon:
			kids = append(kids, cst.NewNode(cst.KindEmptyStatement, p.peek(), p.term()))
		default:
			kids = append(kids, p.parseStatement())
		}
		if p.pos == before {
			kids = append(kids, p.errorConsume(diag.SynUnexpectedToken, "unexpected token"))
		}
	}
	if len(kids) == 0 {
		at = p.peek()
	}
	return cst.NewNode(cst.KindCodeBlock, at, kids...)
}

func (p *Parser) parseStatement() *cst.Node {
	at := p.peek()
	switch at.Kind {
	case token.KwVar:
		kids := append([]*cst.Node{p.term()}, p.parseVarItems()...)
		return p.finish(cst.KindVarStatement, at, kids)
	case token.KwIf:
		return p.parseIf()
	case token.KwWhile:
		kids := []*cst.Node{p.term(), p.parseExpression()}
		kids = append(kids, p.expect(token.KwDo, diag.SynUnexpectedToken, "expected Do"))
		kids = append(kids, p.parseCodeBlock(token.KwEndDo))
		kids = append(kids, p.expectClose(token.KwEndDo, at))
		return p.finish(cst.KindWhile, at, kids)
	case token.KwFor:
		return p.parseFor()
	case token.KwTry:
		kids := []*cst.Node{p.term(), p.parseCodeBlock(token.KwExcept, token.KwEndTry)}
		kids = append(kids, p.expect(token.KwExcept, diag.SynUnexpectedToken, "expected Except"))
		kids = append(kids, p.parseCodeBlock(token.KwEndTry))
		kids = append(kids, p.expectClose(token.KwEndTry, at))
		return p.finish(cst.KindTry, at, kids)
	case token.KwReturn:
		kids := []*cst.Node{p.term()}
		if !p.atStatementEnd() {
			kids = append(kids, p.parseExpression())
		}
		return p.finish(cst.KindReturn, at, kids)
	case token.KwBreak:
		return p.finish(cst.KindBreak, at, []*cst.Node{p.term()})
	case token.KwContinue:
		return p.finish(cst.KindContinue, at, []*cst.Node{p.term()})
	case token.KwRaise:
		kids := []*cst.Node{p.term()}
		switch {
		case p.at(token.LParen):
			kids = append(kids, p.parseArgList())
		case !p.atStatementEnd():
			kids = append(kids, p.parseExpression())
		}
		return p.finish(cst.KindRaise, at, kids)
	case token.KwExecute:
		kids := []*cst.Node{p.term()}
		if p.at(token.LParen) {
			kids = append(kids, p.parseArgList())
		} else {
			kids = append(kids, p.parseExpression())
		}
		return p.finish(cst.KindExecute, at, kids)
	case token.KwGoto:
		kids := []*cst.Node{p.term()}
		kids = append(kids, p.expect(token.Tilde, diag.SynUnexpectedToken, "expected '~' before label"))
		kids = append(kids, p.expect(token.Ident, diag.SynExpectIdentifier, "expected label name"))
		return p.finish(cst.KindGoto, at, kids)
	case token.KwAddHandler, token.KwRemoveHandler:
		kind := cst.KindAddHandler
		if at.Kind == token.KwRemoveHandler {
			kind = cst.KindRemoveHandler
		}
		kids := []*cst.Node{p.term(), p.parseExpression()}
		kids = append(kids, p.expect(token.Comma, diag.SynUnexpectedToken, "expected ','"))
		kids = append(kids, p.parseExpression())
		return p.finish(kind, at, kids)
	case token.Ident:
		target := p.parseComplexIdentifier()
		if p.at(token.Assign) {
			kids := []*cst.Node{target, p.term(), p.parseExpression()}
			return p.finish(cst.KindAssignment, at, kids)
		}
		kids := []*cst.Node{target}
		if !endsWithCall(target) {
			kids = append(kids, p.missing(diag.SynUnexpectedToken, "expected assignment or method call"))
		}
		return p.finish(cst.KindCallStatement, at, kids)
	case token.KwAwait:
		kids := []*cst.Node{p.term()}
		if p.at(token.Ident) {
			kids = append(kids, p.parseComplexIdentifier())
		} else {
			kids = append(kids, p.missing(diag.SynExpectExpression, "expected call after Await"))
		}
		return p.finish(cst.KindCallStatement, at, kids)
	}
	return p.resyncStatement(diag.SynUnexpectedToken, "unexpected "+at.Kind.String())
}

// finish: добавляет ';' или фиксирует его отсутствие. Перед терминатором
// блока ';' необязательна.
func (p *Parser) finish(kind cst.Kind, at token.Token, kids []*cst.Node) *cst.Node {
	switch {
	case p.at(token.Semicolon):
		kids = append(kids, p.term())
	case p.atStatementEnd():
	default:
		kids = append(kids, p.missing(diag.SynExpectSemicolon, "expected ';'"))
	}
	return cst.NewNode(kind, at, kids...)
}

func endsWithCall(n *cst.Node) bool {
	last := n.Child(n.ChildCount() - 1)
	if last == nil {
		return false
	}
	return last.Kind() == cst.KindAccessCall || last.Kind() == cst.KindGlobalCall
}

func (p *Parser) parseIf() *cst.Node {
	at := p.peek()
	kids := []*cst.Node{p.term(), p.parseExpression()}
	kids = append(kids, p.expect(token.KwThen, diag.SynUnexpectedToken, "expected Then"))
	kids = append(kids, p.parseCodeBlock(token.KwElsIf, token.KwElse, token.KwEndIf))
	for p.at(token.KwElsIf) {
		bat := p.peek()
		branch := []*cst.Node{p.term(), p.parseExpression()}
		branch = append(branch, p.expect(token.KwThen, diag.SynUnexpectedToken, "expected Then"))
		branch = append(branch, p.parseCodeBlock(token.KwElsIf, token.KwElse, token.KwEndIf))
		kids = append(kids, cst.NewNode(cst.KindElsIfBranch, bat, branch...))
	}
	if p.at(token.KwElse) {
		bat := p.peek()
		branch := []*cst.Node{p.term(), p.parseCodeBlock(token.KwEndIf)}
		kids = append(kids, cst.NewNode(cst.KindElseBranch, bat, branch...))
	}
	kids = append(kids, p.expectClose(token.KwEndIf, at))
	return p.finish(cst.KindIf, at, kids)
}

func (p *Parser) parseFor() *cst.Node {
	at := p.peek()
	kids := []*cst.Node{p.term()}
	kind := cst.KindFor
	if p.at(token.KwEach) {
		kind = cst.KindForEach
		kids = append(kids, p.term())
		kids = append(kids, p.expect(token.Ident, diag.SynExpectIdentifier, "expected loop variable"))
		kids = append(kids, p.expect(token.KwIn, diag.SynUnexpectedToken, "expected In"))
		kids = append(kids, p.parseExpression())
	} else {
		kids = append(kids, p.expect(token.Ident, diag.SynExpectIdentifier, "expected loop variable"))
		kids = append(kids, p.expect(token.Assign, diag.SynUnexpectedToken, "expected '='"))
		kids = append(kids, p.parseExpression())
		kids = append(kids, p.expect(token.KwTo, diag.SynUnexpectedToken, "expected To"))
		kids = append(kids, p.parseExpression())
	}
	kids = append(kids, p.expect(token.KwDo, diag.SynUnexpectedToken, "expected Do"))
	kids = append(kids, p.parseCodeBlock(token.KwEndDo))
	kids = append(kids, p.expectClose(token.KwEndDo, at))
	return p.finish(kind, at, kids)
}
