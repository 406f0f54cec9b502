package parser

import (
	"bslint/internal/cst"
	"bslint/internal/diag"
	"bslint/internal/token"
)

// Операции плоского выражения: member (operation member)*.
// Приоритеты применяет построитель дерева выражений, парсер их не знает.
func isOperation(k token.Kind) bool {
	switch k {
	case token.Plus, token.Minus, token.Star, token.Slash, token.Percent,
		token.Assign, token.NotEq, token.Lt, token.LtEq, token.Gt, token.GtEq,
		token.KwAnd, token.KwOr:
		return true
	}
	return false
}

func isConstStart(k token.Kind) bool {
	switch k {
	case token.Number, token.String, token.DateLit,
		token.KwTrue, token.KwFalse, token.KwUndefined, token.KwNull:
		return true
	}
	return false
}

func (p *Parser) parseExpression() *cst.Node {
	at := p.peek()
	kids := []*cst.Node{p.parseMember()}
	for isOperation(p.peek().Kind) {
		kids = append(kids, p.term(), p.parseMember())
	}
	return cst.NewNode(cst.KindExpression, at, kids...)
}

// parseMember: унарные модификаторы и операнд.
func (p *Parser) parseMember() *cst.Node {
	at := p.peek()
	var kids []*cst.Node
	for p.atOr(token.Minus, token.Plus, token.KwNot, token.KwAwait) {
		kids = append(kids, p.term())
	}
	k := p.peek().Kind
	switch {
	case isConstStart(k):
		cat := p.peek()
		consts := []*cst.Node{p.term()}
		// "а" "б" подряд: одна строковая константа
		for k == token.String && p.at(token.String) {
			consts = append(consts, p.term())
		}
		kids = append(kids, cst.NewNode(cst.KindConstValue, cat, consts...))
	case k == token.LParen:
		pat := p.peek()
		paren := []*cst.Node{p.term(), p.parseExpression()}
		paren = append(paren, p.expect(token.RParen, diag.SynUnclosedParen, "expected ')'"))
		kids = append(kids, cst.NewNode(cst.KindParenExpr, pat, paren...))
	case k == token.Ident || k == token.KwNew || k == token.Question:
		kids = append(kids, p.parseComplexIdentifier())
	default:
		kids = append(kids, p.missing(diag.SynExpectExpression, "expected expression"))
	}
	return cst.NewNode(cst.KindMember, at, kids...)
}

// parseComplexIdentifier: база (Имя, Имя(...), Новый ..., ?(...)) и цепочка
// .Свойство, .Метод(...), [индекс].
func (p *Parser) parseComplexIdentifier() *cst.Node {
	at := p.peek()
	var base *cst.Node
	switch {
	case p.at(token.KwNew):
		base = p.parseNew()
	case p.at(token.Question):
		base = p.parseTernary()
	case p.at(token.Ident) && p.peekN(1).Kind == token.LParen:
		base = cst.NewNode(cst.KindGlobalCall, at, p.term(), p.parseArgList())
	default:
		base = p.expect(token.Ident, diag.SynExpectIdentifier, "expected identifier")
	}
	kids := []*cst.Node{base}
	for {
		mat := p.peek()
		switch {
		case p.at(token.Dot):
			dot := p.term()
			var name *cst.Node
			// после точки ключевые слова: обычные имена: Запрос.Выполнить()
			if p.at(token.Ident) || p.peek().Kind.IsKeyword() {
				name = p.term()
			} else {
				name = p.missing(diag.SynExpectIdentifier, "expected member name after '.'")
			}
			if p.at(token.LParen) {
				kids = append(kids, cst.NewNode(cst.KindAccessCall, mat, dot, name, p.parseArgList()))
			} else {
				kids = append(kids, cst.NewNode(cst.KindAccessProperty, mat, dot, name))
			}
		case p.at(token.LBracket):
			idx := []*cst.Node{p.term(), p.parseExpression()}
			idx = append(idx, p.expect(token.RBracket, diag.SynUnclosedBracket, "expected ']'"))
			kids = append(kids, cst.NewNode(cst.KindAccessIndex, mat, idx...))
		default:
			return cst.NewNode(cst.KindComplexIdentifier, at, kids...)
		}
	}
}

// parseNew: Новый Тип, Новый Тип(арг), Новый("Тип", арг).
func (p *Parser) parseNew() *cst.Node {
	at := p.peek()
	kids := []*cst.Node{p.term()}
	if p.at(token.Ident) {
		kids = append(kids, p.term())
	}
	if p.at(token.LParen) {
		kids = append(kids, p.parseArgList())
	}
	if len(kids) == 1 {
		kids = append(kids, p.missing(diag.SynExpectIdentifier, "expected type name after New"))
	}
	return cst.NewNode(cst.KindNewExpr, at, kids...)
}

// parseTernary: ?(Условие, ЕслиИстина, ЕслиЛожь)
func (p *Parser) parseTernary() *cst.Node {
	at := p.peek()
	kids := []*cst.Node{p.term()}
	kids = append(kids, p.expect(token.LParen, diag.SynUnexpectedToken, "expected '(' after '?'"))
	kids = append(kids, p.parseExpression())
	kids = append(kids, p.expect(token.Comma, diag.SynUnexpectedToken, "expected ','"))
	kids = append(kids, p.parseExpression())
	kids = append(kids, p.expect(token.Comma, diag.SynUnexpectedToken, "expected ','"))
	kids = append(kids, p.parseExpression())
	kids = append(kids, p.expect(token.RParen, diag.SynUnclosedParen, "expected ')'"))
	return cst.NewNode(cst.KindTernary, at, kids...)
}

// parseArgList: ( [арг] {, [арг]} ); пустой аргумент: пропущенный.
func (p *Parser) parseArgList() *cst.Node {
	at := p.peek()
	kids := []*cst.Node{p.term()} // (
	if !p.at(token.RParen) {
		for {
			aat := p.peek()
			if p.atOr(token.Comma, token.RParen) {
				kids = append(kids, cst.NewNode(cst.KindArg, aat))
			} else {
				kids = append(kids, cst.NewNode(cst.KindArg, aat, p.parseExpression()))
			}
			if !p.at(token.Comma) {
				break
			}
			kids = append(kids, p.term())
		}
	}
	kids = append(kids, p.expect(token.RParen, diag.SynUnclosedParen, "expected ')'"))
	return cst.NewNode(cst.KindArgList, at, kids...)
}
