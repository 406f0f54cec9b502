package parser

import (
	"bslint/internal/cst"
	"bslint/internal/diag"
	"bslint/internal/token"
)

// parseAnnotations: &НаСервере, &Перед("Метод") подряд.
func (p *Parser) parseAnnotations() []*cst.Node {
	var out []*cst.Node
	for p.at(token.Annotation) {
		at := p.peek()
		kids := []*cst.Node{p.term()}
		if p.at(token.LParen) && p.peek().Line == at.Line {
			kids = append(kids, p.parseArgList())
		}
		out = append(out, cst.NewNode(cst.KindAnnotation, at, kids...))
	}
	return out
}

func (p *Parser) parseMethodOrModuleVar() *cst.Node {
	annotations := p.parseAnnotations()
	switch {
	case p.at(token.KwVar):
		return p.parseModuleVar(annotations)
	case p.atOr(token.KwProcedure, token.KwFunction, token.KwAsync):
		return p.parseMethod(annotations)
	}
	kids := append(annotations, p.missing(diag.SynUnexpectedTopLevel, "expected Procedure, Function or Var after annotation"))
	return cst.NewNode(cst.KindError, p.peek(), kids...)
}

// parseModuleVar: Перем А, Б Экспорт;
func (p *Parser) parseModuleVar(annotations []*cst.Node) *cst.Node {
	kids := append(annotations, p.term()) // Перем
	kids = append(kids, p.parseVarItems()...)
	kids = append(kids, p.expect(token.Semicolon, diag.SynExpectSemicolon, "expected ';' after variable declaration"))
	return cst.NewNode(cst.KindModuleVar, p.peek(), kids...)
}

func (p *Parser) parseVarItems() []*cst.Node {
	var kids []*cst.Node
	for {
		at := p.peek()
		item := []*cst.Node{p.expect(token.Ident, diag.SynExpectIdentifier, "expected variable name")}
		if p.at(token.KwExport) {
			item = append(item, p.term())
		}
		kids = append(kids, cst.NewNode(cst.KindVarItem, at, item...))
		if !p.at(token.Comma) {
			return kids
		}
		kids = append(kids, p.term())
	}
}

// parseMethod: [Асинх] Процедура|Функция Имя(Параметры) [Экспорт] ... Конец.
func (p *Parser) parseMethod(annotations []*cst.Node) *cst.Node {
	kids := annotations
	if p.at(token.KwAsync) {
		kids = append(kids, p.term())
	}
	kind, end := cst.KindProcedure, token.KwEndProcedure
	if p.at(token.KwFunction) {
		kind, end = cst.KindFunction, token.KwEndFunction
	}
	opener := p.peek()
	kids = append(kids, p.term())
	kids = append(kids, p.expect(token.Ident, diag.SynExpectIdentifier, "expected method name"))
	if p.at(token.LParen) {
		kids = append(kids, p.parseParamList())
	} else {
		kids = append(kids, p.missing(diag.SynUnclosedParen, "expected '(' after method name"))
	}
	if p.at(token.KwExport) {
		kids = append(kids, p.term())
	}
	kids = append(kids, p.parseCodeBlock(end))
	kids = append(kids, p.expectClose(end, opener))
	return cst.NewNode(kind, p.peek(), kids...)
}

func (p *Parser) parseParamList() *cst.Node {
	at := p.peek()
	kids := []*cst.Node{p.term()} // (
	if !p.at(token.RParen) {
		for {
			kids = append(kids, p.parseParam())
			if !p.at(token.Comma) {
				break
			}
			kids = append(kids, p.term())
		}
	}
	kids = append(kids, p.expect(token.RParen, diag.SynUnclosedParen, "expected ')' after parameters"))
	return cst.NewNode(cst.KindParamList, at, kids...)
}

// parseParam: [&Аннотация] [Знач] Имя [= Значение]
func (p *Parser) parseParam() *cst.Node {
	at := p.peek()
	kids := p.parseAnnotations()
	if p.at(token.KwVal) {
		kids = append(kids, p.term())
	}
	kids = append(kids, p.expect(token.Ident, diag.SynExpectIdentifier, "expected parameter name"))
	if p.at(token.Assign) {
		kids = append(kids, p.term())
		dat := p.peek()
		var def []*cst.Node
		if p.atOr(token.Minus, token.Plus) {
			def = append(def, p.term())
		}
		if p.atOr(token.Number, token.String, token.DateLit, token.KwTrue, token.KwFalse, token.KwUndefined, token.KwNull) {
			def = append(def, p.term())
		} else {
			def = append(def, p.missing(diag.SynExpectExpression, "expected default value"))
		}
		kids = append(kids, cst.NewNode(cst.KindDefaultValue, dat, def...))
	}
	return cst.NewNode(cst.KindParam, at, kids...)
}
