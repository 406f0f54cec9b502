package parser

import (
	"slices"

	"bslint/internal/cst"
	"bslint/internal/diag"
	"bslint/internal/source"
	"bslint/internal/token"
)

// advance: съедает следующий токен и обновляет lastSpan
func (p *Parser) advance() token.Token {
	tok := p.peek()
	if tok.Kind == token.EOF {
		return tok
	}
	p.pos++
	if tok.Kind != token.Invalid {
		p.lastSpan = tok.Span
	}
	return tok
}

// term: съедает токен и оборачивает его в терминал.
func (p *Parser) term() *cst.Node {
	return cst.NewTerminal(p.advance())
}

// getDiagnosticSpan: возвращает лучший span для диагностики.
// На EOF показываем позицию сразу после последнего съеденного токена.
func (p *Parser) getDiagnosticSpan() source.Span {
	peek := p.peek()
	if peek.Kind == token.EOF {
		return p.lastSpan.ZeroideToEnd()
	}
	return peek.Span
}

// expect: ожидаем конкретный токен. Если нет: репортим и возвращаем пустой
// узел ошибки, ничего не съедая.
func (p *Parser) expect(k token.Kind, code diag.Code, msg string) *cst.Node {
	if p.at(k) {
		return p.term()
	}
	return p.missing(code, msg)
}

// missing: пустой узел ошибки в текущей позиции.
func (p *Parser) missing(code diag.Code, msg string) *cst.Node {
	p.err(code, msg)
	at := p.peek()
	if at.Kind == token.EOF {
		at.Span = p.getDiagnosticSpan()
	}
	return cst.NewError(msg, at)
}

// errorConsume: узел ошибки, поглотивший один токен.
func (p *Parser) errorConsume(code diag.Code, msg string) *cst.Node {
	p.err(code, msg)
	at := p.peek()
	return cst.NewError(msg, at, p.term())
}

// репортует ошибку и передает текущий спан
func (p *Parser) err(code diag.Code, msg string) bool {
	return p.report(code, diag.SevError, p.getDiagnosticSpan(), msg)
}

func (p *Parser) report(code diag.Code, sev diag.Severity, sp source.Span, msg string) bool {
	if !p.admit(sev) {
		return false
	}
	p.opts.Reporter.Report(code, sev, sp, msg, nil, nil)
	return true
}

// admit: есть ли reporter и не исчерпан ли лимит ошибок; ошибку засчитывает.
func (p *Parser) admit(sev diag.Severity) bool {
	if p.opts.Reporter == nil {
		return false
	}
	if sev == diag.SevError {
		if p.opts.Enough() {
			return false
		}
		p.opts.CurrentErrors++
	}
	return true
}

// expectClose: закрывающее ключевое слово блока. Без него ошибка получает
// заметку на открывающем токене, иначе на EOF не понять, какой блок не закрыт.
func (p *Parser) expectClose(k token.Kind, opener token.Token) *cst.Node {
	if p.at(k) {
		return p.term()
	}
	msg := "expected " + k.String()
	at := p.peek()
	if at.Kind == token.EOF {
		at.Span = p.getDiagnosticSpan()
	}
	if p.admit(diag.SevError) {
		diag.ReportError(p.opts.Reporter, diag.SynUnclosedBlock, at.Span, msg).
			WithNote(opener.Span, opener.Kind.String()+" opened here").
			Emit()
	}
	return cst.NewError(msg, at)
}

// Терминаторы блоков: на них заканчивается любой вложенный блок кода.
var blockTerminators = []token.Kind{
	token.KwEndProcedure, token.KwEndFunction,
	token.KwElsIf, token.KwElse, token.KwEndIf,
	token.KwEndDo,
	token.KwExcept, token.KwEndTry,
}

func isBlockTerminator(k token.Kind) bool {
	return slices.Contains(blockTerminators, k)
}

// enclosingAccepts: ждёт ли какой-либо объемлющий блок этот терминатор.
func (p *Parser) enclosingAccepts(k token.Kind) bool {
	for i := len(p.stops) - 1; i >= 0; i-- {
		if slices.Contains(p.stops[i], k) {
			return true
		}
	}
	return false
}

// atStatementEnd: здесь может закончиться оператор без продолжения.
func (p *Parser) atStatementEnd() bool {
	k := p.peek().Kind
	return k == token.Semicolon || k == token.EOF || isBlockTerminator(k) || p.atMethodStart()
}

// Ключевые слова, с которых начинается оператор; используются для ресинхронизации
// по началу строки.
var statementStarters = []token.Kind{
	token.KwIf, token.KwWhile, token.KwFor, token.KwTry, token.KwReturn,
	token.KwRaise, token.KwVar, token.KwBreak, token.KwContinue, token.KwExecute,
	token.KwGoto, token.KwAddHandler, token.KwRemoveHandler, token.Preproc,
}

// resyncStatement: прокручиваем до ';' (включительно), до ключевого слова
// оператора в начале строки, до терминатора блока или EOF. Всегда съедает
// хотя бы один токен, если не стоим на точке синхронизации.
func (p *Parser) resyncStatement(code diag.Code, msg string) *cst.Node {
	p.err(code, msg)
	at := p.peek()
	var skipped []*cst.Node
	for !p.at(token.EOF) {
		if len(skipped) > 0 {
			if isBlockTerminator(p.peek().Kind) || p.atMethodStart() {
				break
			}
			if p.atLineStart() && p.atOr(statementStarters...) {
				break
			}
		}
		if p.at(token.Semicolon) {
			skipped = append(skipped, p.term())
			break
		}
		skipped = append(skipped, p.term())
	}
	return cst.NewError(msg, at, skipped...)
}
