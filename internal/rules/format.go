package rules

import (
	"strings"
	"unicode/utf8"

	"fortio.org/safecast"
	"github.com/mattn/go-runewidth"

	"bslint/internal/diag"
	"bslint/internal/fix"
	"bslint/internal/rule"
	"bslint/internal/source"
	"bslint/internal/token"
)

const tabWidth = 4

var lineLengthDesc = rule.Descriptor{
	ID:           "LineLength",
	Category:     diag.CategoryCodeSmell,
	Severity:     rule.SeverityMinor,
	MinutesToFix: 1,
	Activated:    true,
	Tags:         []string{"standard", "badpractice"},
	Params: []rule.ParamSpec{
		{Name: "maxLineLength", Type: rule.ParamInt, Default: 120, Description: "Maximum line width, a tab counts as 4"},
	},
	Message:   "Line is %d characters long, maximum is %d",
	MessageRu: "Длина строки %d превышает допустимую %d",
}

type lineLength struct {
	rule.Scanner
	max int
}

func newLineLength(p rule.Params) rule.Rule {
	r := &lineLength{max: p.Int("maxLineLength")}
	r.Line = r.line
	return r
}

// displayWidth считает ширину строки с табуляцией по 4.
func displayWidth(s string) int {
	w := 0
	for _, r := range s {
		if r == '\t' {
			w += tabWidth
			continue
		}
		w += runewidth.RuneWidth(r)
	}
	return w
}

func (r *lineLength) line(ctx *rule.Context, line int, text string) {
	text = strings.TrimRight(text, "\r")
	width := displayWidth(text)
	if width <= r.max {
		return
	}
	ctx.Add(rule.AtRange(line, 0, line, utf8.RuneCountInString(text)), rule.Messagef(width, r.max))
}

var consecutiveEmptyLinesDesc = rule.Descriptor{
	ID:           "ConsecutiveEmptyLines",
	Category:     diag.CategoryCodeSmell,
	Severity:     rule.SeverityInfo,
	MinutesToFix: 1,
	Activated:    true,
	Tags:         []string{"badpractice"},
	Params: []rule.ParamSpec{
		{Name: "allowedEmptyLinesCount", Type: rule.ParamInt, Default: 1, Description: "Empty lines allowed in a row"},
	},
	Message:   "Too many consecutive empty lines",
	MessageRu: "Лишние пустые строки подряд",
}

// consecutiveEmptyLines reports the extra blank lines of a run followed by
// code; the finding covers them with their line breaks.
type consecutiveEmptyLines struct {
	rule.Scanner
	allowed int
	start   int // первая пустая строка текущей серии, 0 если серии нет
}

func newConsecutiveEmptyLines(p rule.Params) rule.Rule {
	r := &consecutiveEmptyLines{allowed: p.Int("allowedEmptyLinesCount")}
	r.Line = r.line
	return r
}

func (r *consecutiveEmptyLines) line(ctx *rule.Context, line int, text string) {
	if strings.TrimSpace(text) == "" {
		if r.start == 0 {
			r.start = line
		}
		return
	}
	if r.start != 0 && line-r.start > r.allowed {
		ctx.Add(rule.AtRange(r.start+r.allowed, 0, line, 0))
	}
	r.start = 0
}

func (r *consecutiveEmptyLines) QuickFixes(diags []diag.Diagnostic, ec rule.EditContext) []rule.CodeAction {
	out := make([]rule.CodeAction, 0, len(diags))
	for _, d := range diags {
		old := ""
		if ec.File != nil {
			old = ec.File.Text(d.Primary)
		}
		out = append(out, rule.CodeAction{
			Diagnostic: d,
			Fix:        fix.DeleteSpan("Remove extra empty lines", d.Primary, old, fix.Preferred()),
		})
	}
	return out
}

var spaceAtStartCommentDesc = rule.Descriptor{
	ID:           "SpaceAtStartComment",
	Category:     diag.CategoryCodeSmell,
	Severity:     rule.SeverityInfo,
	MinutesToFix: 1,
	Activated:    true,
	Tags:         []string{"standard"},
	Params: []rule.ParamSpec{
		{Name: "commentsAnnotation", Type: rule.ParamStringList, Default: "//@,//(c),//©", Description: "Comment prefixes allowed without a space"},
	},
	Message:   "Comment must start with a space",
	MessageRu: "Комментарий должен начинаться с пробела",
}

type spaceAtStartComment struct {
	rule.Scanner
	annotations []string
}

func newSpaceAtStartComment(p rule.Params) rule.Rule {
	r := &spaceAtStartComment{annotations: p.StringList("commentsAnnotation")}
	r.TokenCheck = r.check
	return r
}

// check only reads r; it runs concurrently over chunks of the stream.
func (r *spaceAtStartComment) check(_ *rule.Context, tok token.Token) (rule.TokenFinding, bool) {
	if tok.Kind != token.LineComment {
		return rule.TokenFinding{}, false
	}
	rest := strings.TrimPrefix(tok.Text, "//")
	if rest == "" || strings.Trim(rest, "/") == "" || strings.HasPrefix(rest, " ") || strings.HasPrefix(rest, "\t") {
		return rule.TokenFinding{}, false
	}
	for _, a := range r.annotations {
		if strings.HasPrefix(tok.Text, a) {
			return rule.TokenFinding{}, false
		}
	}
	return rule.TokenFinding{Loc: rule.AtToken(tok)}, true
}

func (r *spaceAtStartComment) QuickFixes(diags []diag.Diagnostic, _ rule.EditContext) []rule.CodeAction {
	out := make([]rule.CodeAction, 0, len(diags))
	for _, d := range diags {
		at := source.Span{File: d.Primary.File, Start: d.Primary.Start + 2, End: d.Primary.Start + 2}
		out = append(out, rule.CodeAction{
			Diagnostic: d,
			Fix:        fix.InsertText("Add space after //", at, " ", "", fix.Preferred()),
		})
	}
	return out
}

var bannedWordDesc = rule.Descriptor{
	ID:           "BannedWord",
	Category:     diag.CategoryCodeSmell,
	Severity:     rule.SeverityMajor,
	MinutesToFix: 15,
	Activated:    false,
	Tags:         []string{"design"},
	Params: []rule.ParamSpec{
		{Name: "bannedWords", Type: rule.ParamPattern, Default: "", Description: "Regular expression of banned words"},
	},
	Message:   "Banned word: %s",
	MessageRu: "Запрещённое слово: %s",
}

type bannedWord struct {
	rule.Scanner
}

func newBannedWord(p rule.Params) rule.Rule {
	re := p.Pattern("bannedWords")
	r := &bannedWord{}
	if re == nil {
		// нет шаблона или он не собрался: правило молчит
		return r
	}
	match := func(ctx *rule.Context, tok token.Token) {
		for _, loc := range re.FindAllStringIndex(tok.Text, -1) {
			if loc[0] == loc[1] {
				continue
			}
			lo, err1 := safecast.Conv[uint32](loc[0])
			hi, err2 := safecast.Conv[uint32](loc[1])
			if err1 != nil || err2 != nil {
				continue
			}
			sp := tok.Span
			sp.Start, sp.End = tok.Span.Start+lo, tok.Span.Start+hi
			ctx.Add(rule.AtSpan(sp), rule.Messagef(tok.Text[loc[0]:loc[1]]))
		}
	}
	r.Token = match
	r.Hidden = func(ctx *rule.Context, tok token.Token) {
		if tok.Kind == token.LineComment {
			match(ctx, tok)
		}
	}
	return r
}

var usingTabsDesc = rule.Descriptor{
	ID:           "UsingTabs",
	Category:     diag.CategoryCodeSmell,
	Severity:     rule.SeverityInfo,
	MinutesToFix: 1,
	Activated:    false,
	Tags:         []string{"badpractice"},
	Message:      "Line is indented with tabs",
	MessageRu:    "Отступ строки выполнен табуляцией",
}

func newUsingTabs(rule.Params) rule.Rule {
	return &rule.Scanner{
		Line: func(ctx *rule.Context, line int, text string) {
			indent := len(text) - len(strings.TrimLeft(text, " \t"))
			if i := strings.IndexByte(text[:indent], '\t'); i >= 0 {
				ctx.Add(rule.AtRange(line, i, line, indent))
			}
		},
	}
}
