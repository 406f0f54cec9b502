package diag

// Code identifies the producer of a diagnostic. Rule findings use the rule id,
// lexer and parser findings use the constants below.
type Code string

const (
	UnknownCode Code = ""

	// Лексические
	LexUnknownChar         Code = "LexUnknownChar"
	LexUnterminatedString  Code = "LexUnterminatedString"
	LexUnterminatedDate    Code = "LexUnterminatedDate"
	LexBadAnnotation       Code = "LexBadAnnotation"
	LexUnterminatedPreproc Code = "LexUnterminatedPreproc"

	// Парсерные
	SynUnexpectedToken    Code = "SynUnexpectedToken"
	SynExpectSemicolon    Code = "SynExpectSemicolon"
	SynExpectExpression   Code = "SynExpectExpression"
	SynExpectIdentifier   Code = "SynExpectIdentifier"
	SynUnclosedParen      Code = "SynUnclosedParen"
	SynUnclosedBracket    Code = "SynUnclosedBracket"
	SynUnclosedBlock      Code = "SynUnclosedBlock"
	SynUnexpectedTopLevel Code = "SynUnexpectedTopLevel"

	// Ввод-вывод
	IOLoadFileError Code = "IOLoadFileError"
)

// ID returns the stable textual identifier.
func (c Code) ID() string {
	if c == UnknownCode {
		return "Unknown"
	}
	return string(c)
}

func (c Code) String() string {
	return c.ID()
}
