// Package token defines lexical token kinds for 1C:Enterprise script (BSL).
// Invariants:
//   - Token.Text equals the source bytes covered by Token.Span.
//   - Keywords are bilingual and case-insensitive; lookup goes through Fold.
//   - Whitespace, newlines and comments stay in the stream on ChannelHidden so that
//     lexical rules can scan them; the parser only sees ChannelDefault.
//   - Preprocessor lines (#Region, #If ...) are a single Preproc token each.
package token
