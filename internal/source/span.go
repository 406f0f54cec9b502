package source

import "fmt"

// Span is a half-open byte range [Start, End) of one file.
type Span struct {
	File  FileID
	Start uint32
	End   uint32
}

func (s Span) Empty() bool { return s.Start >= s.End }

func (s Span) String() string {
	return fmt.Sprintf("%d:%d-%d", s.File, s.Start, s.End)
}

// Cover is the smallest span holding s and other. A span of another file
// leaves s as is.
func (s Span) Cover(other Span) Span {
	if s.File == other.File {
		s.Start = min(s.Start, other.Start)
		s.End = max(s.End, other.End)
	}
	return s
}

// Contains reports whether other lies fully inside s.
func (s Span) Contains(other Span) bool {
	return s.File == other.File && s.Start <= other.Start && other.End <= s.End
}

// ZeroideToEnd and ZeroideToStart collapse s to an empty span at one edge;
// так ставятся вставки до и после узла.
func (s Span) ZeroideToEnd() Span {
	s.Start = s.End
	return s
}

func (s Span) ZeroideToStart() Span {
	s.End = s.Start
	return s
}
