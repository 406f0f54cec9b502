package source

// FileID is the index of a file in its FileSet.
type FileID uint32

// FileFlags record how the content was obtained and normalized.
type FileFlags uint8

const (
	FileVirtual        FileFlags = 1 << iota // stdin, LSP buffer or test text
	FileHadBOM                               // UTF-8 BOM stripped on load
	FileNormalizedCRLF                       // CRLF rewritten to LF on load
)

// File is one loaded module. Content is LF-only and without BOM; Denormalize
// restores the original form when fixes are written back.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // offsets of every '\n'
	Hash    [32]byte
	Flags   FileFlags
}

// LineCol is a 1-based line and a 1-based byte column.
type LineCol struct {
	Line uint32
	Col  uint32
}
