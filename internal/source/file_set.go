package source

import (
	"crypto/sha256"
	"fmt"
	"os"

	"fortio.org/safecast"
)

// FileSet owns every loaded module of a run. A path may be added several
// times (LSP edits, fix rewrites); each addition gets a fresh FileID and the
// path index points at the newest one.
type FileSet struct {
	files   []File
	latest  map[string]FileID
	baseDir string
}

func NewFileSet() *FileSet {
	return &FileSet{latest: make(map[string]FileID)}
}

// NewFileSetWithBase задаёт каталог, от которого считаются относительные пути.
func NewFileSetWithBase(baseDir string) *FileSet {
	fs := NewFileSet()
	fs.baseDir = baseDir
	return fs
}

func (fs *FileSet) SetBaseDir(dir string) { fs.baseDir = dir }

// BaseDir falls back to the working directory when none was set.
func (fs *FileSet) BaseDir() string {
	if fs.baseDir != "" {
		return fs.baseDir
	}
	wd, err := os.Getwd()
	if err != nil {
		return ""
	}
	return wd
}

// Add stores already normalized content under path.
func (fs *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	n, err := safecast.Conv[uint32](len(fs.files))
	if err != nil {
		panic(fmt.Errorf("too many files in set: %w", err))
	}
	id := FileID(n)
	path = normalizePath(path)
	fs.files = append(fs.files, File{
		ID:      id,
		Path:    path,
		Content: content,
		LineIdx: buildLineIndex(content),
		Hash:    sha256.Sum256(content),
		Flags:   flags,
	})
	fs.latest[path] = id
	return id
}

// Load reads path from disk through AddNormalized.
func (fs *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- модули выбирает пользователь
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return fs.AddNormalized(path, content), nil
}

// AddNormalized strips a UTF-8 BOM and turns CRLF into LF, recording both in
// the file flags so Denormalize can put them back.
func (fs *FileSet) AddNormalized(path string, content []byte) FileID {
	var flags FileFlags
	if rest, ok := removeBOM(content); ok {
		content = rest
		flags |= FileHadBOM
	}
	if lf, ok := normalizeCRLF(content); ok {
		content = lf
		flags |= FileNormalizedCRLF
	}
	return fs.Add(path, content, flags)
}

// AddVirtual adds text that has no file behind it: stdin, an editor buffer.
func (fs *FileSet) AddVirtual(name string, content []byte) FileID {
	return fs.Add(name, content, FileVirtual)
}

// Get returns nil for an unknown id.
func (fs *FileSet) Get(id FileID) *File {
	if int(id) < len(fs.files) {
		return &fs.files[id]
	}
	return nil
}

func (fs *FileSet) Len() int { return len(fs.files) }

// GetLatest returns the newest id added under path.
func (fs *FileSet) GetLatest(path string) (FileID, bool) {
	id, ok := fs.latest[normalizePath(path)]
	return id, ok
}

// Resolve maps both ends of span to line and byte column.
func (fs *FileSet) Resolve(span Span) (start, end LineCol) {
	if f := fs.Get(span.File); f != nil {
		start, end = toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End)
	}
	return start, end
}
