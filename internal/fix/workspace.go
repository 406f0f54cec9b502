package fix

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"bslint/internal/diag"
	"bslint/internal/source"
)

// workspace accumulates accepted edits per file. Edits stay in the
// coordinates of the loaded content; nothing is rendered until commit.
type workspace struct {
	fs     *source.FileSet
	dryRun bool
	files  map[source.FileID]*pendingFile
}

type pendingFile struct {
	file  *source.File
	edits []diag.TextEdit
}

func newWorkspace(fs *source.FileSet, dryRun bool) *workspace {
	return &workspace{fs: fs, dryRun: dryRun, files: make(map[source.FileID]*pendingFile)}
}

// stage accepts all edits of one fix or none of them.
func (w *workspace) stage(edits []diag.TextEdit) (int, error) {
	for i, e := range edits {
		file := w.fs.Get(e.Span.File)
		if file == nil {
			return 0, errors.New("target file is unknown")
		}
		if file.Flags&source.FileVirtual != 0 && !w.dryRun {
			return 0, errors.New("target file is virtual")
		}
		if err := checkEdit(file.Content, e); err != nil {
			return 0, err
		}
		for _, prev := range edits[:i] {
			if overlap(prev.Span, e.Span) {
				return 0, fmt.Errorf("%w inside one fix", ErrEditConflict)
			}
		}
		if p := w.files[e.Span.File]; p != nil {
			for _, prev := range p.edits {
				if overlap(prev.Span, e.Span) {
					return 0, fmt.Errorf("conflicts with previously applied edits in %s", w.displayPath(e.Span.File, "auto"))
				}
			}
		}
	}
	for _, e := range edits {
		p := w.files[e.Span.File]
		if p == nil {
			p = &pendingFile{file: w.fs.Get(e.Span.File)}
			w.files[e.Span.File] = p
		}
		p.edits = append(p.edits, e)
	}
	return len(edits), nil
}

// commit renders every touched file and, outside dry runs, writes it back in
// its original encoding. Changes come back sorted by path; the first write
// error stops the commit.
func (w *workspace) commit() ([]FileChange, error) {
	changes := make([]FileChange, 0, len(w.files))
	for id, p := range w.files {
		changes = append(changes, FileChange{
			Path:      w.displayPath(id, "relative"),
			EditCount: len(p.edits),
			Before:    p.file.Content,
			After:     render(p.file.Content, p.edits),
		})
	}
	sort.SliceStable(changes, func(i, j int) bool { return changes[i].Path < changes[j].Path })
	if w.dryRun {
		return changes, nil
	}

	byPath := make(map[string]*source.File, len(w.files))
	for id, p := range w.files {
		byPath[w.displayPath(id, "relative")] = p.file
	}
	for i, ch := range changes {
		file := byPath[ch.Path]
		if err := writeFileAtomic(file.Path, source.Denormalize(ch.After, file.Flags)); err != nil {
			return changes[:i], fmt.Errorf("write %s: %w", file.Path, err)
		}
	}
	return changes, nil
}

func (w *workspace) displayPath(id source.FileID, mode string) string {
	file := w.fs.Get(id)
	if file == nil {
		return ""
	}
	return file.FormatPath(mode, w.fs.BaseDir())
}

// writeFileAtomic replaces path through a temporary file in the same
// directory, so an interrupted run never leaves a half-written module. The
// file mode is preserved.
func writeFileAtomic(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".bslint-*"+filepath.Ext(path))
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return err
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		cleanup()
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return err
	}
	return nil
}
