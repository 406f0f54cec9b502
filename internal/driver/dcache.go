package driver

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"bslint/internal/diag"
	"bslint/internal/engine"
	"bslint/internal/source"
)

// diskCacheSchemaVersion растёт при любом изменении DiskPayload или
// сериализуемых типов diag и engine; записи прежних версий считаются промахом.
const diskCacheSchemaVersion uint16 = 1

// Digest is a SHA-256 cache key.
type Digest [32]byte

// DiskCache keeps per-file analysis results under a key built from the
// module text, the run settings and the module context. A nil *DiskCache
// is a cache that never hits.
type DiskCache struct {
	mu   sync.RWMutex
	root string
}

// DiskPayload is one cached file. Spans are stored with File = 0 and rebound
// to the current FileID on load.
type DiskPayload struct {
	Schema      uint16
	Path        string
	ContentHash Digest
	Rules       []string
	Syntax      []diag.Diagnostic
	Diagnostics []diag.Diagnostic
	Issues      []engine.Issue
}

// OpenDiskCache opens <user cache dir>/<app>, honouring XDG_CACHE_HOME.
func OpenDiskCache(app string) (*DiskCache, error) {
	base, err := os.UserCacheDir()
	if err != nil {
		return nil, fmt.Errorf("locate cache dir: %w", err)
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt uses dir as the cache root, creating it when missing.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &DiskCache{root: dir}, nil
}

func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.root
}

func (c *DiskCache) unitsDir() string { return filepath.Join(c.root, "units") }

// entry: units/ab/abcdef....mp, fan-out по первому байту ключа.
func (c *DiskCache) entry(key Digest) string {
	name := hex.EncodeToString(key[:])
	return filepath.Join(c.unitsDir(), name[:2], name+".mp")
}

// Put stores payload under key, replacing an older entry atomically.
func (c *DiskCache) Put(key Digest, payload *DiskPayload) error {
	if c == nil || payload == nil {
		return nil
	}
	payload.Schema = diskCacheSchemaVersion
	data, err := msgpack.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return writeFileAtomic(c.entry(key), data)
}

// writeFileAtomic пишет во временный файл рядом с целью и переименовывает его,
// параллельный читатель видит либо старую запись, либо новую.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".entry-*")
	if err != nil {
		return err
	}
	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return nil
}

// Get fills out from the entry under key. A missing entry or one written by
// another schema is a miss; unreadable or corrupt entries are reported.
func (c *DiskCache) Get(key Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	data, err := os.ReadFile(c.entry(key))
	c.mu.RUnlock()
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	case err != nil:
		return false, err
	}
	if err := msgpack.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("decode cache entry %s: %w", hex.EncodeToString(key[:4]), err)
	}
	return out.Schema == diskCacheSchemaVersion, nil
}

// DropAll removes every entry; the cache stays usable.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.RemoveAll(c.unitsDir()); err != nil {
		return fmt.Errorf("drop cache: %w", err)
	}
	return nil
}

// toPayload detaches diagnostics from the run's FileSet.
func toPayload(path string, hash Digest, res engine.Result) *DiskPayload {
	diags := make([]diag.Diagnostic, len(res.Diagnostics))
	for i, d := range res.Diagnostics {
		diags[i] = rebind(d.Clone(), 0)
	}
	return &DiskPayload{
		Path:        path,
		ContentHash: hash,
		Rules:       append([]string(nil), res.Rules...),
		Diagnostics: diags,
		Issues:      append([]engine.Issue(nil), res.Issues...),
	}
}

// fromPayload binds cached diagnostics to file.
func fromPayload(p *DiskPayload, file source.FileID) engine.Result {
	res := engine.Result{
		Rules:       p.Rules,
		Issues:      p.Issues,
		Diagnostics: make([]diag.Diagnostic, len(p.Diagnostics)),
	}
	for i, d := range p.Diagnostics {
		res.Diagnostics[i] = rebind(d, file)
	}
	return res
}

// rebind moves every span of d into file.
func rebind(d diag.Diagnostic, file source.FileID) diag.Diagnostic {
	d.Primary.File = file
	for i := range d.Notes {
		d.Notes[i].Span.File = file
	}
	for i := range d.Fixes {
		for j := range d.Fixes[i].Edits {
			d.Fixes[i].Edits[j].Span.File = file
		}
	}
	d.Data = nil
	return d
}
