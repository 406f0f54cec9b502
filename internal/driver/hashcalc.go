package driver

import (
	"bytes"
	"crypto/sha256"
	"sort"

	"github.com/vmihailenco/msgpack/v5"

	"bslint/internal/module"
	"bslint/internal/rule"
)

// combineDigest: H(content || dep1 || dep2 ...). deps уже в детерминированном порядке.
func combineDigest(content Digest, deps ...Digest) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, d := range deps {
		_, _ = h.Write(d[:])
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// runShape is everything besides the file text that changes the findings.
type runShape struct {
	Schema   uint16
	Tool     string
	Rules    []string
	Only     []string
	Language string
	Fixes    bool
	Settings map[string]rule.Settings
}

// settingsDigest fingerprints the run configuration. Map keys are sorted so
// the digest does not depend on iteration order.
func settingsDigest(opts *Options) (Digest, error) {
	shape := runShape{
		Schema:   diskCacheSchemaVersion,
		Tool:     opts.ToolVersion,
		Only:     append([]string(nil), opts.Only...),
		Language: opts.Config.Language,
		Fixes:    opts.Fixes,
		Settings: opts.Config.Diagnostics,
	}
	if opts.Registry != nil {
		for _, d := range opts.Registry.All() {
			shape.Rules = append(shape.Rules, d.Descriptor.ID)
		}
	}
	sort.Strings(shape.Only)

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	if err := enc.Encode(&shape); err != nil {
		return Digest{}, err
	}
	return sha256.Sum256(buf.Bytes()), nil
}

// moduleDigest covers the per-file module context.
func moduleDigest(mctx module.Context) Digest {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	_ = enc.Encode(uint8(mctx.Kind))
	_ = enc.Encode(mctx.Compatibility.String())
	return sha256.Sum256(buf.Bytes())
}

// cacheKey = H(file hash || settings || module context).
func cacheKey(content [32]byte, settings Digest, mctx module.Context) Digest {
	return combineDigest(Digest(content), settings, moduleDigest(mctx))
}
