package config

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

func validPattern(p string) bool {
	return doublestar.ValidatePattern(filepath.ToSlash(p))
}

// Matches reports whether rel (a path relative to Root) is included and not
// excluded. Patterns without a slash also match the base name.
func (c *Config) Matches(rel string) bool {
	rel = filepath.ToSlash(rel)
	return matchAny(c.Include, rel) && !matchAny(c.Exclude, rel)
}

// Excluded reports whether a directory can be skipped entirely.
func (c *Config) Excluded(relDir string) bool {
	relDir = filepath.ToSlash(relDir)
	return matchAny(c.Exclude, relDir) || matchAny(c.Exclude, relDir+"/")
}

func matchAny(patterns []string, rel string) bool {
	for _, p := range patterns {
		p = filepath.ToSlash(p)
		if ok, err := doublestar.Match(p, rel); err == nil && ok {
			return true
		}
		if !strings.Contains(p, "/") {
			if ok, err := doublestar.Match(p, pathBase(rel)); err == nil && ok {
				return true
			}
		}
	}
	return false
}

func pathBase(rel string) string {
	if i := strings.LastIndexByte(strings.TrimSuffix(rel, "/"), '/'); i >= 0 {
		return strings.TrimSuffix(rel[i+1:], "/")
	}
	return strings.TrimSuffix(rel, "/")
}
