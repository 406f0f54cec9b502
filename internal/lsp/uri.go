package lsp

import (
	"net/url"
	"path/filepath"
	"strings"
)

// uriToPath maps a file URI, or a bare path some clients send, to an absolute
// OS path. Other schemes give "".
func uriToPath(uri string) string {
	if uri == "" {
		return ""
	}
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	var p string
	switch u.Scheme {
	case "file":
		p = u.Path // уже раскодирован
	case "":
		p = uri
	default:
		return ""
	}
	if hasDriveLetter(p) {
		p = p[1:] // file:///C:/x
	}
	p = filepath.FromSlash(p)
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return p
}

func hasDriveLetter(p string) bool {
	return len(p) >= 3 && p[0] == '/' && p[2] == ':'
}

func pathToURI(path string) string {
	if path == "" {
		return ""
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	slashed := filepath.ToSlash(path)
	if !strings.HasPrefix(slashed, "/") {
		slashed = "/" + slashed
	}
	return (&url.URL{Scheme: "file", Path: slashed}).String()
}

// canonicalURI is the document key: one file, one URI whatever the client's escaping.
func canonicalURI(uri string) string {
	if p := uriToPath(uri); p != "" {
		return pathToURI(p)
	}
	return uri
}
