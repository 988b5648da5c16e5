package filestore

import "strings"

// PathPrefixer maps adapter-relative paths to backend keys under a fixed
// prefix and back. Adapters embed it.
type PathPrefixer struct {
	prefix string
}

// NewPathPrefixer normalises prefix to either "" or "some/root/".
func NewPathPrefixer(prefix string) PathPrefixer {
	prefix = strings.Trim(collapseSlashes(prefix), "/")
	if prefix != "" {
		prefix += "/"
	}
	return PathPrefixer{prefix: prefix}
}

// Prefix returns the normalised prefix.
func (p PathPrefixer) Prefix() string {
	return p.prefix
}

// ApplyPathPrefix returns the backend key for path. Leading slashes are
// dropped and repeated slashes collapsed; a trailing slash is kept.
func (p PathPrefixer) ApplyPathPrefix(path string) string {
	return p.prefix + strings.TrimLeft(collapseSlashes(path), "/")
}

// RemovePathPrefix returns the adapter-relative path of key.
func (p PathPrefixer) RemovePathPrefix(key string) string {
	return strings.TrimPrefix(key, p.prefix)
}

func collapseSlashes(s string) string {
	if !strings.Contains(s, "//") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	prev := byte(0)
	for i := 0; i < len(s); i++ {
		if s[i] == '/' && prev == '/' {
			continue
		}
		b.WriteByte(s[i])
		prev = s[i]
	}
	return b.String()
}
