package filestore

import (
	"io"

	"github.com/koustreak/bucketfs/internal/errs"
)

// EntryType tells files and directories apart.
type EntryType string

const (
	TypeFile EntryType = "file"
	TypeDir  EntryType = "dir"
)

// Entry is the canonical, provider-agnostic record returned by adapters.
// Optional fields are zero when the backend did not report them.
type Entry struct {
	// Path is relative to the adapter root. Directories have no trailing slash.
	Path string `json:"path"`

	Type EntryType `json:"type"`

	// Contents is the file body. Only set by Read.
	Contents []byte `json:"contents,omitempty"`

	// Stream is the open file body. Only set by ReadStream; the caller
	// MUST close it.
	Stream io.ReadCloser `json:"-"`

	Size         int64             `json:"size,omitempty"`
	Mimetype     string            `json:"mimetype,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	StorageClass string            `json:"storageclass,omitempty"`
	ETag         string            `json:"etag,omitempty"`
	VersionID    string            `json:"versionid,omitempty"`

	// Name is the backend key the entry was read from.
	Name string `json:"name,omitempty"`

	// Timestamp is the last-modified time in unix seconds.
	Timestamp int64 `json:"timestamp,omitempty"`
}

// IsDir reports whether the entry is a directory.
func (e *Entry) IsDir() bool {
	return e.Type == TypeDir
}

// Text returns Contents as a string.
func (e *Entry) Text() string {
	return string(e.Contents)
}

// Visibility is the public/private classification of a file.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// ParseVisibility accepts "public" and "private".
func ParseVisibility(s string) (Visibility, error) {
	switch Visibility(s) {
	case VisibilityPublic, VisibilityPrivate:
		return Visibility(s), nil
	}
	return "", errs.Newf(errs.ErrKindInvalidInput, "invalid visibility %q (want public or private)", s)
}
