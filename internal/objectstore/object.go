package objectstore

import (
	"io"
	"time"
)

// Object is a raw provider record: a stored object, a metadata-only answer,
// or a listing row. Field names follow the provider's wire vocabulary; the
// filestore layer renames them into canonical entry fields.
//
// Zero values mean "absent in the provider response".
type Object struct {
	// Key is the full object key within the bucket (e.g. "root/images/photo.jpg").
	// Empty for common-prefix listing rows.
	Key string

	// Prefix is set on listing rows that represent a common prefix
	// (a virtual directory such as "root/images/"), never on objects.
	Prefix string

	// Body streams the object's content. Only set by GetObject.
	// The caller MUST Close it.
	Body io.ReadCloser

	// ContentLength is the byte length reported by get/head/put responses.
	ContentLength int64

	// ContentType is the MIME type (e.g. "image/jpeg").
	ContentType string

	// Size is the byte size reported by listing rows.
	Size int64

	// Metadata holds user-defined metadata (x-amz-meta-* on S3).
	Metadata map[string]string

	// StorageClass is the provider storage tier (e.g. "STANDARD").
	StorageClass string

	// ETag is the object's entity tag / hash, as returned by the backend.
	ETag string

	// VersionID is set when the bucket is versioned.
	VersionID string

	// LastModified is when the object was last written.
	LastModified time.Time
}

// IsPrefix reports whether the row is a common prefix rather than an object.
func (o *Object) IsPrefix() bool {
	return o.Key == "" && o.Prefix != ""
}

// PutInput describes a single object write.
type PutInput struct {
	Bucket  string
	Key     string
	Body    io.Reader
	Options Options
}

// CopyInput describes a server-side copy from SourceBucket/SourceKey to Bucket/Key.
type CopyInput struct {
	Bucket       string
	Key          string
	SourceBucket string
	SourceKey    string
	Options      Options
}

// DefaultMaxKeys is the page size used when ListInput.MaxKeys is zero.
// It matches the S3 per-request ceiling.
const DefaultMaxKeys = 1000

// ListInput controls one page of a prefix listing.
type ListInput struct {
	Bucket string

	// Prefix restricts results to keys starting with this string.
	// Use "" to list everything in the bucket.
	Prefix string

	// Delimiter groups keys that share a prefix up to the next occurrence
	// of the delimiter into a single common-prefix row. Empty means a flat,
	// fully recursive listing.
	Delimiter string

	// MaxKeys caps the number of rows (objects plus common prefixes) in the
	// page. 0 means DefaultMaxKeys.
	MaxKeys int

	// ContinuationToken resumes a listing from a previous ListPage.
	// Pass "" to start from the beginning.
	ContinuationToken string
}

// Limit returns the effective page size.
func (in *ListInput) Limit() int {
	if in.MaxKeys <= 0 {
		return DefaultMaxKeys
	}
	return in.MaxKeys
}

// ListPage is one page of listing results.
type ListPage struct {
	// Rows holds objects and common prefixes in provider order
	// (ascending key order for every backend in this module).
	Rows []*Object

	// IsTruncated reports whether more rows are available.
	IsTruncated bool

	// NextContinuationToken is passed back in ListInput to fetch the next page.
	NextContinuationToken string
}
