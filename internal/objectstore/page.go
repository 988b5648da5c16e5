package objectstore

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// PageBuilder assembles one ListPage for providers that enumerate their keys
// themselves (memory, bolt, SQL). Keys must be offered in ascending order,
// starting at Start(). It applies prefix filtering, delimiter grouping,
// the continuation token and MaxKeys the way S3 ListObjectsV2 does.
//
// Continuation tokens produced here are the last row emitted (an object key
// or a common prefix); they are opaque to callers.
type PageBuilder struct {
	in         *ListInput
	limit      int
	page       ListPage
	last       string
	lastPrefix string
	seen       string
	done       bool
}

// NewPageBuilder starts a page for in.
func NewPageBuilder(in *ListInput) *PageBuilder {
	b := &PageBuilder{
		in:    in,
		limit: in.Limit(),
		page:  ListPage{Rows: []*Object{}},
	}
	tok := in.ContinuationToken
	if tok != "" && in.Delimiter != "" && strings.HasSuffix(tok, in.Delimiter) {
		// Resuming after a common prefix: its remaining keys are already
		// represented by the row emitted on the previous page.
		b.lastPrefix = tok
	}
	return b
}

// Start returns the first key the provider has to visit.
func (b *PageBuilder) Start() string {
	if b.in.ContinuationToken > b.in.Prefix {
		return b.in.ContinuationToken
	}
	return b.in.Prefix
}

// Add offers the next key with its object row. It returns false once the
// page is complete or the keys have moved past the prefix; the provider
// must stop iterating then.
func (b *PageBuilder) Add(key string, obj *Object) bool {
	if b.done {
		return false
	}
	b.seen = key

	if !strings.HasPrefix(key, b.in.Prefix) {
		if key > b.in.Prefix {
			b.done = true
			return false
		}
		return true
	}

	if tok := b.in.ContinuationToken; tok != "" && key <= tok {
		return true
	}

	row, rowKey := obj, key
	if d := b.in.Delimiter; d != "" {
		rest := key[len(b.in.Prefix):]
		if i := strings.Index(rest, d); i >= 0 {
			common := key[:len(b.in.Prefix)+i+len(d)]
			if common == b.lastPrefix {
				return true
			}
			b.lastPrefix = common
			row, rowKey = &Object{Prefix: common}, common
		}
	}

	if len(b.page.Rows) == b.limit {
		b.page.IsTruncated = true
		b.page.NextContinuationToken = b.last
		b.done = true
		return false
	}

	b.page.Rows = append(b.page.Rows, row)
	b.last = rowKey
	return true
}

// LastSeen returns the last key offered to Add. Providers that read keys
// in batches resume after it.
func (b *PageBuilder) LastSeen() string {
	return b.seen
}

// Page returns the assembled page.
func (b *PageBuilder) Page() *ListPage {
	return &b.page
}

// ETagOf returns the quoted MD5 entity tag S3 reports for a single-part object.
func ETagOf(data []byte) string {
	sum := md5.Sum(data)
	return `"` + hex.EncodeToString(sum[:]) + `"`
}
