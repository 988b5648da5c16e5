// Package memory is an in-process objectstore.Client. Keys of each bucket
// are kept in a skiplist so prefix listings walk them in order.
//
// It backs the unit tests of the filestore layer and the "memory" provider
// of the CLI. Nothing is persisted.
package memory

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/ryszard/goskiplist/skiplist"

	"github.com/koustreak/bucketfs/internal/errs"
	"github.com/koustreak/bucketfs/internal/objectstore"
)

type item struct {
	key                string
	data               []byte
	contentType        string
	cacheControl       string
	contentDisposition string
	contentEncoding    string
	metadata           map[string]string
	storageClass       string
	etag               string
	acl                objectstore.CannedACL
	modified           time.Time
}

func (it *item) object(withBody bool) *objectstore.Object {
	obj := &objectstore.Object{
		Key:           it.key,
		ContentLength: int64(len(it.data)),
		Size:          int64(len(it.data)),
		ContentType:   it.contentType,
		Metadata:      copyMeta(it.metadata),
		StorageClass:  it.storageClass,
		ETag:          it.etag,
		LastModified:  it.modified,
	}
	if withBody {
		// data is replaced, never edited, on overwrite.
		obj.Body = io.NopCloser(bytes.NewReader(it.data))
	}
	return obj
}

// Client is the in-memory store. The zero value is not usable; call New.
type Client struct {
	mu      sync.RWMutex
	buckets map[string]*skiplist.SkipList
	owner   string
	now     func() time.Time
}

var (
	_ objectstore.Client        = (*Client)(nil)
	_ objectstore.BucketCreator = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client)

// WithBuckets pre-creates the named buckets.
func WithBuckets(names ...string) Option {
	return func(c *Client) {
		for _, n := range names {
			c.buckets[n] = skiplist.NewStringMap()
		}
	}
}

// WithClock overrides the time source used for LastModified.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New returns an empty store.
func New(opts ...Option) *Client {
	c := &Client{
		buckets: make(map[string]*skiplist.SkipList),
		owner:   objectstore.DefaultOwner,
		now:     time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// CreateBucket creates bucket if it does not exist yet.
func (c *Client) CreateBucket(ctx context.Context, bucket string) error {
	if bucket == "" {
		return errs.New(errs.ErrKindInvalidInput, "bucket name must not be empty")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.buckets[bucket]; !ok {
		c.buckets[bucket] = skiplist.NewStringMap()
	}
	return nil
}

// bucket assumes c.mu is held.
func (c *Client) bucket(name string) (*skiplist.SkipList, error) {
	b, ok := c.buckets[name]
	if !ok {
		return nil, errs.Newf(errs.ErrKindNotFound, "bucket %q does not exist", name)
	}
	return b, nil
}

// get assumes c.mu is held.
func (c *Client) get(bucket, key string) (*item, error) {
	b, err := c.bucket(bucket)
	if err != nil {
		return nil, err
	}
	v, ok := b.Get(key)
	if !ok {
		return nil, errs.Newf(errs.ErrKindNotFound, "object %q not found in bucket %q", key, bucket)
	}
	return v.(*item), nil
}

// PutObject buffers the whole body and stores it under in.Key.
func (c *Client) PutObject(ctx context.Context, in *objectstore.PutInput) (*objectstore.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindTimeout, "put object cancelled", err)
	}
	if in.Key == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "object key must not be empty")
	}

	var data []byte
	if in.Body != nil {
		var err error
		if data, err = io.ReadAll(in.Body); err != nil {
			return nil, errs.Wrap(errs.ErrKindOperationFailed, "failed to read object body", err)
		}
	}
	if n := in.Options.ContentLength; n != nil && *n >= 0 && *n < int64(len(data)) {
		data = data[:*n]
	}

	it := &item{
		key:                in.Key,
		data:               data,
		contentType:        in.Options.ContentType,
		cacheControl:       in.Options.CacheControl,
		contentDisposition: in.Options.ContentDisposition,
		contentEncoding:    in.Options.ContentEncoding,
		metadata:           copyMeta(in.Options.Metadata),
		storageClass:       storageClass(in.Options.StorageClass),
		etag:               objectstore.ETagOf(data),
		acl:                objectstore.NormalizeACL(in.Options.ACL),
	}
	if it.contentType == "" {
		it.contentType = "binary/octet-stream"
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	b, err := c.bucket(in.Bucket)
	if err != nil {
		return nil, err
	}
	it.modified = c.now().UTC()
	b.Set(in.Key, it)

	out := it.object(false)
	out.Size = 0
	return out, nil
}

// GetObject returns the object with a reader over its body.
// Encryption options are ignored.
func (c *Client) GetObject(ctx context.Context, bucket, key string, _ objectstore.Options) (*objectstore.Object, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	it, err := c.get(bucket, key)
	if err != nil {
		return nil, err
	}
	return it.object(true), nil
}

// HeadObject returns the object without its body.
func (c *Client) HeadObject(ctx context.Context, bucket, key string, _ objectstore.Options) (*objectstore.Object, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	it, err := c.get(bucket, key)
	if err != nil {
		return nil, err
	}
	out := it.object(false)
	out.Size = 0
	return out, nil
}

// DeleteObject removes key. Missing keys are ignored.
func (c *Client) DeleteObject(ctx context.Context, bucket, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, err := c.bucket(bucket)
	if err != nil {
		return err
	}
	b.Delete(key)
	return nil
}

// CopyObject duplicates the source item. Metadata is replaced only when
// in.Options carries metadata or a content type.
func (c *Client) CopyObject(ctx context.Context, in *objectstore.CopyInput) (*objectstore.Object, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	src, err := c.get(in.SourceBucket, in.SourceKey)
	if err != nil {
		return nil, err
	}
	dst, err := c.bucket(in.Bucket)
	if err != nil {
		return nil, err
	}

	cp := *src
	cp.key = in.Key
	cp.acl = objectstore.NormalizeACL(in.Options.ACL)
	cp.modified = c.now().UTC()
	if in.Options.Metadata != nil || in.Options.ContentType != "" {
		cp.metadata = copyMeta(in.Options.Metadata)
		if in.Options.ContentType != "" {
			cp.contentType = in.Options.ContentType
		}
	} else {
		cp.metadata = copyMeta(src.metadata)
	}
	if in.Options.StorageClass != "" {
		cp.storageClass = in.Options.StorageClass
	}
	dst.Set(in.Key, &cp)

	return &objectstore.Object{
		Key:          in.Key,
		ETag:         cp.etag,
		LastModified: cp.modified,
	}, nil
}

// ListObjects walks the bucket skiplist from the page start in key order.
func (c *Client) ListObjects(ctx context.Context, in *objectstore.ListInput) (*objectstore.ListPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrKindTimeout, "list objects cancelled", err)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	b, err := c.bucket(in.Bucket)
	if err != nil {
		return nil, err
	}

	pb := objectstore.NewPageBuilder(in)
	iter := b.Seek(pb.Start())
	if iter == nil {
		return pb.Page(), nil
	}
	defer iter.Close()

	for {
		it := iter.Value().(*item)
		if !pb.Add(it.key, it.object(false)) {
			break
		}
		if !iter.Next() {
			break
		}
	}
	return pb.Page(), nil
}

// GetObjectACL expands the object's canned ACL into grants.
func (c *Client) GetObjectACL(ctx context.Context, bucket, key string) (*objectstore.AccessControlList, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	it, err := c.get(bucket, key)
	if err != nil {
		return nil, err
	}
	return objectstore.CannedGrants(c.owner, it.acl), nil
}

// PutObjectACL replaces the object's canned ACL.
func (c *Client) PutObjectACL(ctx context.Context, bucket, key string, acl objectstore.CannedACL) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	it, err := c.get(bucket, key)
	if err != nil {
		return err
	}
	it.acl = objectstore.NormalizeACL(string(acl))
	return nil
}

// Close is a no-op.
func (c *Client) Close() error { return nil }

func storageClass(s string) string {
	if s == "" {
		return "STANDARD"
	}
	return s
}

func copyMeta(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
