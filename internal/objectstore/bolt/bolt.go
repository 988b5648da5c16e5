// Package bolt is an objectstore.Client persisted in a single bbolt file.
//
// Every store bucket is a top-level bolt bucket; each object is one
// BSON-encoded record keyed by its object key. Bolt keeps keys sorted, so
// listings are a cursor seek followed by a forward scan.
package bolt

import (
	"bytes"
	"context"
	"io"
	"time"

	bolt "go.etcd.io/bbolt"
	"gopkg.in/mgo.v2/bson"

	"github.com/koustreak/bucketfs/internal/errs"
	"github.com/koustreak/bucketfs/internal/objectstore"
)

// record is the stored form of an object. Its layout is internal to this
// package.
type record struct {
	Key                string            `bson:"key"`
	Data               []byte            `bson:"data"`
	ContentType        string            `bson:"content_type,omitempty"`
	CacheControl       string            `bson:"cache_control,omitempty"`
	ContentDisposition string            `bson:"content_disposition,omitempty"`
	ContentEncoding    string            `bson:"content_encoding,omitempty"`
	Metadata           map[string]string `bson:"metadata,omitempty"`
	StorageClass       string            `bson:"storage_class,omitempty"`
	ETag               string            `bson:"etag"`
	ACL                string            `bson:"acl"`
	Modified           time.Time         `bson:"modified"`
}

func (r *record) object(withBody bool) *objectstore.Object {
	obj := &objectstore.Object{
		Key:           r.Key,
		ContentLength: int64(len(r.Data)),
		Size:          int64(len(r.Data)),
		ContentType:   r.ContentType,
		Metadata:      r.Metadata,
		StorageClass:  r.StorageClass,
		ETag:          r.ETag,
		LastModified:  r.Modified,
	}
	if withBody {
		obj.Body = io.NopCloser(bytes.NewReader(r.Data))
	}
	return obj
}

// Client stores objects in a bolt database.
type Client struct {
	db    *bolt.DB
	owner string
	now   func() time.Time
}

var (
	_ objectstore.Client        = (*Client)(nil)
	_ objectstore.BucketCreator = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client)

// WithClock overrides the time source used for LastModified.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// Open opens (or creates) the bolt file at path.
func Open(path string, opts ...Option) (*Client, error) {
	if path == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "bolt: database path must not be empty")
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "bolt: failed to open "+path, err)
	}
	return New(db, opts...), nil
}

// New wraps an already open database. Close closes db.
func New(db *bolt.DB, opts ...Option) *Client {
	c := &Client{db: db, owner: objectstore.DefaultOwner, now: time.Now}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) CreateBucket(ctx context.Context, bucket string) error {
	if bucket == "" {
		return errs.New(errs.ErrKindInvalidInput, "bucket name must not be empty")
	}
	err := c.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err
	})
	if err != nil {
		return errs.Wrap(errs.ErrKindOperationFailed, "bolt: failed to create bucket "+bucket, err)
	}
	return nil
}

func bucketOf(tx *bolt.Tx, name string) (*bolt.Bucket, error) {
	b := tx.Bucket([]byte(name))
	if b == nil {
		return nil, errs.Newf(errs.ErrKindNotFound, "bucket %q does not exist", name)
	}
	return b, nil
}

func load(b *bolt.Bucket, bucket, key string) (*record, error) {
	raw := b.Get([]byte(key))
	if raw == nil {
		return nil, errs.Newf(errs.ErrKindNotFound, "object %q not found in bucket %q", key, bucket)
	}
	return decode(raw)
}

// decode copies raw first: bolt memory is only valid inside the transaction.
func decode(raw []byte) (*record, error) {
	var r record
	if err := bson.Unmarshal(append([]byte(nil), raw...), &r); err != nil {
		return nil, errs.Wrap(errs.ErrKindOperationFailed, "bolt: corrupt object record", err)
	}
	return &r, nil
}

func store(b *bolt.Bucket, r *record) error {
	raw, err := bson.Marshal(r)
	if err != nil {
		return errs.Wrap(errs.ErrKindOperationFailed, "bolt: failed to encode object record", err)
	}
	return b.Put([]byte(r.Key), raw)
}

// view and update pass *errs.Error values through and wrap everything
// else coming out of bolt.
func (c *Client) view(fn func(tx *bolt.Tx) error) error {
	return wrap(c.db.View(fn))
}

func (c *Client) update(fn func(tx *bolt.Tx) error) error {
	return wrap(c.db.Update(fn))
}

func wrap(err error) error {
	if err == nil || errs.KindOf(err) != errs.ErrKindUnknown {
		return err
	}
	if err == bolt.ErrDatabaseNotOpen {
		return errs.Wrap(errs.ErrKindConnectionFailed, "bolt: database is closed", err)
	}
	return errs.Wrap(errs.ErrKindOperationFailed, "bolt: transaction failed", err)
}

func (c *Client) PutObject(ctx context.Context, in *objectstore.PutInput) (*objectstore.Object, error) {
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

	r := &record{
		Key:                in.Key,
		Data:               data,
		ContentType:        in.Options.ContentType,
		CacheControl:       in.Options.CacheControl,
		ContentDisposition: in.Options.ContentDisposition,
		ContentEncoding:    in.Options.ContentEncoding,
		Metadata:           in.Options.Metadata,
		StorageClass:       in.Options.StorageClass,
		ETag:               objectstore.ETagOf(data),
		ACL:                string(objectstore.NormalizeACL(in.Options.ACL)),
		// bson keeps millisecond precision.
		Modified: c.now().UTC().Truncate(time.Millisecond),
	}
	if r.ContentType == "" {
		r.ContentType = "binary/octet-stream"
	}
	if r.StorageClass == "" {
		r.StorageClass = "STANDARD"
	}

	err := c.update(func(tx *bolt.Tx) error {
		b, err := bucketOf(tx, in.Bucket)
		if err != nil {
			return err
		}
		return store(b, r)
	})
	if err != nil {
		return nil, err
	}

	out := r.object(false)
	out.Size = 0
	return out, nil
}

func (c *Client) GetObject(ctx context.Context, bucket, key string, _ objectstore.Options) (*objectstore.Object, error) {
	var r *record
	err := c.view(func(tx *bolt.Tx) error {
		b, err := bucketOf(tx, bucket)
		if err != nil {
			return err
		}
		r, err = load(b, bucket, key)
		return err
	})
	if err != nil {
		return nil, err
	}
	return r.object(true), nil
}

func (c *Client) HeadObject(ctx context.Context, bucket, key string, _ objectstore.Options) (*objectstore.Object, error) {
	obj, err := c.GetObject(ctx, bucket, key, objectstore.Options{})
	if err != nil {
		return nil, err
	}
	obj.Body = nil
	obj.Size = 0
	return obj, nil
}

func (c *Client) DeleteObject(ctx context.Context, bucket, key string) error {
	return c.update(func(tx *bolt.Tx) error {
		b, err := bucketOf(tx, bucket)
		if err != nil {
			return err
		}
		return b.Delete([]byte(key))
	})
}

func (c *Client) CopyObject(ctx context.Context, in *objectstore.CopyInput) (*objectstore.Object, error) {
	var cp *record
	err := c.update(func(tx *bolt.Tx) error {
		src, err := bucketOf(tx, in.SourceBucket)
		if err != nil {
			return err
		}
		dst, err := bucketOf(tx, in.Bucket)
		if err != nil {
			return err
		}
		if cp, err = load(src, in.SourceBucket, in.SourceKey); err != nil {
			return err
		}

		cp.Key = in.Key
		cp.ACL = string(objectstore.NormalizeACL(in.Options.ACL))
		cp.Modified = c.now().UTC().Truncate(time.Millisecond)
		if in.Options.Metadata != nil || in.Options.ContentType != "" {
			cp.Metadata = in.Options.Metadata
			if in.Options.ContentType != "" {
				cp.ContentType = in.Options.ContentType
			}
		}
		if in.Options.StorageClass != "" {
			cp.StorageClass = in.Options.StorageClass
		}
		return store(dst, cp)
	})
	if err != nil {
		return nil, err
	}
	return &objectstore.Object{Key: in.Key, ETag: cp.ETag, LastModified: cp.Modified}, nil
}

func (c *Client) ListObjects(ctx context.Context, in *objectstore.ListInput) (*objectstore.ListPage, error) {
	pb := objectstore.NewPageBuilder(in)
	err := c.view(func(tx *bolt.Tx) error {
		b, err := bucketOf(tx, in.Bucket)
		if err != nil {
			return err
		}

		cur := b.Cursor()
		for k, v := cur.Seek([]byte(pb.Start())); k != nil; k, v = cur.Next() {
			if err := ctx.Err(); err != nil {
				return errs.Wrap(errs.ErrKindTimeout, "list objects cancelled", err)
			}
			r, err := decode(v)
			if err != nil {
				return err
			}
			obj := r.object(false)
			obj.ContentLength = 0
			if !pb.Add(string(k), obj) {
				break
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pb.Page(), nil
}

func (c *Client) GetObjectACL(ctx context.Context, bucket, key string) (*objectstore.AccessControlList, error) {
	var acl string
	err := c.view(func(tx *bolt.Tx) error {
		b, err := bucketOf(tx, bucket)
		if err != nil {
			return err
		}
		r, err := load(b, bucket, key)
		if err != nil {
			return err
		}
		acl = r.ACL
		return nil
	})
	if err != nil {
		return nil, err
	}
	return objectstore.CannedGrants(c.owner, objectstore.NormalizeACL(acl)), nil
}

func (c *Client) PutObjectACL(ctx context.Context, bucket, key string, acl objectstore.CannedACL) error {
	return c.update(func(tx *bolt.Tx) error {
		b, err := bucketOf(tx, bucket)
		if err != nil {
			return err
		}
		r, err := load(b, bucket, key)
		if err != nil {
			return err
		}
		r.ACL = string(objectstore.NormalizeACL(string(acl)))
		return store(b, r)
	})
}

func (c *Client) Close() error {
	return c.db.Close()
}
