// Package sqlstore is an objectstore.Client kept in a relational database.
// PostgreSQL (pgx), MySQL and SQLite are supported; the schema is created
// on Open by embedded goose migrations.
//
// Keys are stored with byte-wise collation so that ordered scans match S3
// listing order.
package sqlstore

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"time"

	"github.com/koustreak/bucketfs/internal/errs"
	"github.com/koustreak/bucketfs/internal/logger"
	"github.com/koustreak/bucketfs/internal/objectstore"
)

const maxListBatch = 1000

const (
	sqlBucketExists = `SELECT 1 FROM buckets WHERE name = ?`

	sqlSelectObject = `SELECT object_key, body, size, content_type, cache_control, content_disposition,
		content_encoding, metadata, storage_class, etag, acl, modified_at
		FROM objects WHERE bucket = ? AND object_key = ?`

	sqlHeadObject = `SELECT object_key, size, content_type, metadata, storage_class, etag, acl, modified_at
		FROM objects WHERE bucket = ? AND object_key = ?`

	sqlListFrom = `SELECT object_key, size, content_type, metadata, storage_class, etag, acl, modified_at
		FROM objects WHERE bucket = ? AND object_key >= ? ORDER BY object_key LIMIT ?`

	sqlListAfter = `SELECT object_key, size, content_type, metadata, storage_class, etag, acl, modified_at
		FROM objects WHERE bucket = ? AND object_key > ? ORDER BY object_key LIMIT ?`

	sqlDeleteObject = `DELETE FROM objects WHERE bucket = ? AND object_key = ?`

	sqlUpdateACL = `UPDATE objects SET acl = ? WHERE bucket = ? AND object_key = ?`
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type objectRow struct {
	key                string
	body               []byte
	size               int64
	contentType        string
	cacheControl       string
	contentDisposition string
	contentEncoding    string
	metadata           string
	storageClass       string
	etag               string
	acl                string
	modified           int64
}

func (r *objectRow) args(bucket string) []any {
	return []any{
		bucket, r.key, r.body, r.size, r.contentType, r.cacheControl,
		r.contentDisposition, r.contentEncoding, r.metadata, r.storageClass,
		r.etag, r.acl, r.modified,
	}
}

func (r *objectRow) object() *objectstore.Object {
	obj := &objectstore.Object{
		Key:           r.key,
		ContentLength: r.size,
		ContentType:   r.contentType,
		Metadata:      decodeMeta(r.metadata),
		StorageClass:  r.storageClass,
		ETag:          r.etag,
		LastModified:  time.UnixMilli(r.modified).UTC(),
	}
	if r.body != nil {
		obj.Body = io.NopCloser(bytes.NewReader(r.body))
	}
	return obj
}

// Client stores objects in a SQL database.
type Client struct {
	db    *sql.DB
	d     *dialect
	owner string
	now   func() time.Time
	log   *logger.Logger
}

var (
	_ objectstore.Client        = (*Client)(nil)
	_ objectstore.BucketCreator = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for migration output.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithClock overrides the time source used for LastModified.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// Open connects to the database named by provider (postgres, mysql or
// sqlite) and migrates it to the current schema. For sqlite, dsn may be a
// plain file path.
func Open(ctx context.Context, provider objectstore.Provider, dsn string, opts ...Option) (*Client, error) {
	var d *dialect
	switch provider {
	case objectstore.ProviderPostgres:
		d = dialectPostgres
	case objectstore.ProviderMySQL:
		d = dialectMySQL
	case objectstore.ProviderSQLite:
		d = dialectSQLite
	default:
		return nil, errs.Newf(errs.ErrKindInvalidInput, "sqlstore: unsupported provider %q", provider)
	}
	if dsn == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "sqlstore: dsn must not be empty")
	}

	c := &Client{d: d, owner: objectstore.DefaultOwner, now: time.Now, log: logger.Nop()}
	for _, o := range opts {
		o(c)
	}

	db, err := buildPool(ctx, d, dsn)
	if err != nil {
		return nil, err
	}
	if err := migrate(ctx, db, d, c.log); err != nil {
		db.Close()
		return nil, err
	}
	c.db = db
	return c, nil
}

func (c *Client) nowMillis() int64 {
	return c.now().UTC().UnixMilli()
}

func (c *Client) CreateBucket(ctx context.Context, bucket string) error {
	if bucket == "" {
		return errs.New(errs.ErrKindInvalidInput, "bucket name must not be empty")
	}
	_, err := c.db.ExecContext(ctx, c.d.rebind(c.d.bucketSkip), bucket, c.nowMillis())
	return mapError(err)
}

func (c *Client) bucketExists(ctx context.Context, q querier, bucket string) error {
	var one int
	err := q.QueryRowContext(ctx, c.d.rebind(sqlBucketExists), bucket).Scan(&one)
	if err == sql.ErrNoRows {
		return errs.Newf(errs.ErrKindNotFound, "bucket %q does not exist", bucket)
	}
	return mapError(err)
}

// load reads one object row. Without body only the listing columns are read.
func (c *Client) load(ctx context.Context, q querier, bucket, key string, withBody bool) (*objectRow, error) {
	var r objectRow
	var err error
	if withBody {
		err = q.QueryRowContext(ctx, c.d.rebind(sqlSelectObject), bucket, key).Scan(
			&r.key, &r.body, &r.size, &r.contentType, &r.cacheControl, &r.contentDisposition,
			&r.contentEncoding, &r.metadata, &r.storageClass, &r.etag, &r.acl, &r.modified,
		)
		if err == nil && r.body == nil {
			r.body = []byte{}
		}
	} else {
		err = q.QueryRowContext(ctx, c.d.rebind(sqlHeadObject), bucket, key).Scan(
			&r.key, &r.size, &r.contentType, &r.metadata, &r.storageClass, &r.etag, &r.acl, &r.modified,
		)
	}
	if err == sql.ErrNoRows {
		if berr := c.bucketExists(ctx, q, bucket); berr != nil {
			return nil, berr
		}
		return nil, errs.Newf(errs.ErrKindNotFound, "object %q not found in bucket %q", key, bucket)
	}
	if err != nil {
		return nil, mapError(err)
	}
	return &r, nil
}

func (c *Client) PutObject(ctx context.Context, in *objectstore.PutInput) (*objectstore.Object, error) {
	if in.Key == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "object key must not be empty")
	}

	data := []byte{}
	if in.Body != nil {
		var err error
		if data, err = io.ReadAll(in.Body); err != nil {
			return nil, errs.Wrap(errs.ErrKindOperationFailed, "failed to read object body", err)
		}
		if data == nil {
			data = []byte{}
		}
	}
	if n := in.Options.ContentLength; n != nil && *n >= 0 && *n < int64(len(data)) {
		data = data[:*n]
	}

	r := &objectRow{
		key:                in.Key,
		body:               data,
		size:               int64(len(data)),
		contentType:        in.Options.ContentType,
		cacheControl:       in.Options.CacheControl,
		contentDisposition: in.Options.ContentDisposition,
		contentEncoding:    in.Options.ContentEncoding,
		metadata:           encodeMeta(in.Options.Metadata),
		storageClass:       in.Options.StorageClass,
		etag:               objectstore.ETagOf(data),
		acl:                string(objectstore.NormalizeACL(in.Options.ACL)),
		modified:           c.nowMillis(),
	}
	if r.contentType == "" {
		r.contentType = "binary/octet-stream"
	}
	if r.storageClass == "" {
		r.storageClass = "STANDARD"
	}

	if err := c.bucketExists(ctx, c.db, in.Bucket); err != nil {
		return nil, err
	}
	if _, err := c.db.ExecContext(ctx, c.d.rebind(c.d.upsert), r.args(in.Bucket)...); err != nil {
		return nil, mapError(err)
	}

	r.body = nil
	return r.object(), nil
}

func (c *Client) GetObject(ctx context.Context, bucket, key string, _ objectstore.Options) (*objectstore.Object, error) {
	r, err := c.load(ctx, c.db, bucket, key, true)
	if err != nil {
		return nil, err
	}
	return r.object(), nil
}

func (c *Client) HeadObject(ctx context.Context, bucket, key string, _ objectstore.Options) (*objectstore.Object, error) {
	r, err := c.load(ctx, c.db, bucket, key, false)
	if err != nil {
		return nil, err
	}
	return r.object(), nil
}

func (c *Client) DeleteObject(ctx context.Context, bucket, key string) error {
	if err := c.bucketExists(ctx, c.db, bucket); err != nil {
		return err
	}
	_, err := c.db.ExecContext(ctx, c.d.rebind(sqlDeleteObject), bucket, key)
	return mapError(err)
}

func (c *Client) CopyObject(ctx context.Context, in *objectstore.CopyInput) (*objectstore.Object, error) {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, mapError(err)
	}
	defer tx.Rollback() //nolint:errcheck

	r, err := c.load(ctx, tx, in.SourceBucket, in.SourceKey, true)
	if err != nil {
		return nil, err
	}
	if err := c.bucketExists(ctx, tx, in.Bucket); err != nil {
		return nil, err
	}

	r.key = in.Key
	r.acl = string(objectstore.NormalizeACL(in.Options.ACL))
	r.modified = c.nowMillis()
	if in.Options.Metadata != nil || in.Options.ContentType != "" {
		r.metadata = encodeMeta(in.Options.Metadata)
		if in.Options.ContentType != "" {
			r.contentType = in.Options.ContentType
		}
	}
	if in.Options.StorageClass != "" {
		r.storageClass = in.Options.StorageClass
	}

	if _, err := tx.ExecContext(ctx, c.d.rebind(c.d.upsert), r.args(in.Bucket)...); err != nil {
		return nil, mapError(err)
	}
	if err := tx.Commit(); err != nil {
		return nil, mapError(err)
	}

	return &objectstore.Object{
		Key:          in.Key,
		ETag:         r.etag,
		LastModified: time.UnixMilli(r.modified).UTC(),
	}, nil
}

func (c *Client) ListObjects(ctx context.Context, in *objectstore.ListInput) (*objectstore.ListPage, error) {
	if err := c.bucketExists(ctx, c.db, in.Bucket); err != nil {
		return nil, err
	}

	batch := in.Limit() + 1
	if batch > maxListBatch {
		batch = maxListBatch
	}

	pb := objectstore.NewPageBuilder(in)
	query, from := sqlListFrom, pb.Start()
	for {
		n, more, err := c.listBatch(ctx, query, in.Bucket, from, batch, pb)
		if err != nil {
			return nil, err
		}
		if !more || n < batch {
			break
		}
		query = sqlListAfter
		from = pb.LastSeen()
	}
	return pb.Page(), nil
}

// listBatch feeds up to limit rows starting at from into pb. more is false
// once pb refuses a row.
func (c *Client) listBatch(ctx context.Context, query, bucket, from string, limit int, pb *objectstore.PageBuilder) (n int, more bool, err error) {
	rows, err := c.db.QueryContext(ctx, c.d.rebind(query), bucket, from, limit)
	if err != nil {
		return 0, false, mapError(err)
	}
	defer rows.Close()

	more = true
	for rows.Next() {
		var r objectRow
		if err := rows.Scan(&r.key, &r.size, &r.contentType, &r.metadata, &r.storageClass, &r.etag, &r.acl, &r.modified); err != nil {
			return n, false, mapError(err)
		}
		n++
		obj := r.object()
		obj.Size, obj.ContentLength = r.size, 0
		if !pb.Add(r.key, obj) {
			more = false
			break
		}
	}
	if err := rows.Err(); err != nil {
		return n, false, mapError(err)
	}
	return n, more, nil
}

func (c *Client) GetObjectACL(ctx context.Context, bucket, key string) (*objectstore.AccessControlList, error) {
	r, err := c.load(ctx, c.db, bucket, key, false)
	if err != nil {
		return nil, err
	}
	return objectstore.CannedGrants(c.owner, objectstore.NormalizeACL(r.acl)), nil
}

func (c *Client) PutObjectACL(ctx context.Context, bucket, key string, acl objectstore.CannedACL) error {
	if _, err := c.load(ctx, c.db, bucket, key, false); err != nil {
		return err
	}
	_, err := c.db.ExecContext(ctx, c.d.rebind(sqlUpdateACL),
		string(objectstore.NormalizeACL(string(acl))), bucket, key)
	return mapError(err)
}

func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

func encodeMeta(m map[string]string) string {
	if len(m) == 0 {
		return "{}"
	}
	b, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(b)
}

func decodeMeta(s string) map[string]string {
	if s == "" || s == "{}" {
		return nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(s), &m); err != nil {
		return nil
	}
	return m
}
