// Package minio provides a MinIO implementation of objectstore.Client.
//
// Usage:
//
//	cfg := objectstore.DefaultConfig("localhost:9000", "minioadmin", "minioadmin")
//	client, err := minio.New(ctx, cfg)
//	if err != nil { ... }
//	defer client.Close()
//
//	page, err := client.ListObjects(ctx, &objectstore.ListInput{Bucket: "media", Delimiter: "/"})
package minio

import (
	"context"
	"strings"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/koustreak/bucketfs/internal/errs"
	"github.com/koustreak/bucketfs/internal/objectstore"
)

// Client is a MinIO implementation of objectstore.Client.
// It is safe for concurrent use by multiple goroutines.
type Client struct {
	client *miniogo.Client
}

var (
	_ objectstore.Client        = (*Client)(nil)
	_ objectstore.BucketCreator = (*Client)(nil)
)

// New connects to MinIO using the provided Config and returns a Client.
// It calls Ping to validate the connection before returning.
func New(ctx context.Context, cfg *objectstore.Config) (*Client, error) {
	lookup := miniogo.BucketLookupAuto
	if cfg.UsePathStyle {
		lookup = miniogo.BucketLookupPath
	}

	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       cfg.UseSSL,
		Region:       cfg.Region,
		BucketLookup: lookup,
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "failed to create minio client", err)
	}

	c := &Client{client: client}

	if err := c.Ping(ctx); err != nil {
		return nil, err
	}

	return c, nil
}

// Ping verifies the MinIO server is reachable by listing buckets.
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.client.ListBuckets(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

// Close is a no-op for MinIO: the SDK client holds no persistent connections.
func (c *Client) Close() error {
	return nil
}

// CreateBucket creates bucket unless it already exists.
func (c *Client) CreateBucket(ctx context.Context, bucket string) error {
	exists, err := c.client.BucketExists(ctx, bucket)
	if err != nil {
		return mapError(err, "failed to check bucket")
	}
	if exists {
		return nil
	}
	if err := c.client.MakeBucket(ctx, bucket, miniogo.MakeBucketOptions{}); err != nil {
		return mapError(err, "failed to create bucket")
	}
	return nil
}

// PutObject uploads in.Body. Unless ContentLength is given the size is
// taken from readers that report one, else the SDK streams the body.
func (c *Client) PutObject(ctx context.Context, in *objectstore.PutInput) (*objectstore.Object, error) {
	opts, err := putOptions(in.Options)
	if err != nil {
		return nil, err
	}

	body := in.Body
	if body == nil {
		body = strings.NewReader("")
	}
	size := objectSize(in.Options)
	if size < 0 {
		if l, ok := body.(interface{ Len() int }); ok {
			size = int64(l.Len())
		}
	}

	info, err := c.client.PutObject(ctx, in.Bucket, in.Key, body, size, opts)
	if err != nil {
		return nil, mapError(err, "failed to put object")
	}

	return &objectstore.Object{
		Key:           in.Key,
		ContentLength: info.Size,
		ContentType:   in.Options.ContentType,
		Metadata:      in.Options.Metadata,
		StorageClass:  in.Options.StorageClass,
		ETag:          info.ETag,
		VersionID:     info.VersionID,
		LastModified:  info.LastModified,
	}, nil
}

// GetObject opens a streaming handle to the object at key inside bucket.
// The caller MUST close Object.Body after reading.
func (c *Client) GetObject(ctx context.Context, bucket, key string, opts objectstore.Options) (*objectstore.Object, error) {
	getOpts, err := getOptions(opts)
	if err != nil {
		return nil, err
	}

	obj, err := c.client.GetObject(ctx, bucket, key, getOpts)
	if err != nil {
		return nil, mapError(err, "failed to get object")
	}

	stat, err := obj.Stat()
	if err != nil {
		obj.Close()
		return nil, mapError(err, "failed to stat object after get")
	}

	out := fromInfo(stat)
	out.Body = obj
	return out, nil
}

// HeadObject returns metadata for the object at key inside bucket
// without downloading its content.
func (c *Client) HeadObject(ctx context.Context, bucket, key string, opts objectstore.Options) (*objectstore.Object, error) {
	statOpts, err := getOptions(opts)
	if err != nil {
		return nil, err
	}

	stat, err := c.client.StatObject(ctx, bucket, key, statOpts)
	if err != nil {
		return nil, mapError(err, "failed to stat object")
	}
	return fromInfo(stat), nil
}

func (c *Client) DeleteObject(ctx context.Context, bucket, key string) error {
	if err := c.client.RemoveObject(ctx, bucket, key, miniogo.RemoveObjectOptions{}); err != nil {
		return mapError(err, "failed to delete object")
	}
	return nil
}

func (c *Client) CopyObject(ctx context.Context, in *objectstore.CopyInput) (*objectstore.Object, error) {
	dst, err := copyDest(in)
	if err != nil {
		return nil, err
	}
	src, err := copySrc(in)
	if err != nil {
		return nil, err
	}

	info, err := c.client.CopyObject(ctx, dst, src)
	if err != nil {
		return nil, mapError(err, "failed to copy object")
	}
	return &objectstore.Object{
		Key:          in.Key,
		ETag:         info.ETag,
		VersionID:    info.VersionID,
		LastModified: info.LastModified,
	}, nil
}

// ListObjects returns one page of rows. minio-go hides continuation tokens,
// so a page resumes with StartAfter set to the last row of the previous one;
// reading one row past the limit tells whether the listing is truncated.
func (c *Client) ListObjects(ctx context.Context, in *objectstore.ListInput) (*objectstore.ListPage, error) {
	if in.Delimiter != "" && in.Delimiter != "/" {
		return nil, errs.Newf(errs.ErrKindNotSupported, "minio: delimiter %q is not supported", in.Delimiter)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	limit := in.Limit()
	listOpts := miniogo.ListObjectsOptions{
		Prefix:     in.Prefix,
		Recursive:  in.Delimiter == "",
		StartAfter: in.ContinuationToken,
		MaxKeys:    limit,
	}

	page := &objectstore.ListPage{Rows: []*objectstore.Object{}}
	last := ""
	for info := range c.client.ListObjects(ctx, in.Bucket, listOpts) {
		if info.Err != nil {
			return nil, mapError(info.Err, "failed to list objects")
		}
		// A common prefix used as StartAfter is reported again.
		if in.ContinuationToken != "" && info.Key == in.ContinuationToken {
			continue
		}

		if len(page.Rows) == limit {
			page.IsTruncated = true
			page.NextContinuationToken = last
			break
		}

		var row *objectstore.Object
		if isCommonPrefix(info, in.Delimiter) {
			row = &objectstore.Object{Prefix: info.Key}
		} else {
			row = fromInfo(info)
			row.ContentLength = 0
		}
		page.Rows = append(page.Rows, row)
		last = info.Key
	}
	return page, nil
}

// GetObjectACL reads the object's grants.
func (c *Client) GetObjectACL(ctx context.Context, bucket, key string) (*objectstore.AccessControlList, error) {
	info, err := c.client.GetObjectACL(ctx, bucket, key)
	if err != nil {
		return nil, mapError(err, "failed to get object acl")
	}

	acl := &objectstore.AccessControlList{Owner: info.Owner.ID}
	for _, g := range info.Grant {
		grantee := objectstore.Grantee{
			ID:          g.Grantee.ID,
			DisplayName: g.Grantee.DisplayName,
			URI:         g.Grantee.URI,
			Type:        "CanonicalUser",
		}
		if grantee.URI != "" {
			grantee.Type = "Group"
		}
		acl.Grants = append(acl.Grants, objectstore.Grant{Grantee: grantee, Permission: g.Permission})
	}
	return acl, nil
}

// PutObjectACL is not available through minio-go.
func (c *Client) PutObjectACL(ctx context.Context, bucket, key string, acl objectstore.CannedACL) error {
	return errs.New(errs.ErrKindNotSupported, "minio: setting object ACLs is not supported")
}

// isCommonPrefix tells apart common-prefix rows from directory marker
// objects: both end with the delimiter, only markers carry an ETag.
func isCommonPrefix(info miniogo.ObjectInfo, delimiter string) bool {
	return delimiter != "" && strings.HasSuffix(info.Key, delimiter) && info.ETag == "" && info.Size == 0
}

func fromInfo(info miniogo.ObjectInfo) *objectstore.Object {
	md := make(map[string]string, len(info.UserMetadata))
	for k, v := range info.UserMetadata {
		md[k] = v
	}
	if len(md) == 0 {
		md = nil
	}
	return &objectstore.Object{
		Key:           info.Key,
		ContentLength: info.Size,
		Size:          info.Size,
		ContentType:   info.ContentType,
		Metadata:      md,
		StorageClass:  info.StorageClass,
		ETag:          info.ETag,
		VersionID:     info.VersionID,
		LastModified:  info.LastModified,
	}
}
