// Package objectstore defines the flat key-value object store that the
// filestore adapters are built on.
//
// All providers (MinIO, AWS S3, in-memory, bolt, SQL, etc.) implement the Client
// interface. Callers depend only on this package, never on a specific
// provider package. Retry, timeout and authentication behaviour belongs to the
// provider and its SDK; nothing above this interface retries.
//
// Usage:
//
//	cfg := objectstore.DefaultConfig("localhost:9000", "minioadmin", "minioadmin")
//	client, err := open.Open(ctx, cfg)
//	if err != nil { ... }
//	defer client.Close()
//
//	page, err := client.ListObjects(ctx, &objectstore.ListInput{Bucket: "media", Delimiter: "/"})
package objectstore

import "context"

// Client is the single interface all object store providers must implement.
//
// Every method returns *errs.Error values; a missing key or bucket is always
// reported with errs.ErrKindNotFound.
type Client interface {
	// PutObject writes the whole body under in.Key, replacing any existing object.
	PutObject(ctx context.Context, in *PutInput) (*Object, error)

	// GetObject opens the object at key. The caller MUST close Object.Body.
	// opts carries request-level options such as SSE-C keys.
	GetObject(ctx context.Context, bucket, key string, opts Options) (*Object, error)

	// HeadObject returns metadata for the object at key without transferring
	// its content. opts carries request-level options such as SSE-C keys.
	HeadObject(ctx context.Context, bucket, key string, opts Options) (*Object, error)

	// DeleteObject removes the object at key. Deleting a missing key is not an error.
	DeleteObject(ctx context.Context, bucket, key string) error

	// CopyObject performs a server-side copy.
	CopyObject(ctx context.Context, in *CopyInput) (*Object, error)

	// ListObjects returns one page of rows whose key starts with in.Prefix.
	ListObjects(ctx context.Context, in *ListInput) (*ListPage, error)

	// GetObjectACL returns the access-grant list of the object at key.
	GetObjectACL(ctx context.Context, bucket, key string) (*AccessControlList, error)

	// PutObjectACL replaces the object's grants with a canned ACL.
	PutObjectACL(ctx context.Context, bucket, key string, acl CannedACL) error

	// Close releases any held resources (connections, file handles).
	Close() error
}

// BucketCreator is implemented by providers that can create buckets on demand.
// The local providers (memory, bolt, SQL) implement it; cloud providers expect
// buckets to be provisioned out of band.
type BucketCreator interface {
	CreateBucket(ctx context.Context, bucket string) error
}
