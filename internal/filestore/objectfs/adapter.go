// Package objectfs implements filestore.Adapter on top of a flat
// objectstore.Client.
//
// Directories do not exist in the object store. They are emulated: a
// directory exists when a zero-length marker object "dir/" exists or when
// any key starts with "dir/". Rename is copy followed by delete and is not
// atomic; see RenameError.
//
// Usage:
//
//	client := memory.New(memory.WithBuckets("media"))
//	fs := objectfs.New(client, "media",
//		objectfs.WithPrefix("uploads"),
//		objectfs.WithDefaultOptions(filestore.Config{"StorageClass": "STANDARD_IA"}),
//	)
//
//	if _, err := fs.Write(ctx, "test.txt", []byte("HOLA MUNDO"), nil); err != nil { ... }
//	entry, err := fs.Read(ctx, "test.txt")
package objectfs

import (
	"sync"

	"github.com/koustreak/bucketfs/internal/filestore"
	"github.com/koustreak/bucketfs/internal/logger"
	"github.com/koustreak/bucketfs/internal/objectstore"
)

var _ filestore.Adapter = (*Adapter)(nil)

// Adapter maps filestore paths onto keys of one bucket. It is safe for
// concurrent use; operations on the same path are not serialised.
type Adapter struct {
	filestore.PathPrefixer

	client   objectstore.Client
	defaults filestore.Config
	log      *logger.Logger
	pageSize int

	mu     sync.RWMutex
	bucket string
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithPrefix roots every path under prefix.
func WithPrefix(prefix string) Option {
	return func(a *Adapter) {
		a.PathPrefixer = filestore.NewPathPrefixer(prefix)
	}
}

// WithDefaultOptions sets options merged into every request with the
// lowest precedence. cfg is copied.
func WithDefaultOptions(cfg filestore.Config) Option {
	return func(a *Adapter) {
		a.defaults = cfg.Clone()
	}
}

// WithLogger sets the logger used for round-trip and rename tracing.
func WithLogger(l *logger.Logger) Option {
	return func(a *Adapter) {
		if l != nil {
			a.log = l
		}
	}
}

// WithPageSize sets the MaxKeys sent with every listing request.
func WithPageSize(n int) Option {
	return func(a *Adapter) {
		if n > 0 {
			a.pageSize = n
		}
	}
}

// New returns an adapter over bucket. Without options the prefix is empty,
// there are no default options and nothing is logged.
func New(client objectstore.Client, bucket string, opts ...Option) *Adapter {
	a := &Adapter{
		client:   client,
		bucket:   bucket,
		defaults: filestore.Config{},
		log:      logger.Nop(),
		pageSize: objectstore.DefaultMaxKeys,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Bucket returns the bucket operations are issued against.
func (a *Adapter) Bucket() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.bucket
}

// SetBucket switches the bucket for subsequent operations.
func (a *Adapter) SetBucket(bucket string) {
	a.mu.Lock()
	a.bucket = bucket
	a.mu.Unlock()
}

// Client returns the underlying object store client.
func (a *Adapter) Client() objectstore.Client {
	return a.client
}

// DefaultOptions returns a copy of the adapter-wide default options.
func (a *Adapter) DefaultOptions() filestore.Config {
	return a.defaults.Clone()
}

func (a *Adapter) trace(op, bucket, key string) {
	a.log.DebugWith("object store call", map[string]interface{}{
		"op":     op,
		"bucket": bucket,
		"key":    key,
	})
}
