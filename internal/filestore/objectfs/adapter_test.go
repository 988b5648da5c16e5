package objectfs

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/bucketfs/internal/filestore"
	"github.com/koustreak/bucketfs/internal/objectstore"
	"github.com/koustreak/bucketfs/internal/objectstore/memory"
)

const bucket = "test"

var fixedTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newStore() *memory.Client {
	return memory.New(
		memory.WithBuckets(bucket, "other"),
		memory.WithClock(func() time.Time { return fixedTime }),
	)
}

func newAdapter(t *testing.T, opts ...Option) (*Adapter, *memory.Client) {
	t.Helper()
	store := newStore()
	return New(store, bucket, opts...), store
}

// seed writes raw keys straight into the store, bypassing the adapter prefix.
func seed(t *testing.T, store objectstore.Client, keys ...string) {
	t.Helper()
	for _, k := range keys {
		_, err := store.PutObject(context.Background(), &objectstore.PutInput{
			Bucket: bucket,
			Key:    k,
			Body:   strings.NewReader(k),
		})
		require.NoError(t, err)
	}
}

// recordingClient remembers the inputs of writes and copies.
type recordingClient struct {
	objectstore.Client

	mu     sync.Mutex
	puts   []*objectstore.PutInput
	copies []*objectstore.CopyInput
}

func (r *recordingClient) PutObject(ctx context.Context, in *objectstore.PutInput) (*objectstore.Object, error) {
	r.mu.Lock()
	r.puts = append(r.puts, in)
	r.mu.Unlock()
	return r.Client.PutObject(ctx, in)
}

func (r *recordingClient) CopyObject(ctx context.Context, in *objectstore.CopyInput) (*objectstore.Object, error) {
	r.mu.Lock()
	r.copies = append(r.copies, in)
	r.mu.Unlock()
	return r.Client.CopyObject(ctx, in)
}

// faultyClient fails selected calls. A nil error field passes the call
// through; skipDelete turns DeleteObject into a silent no-op.
type faultyClient struct {
	objectstore.Client

	headErr    error
	listErr    error
	deleteErr  error
	copyErr    error
	aclErr     error
	skipDelete bool
}

func (f *faultyClient) HeadObject(ctx context.Context, b, key string, opts objectstore.Options) (*objectstore.Object, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	return f.Client.HeadObject(ctx, b, key, opts)
}

func (f *faultyClient) ListObjects(ctx context.Context, in *objectstore.ListInput) (*objectstore.ListPage, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.Client.ListObjects(ctx, in)
}

func (f *faultyClient) DeleteObject(ctx context.Context, b, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if f.skipDelete {
		return nil
	}
	return f.Client.DeleteObject(ctx, b, key)
}

func (f *faultyClient) CopyObject(ctx context.Context, in *objectstore.CopyInput) (*objectstore.Object, error) {
	if f.copyErr != nil {
		return nil, f.copyErr
	}
	return f.Client.CopyObject(ctx, in)
}

func (f *faultyClient) GetObjectACL(ctx context.Context, b, key string) (*objectstore.AccessControlList, error) {
	if f.aclErr != nil {
		return nil, f.aclErr
	}
	return f.Client.GetObjectACL(ctx, b, key)
}

func TestNew_Defaults(t *testing.T) {
	a, store := newAdapter(t)

	assert.Equal(t, bucket, a.Bucket())
	assert.Equal(t, "", a.Prefix())
	assert.Same(t, store, a.Client())
	assert.Empty(t, a.DefaultOptions())
	assert.Equal(t, objectstore.DefaultMaxKeys, a.pageSize)
}

func TestNew_Options(t *testing.T) {
	defaults := filestore.Config{"StorageClass": "GLACIER"}
	a, _ := newAdapter(t,
		WithPrefix("/root//media/"),
		WithDefaultOptions(defaults),
		WithPageSize(5),
		WithPageSize(0),
		WithLogger(nil),
	)

	assert.Equal(t, "root/media/", a.Prefix())
	assert.Equal(t, 5, a.pageSize)
	assert.NotNil(t, a.log)

	defaults["StorageClass"] = "changed"
	assert.Equal(t, "GLACIER", a.DefaultOptions()["StorageClass"])

	got := a.DefaultOptions()
	got["ACL"] = "public-read"
	assert.NotContains(t, a.DefaultOptions(), "ACL")
}

func TestSetBucket(t *testing.T) {
	ctx := context.Background()
	a, store := newAdapter(t)

	a.SetBucket("other")
	assert.Equal(t, "other", a.Bucket())

	_, err := a.Write(ctx, "x.txt", []byte("x"), nil)
	require.NoError(t, err)

	_, err = store.HeadObject(ctx, "other", "x.txt", objectstore.Options{})
	assert.NoError(t, err)
	_, err = store.HeadObject(ctx, bucket, "x.txt", objectstore.Options{})
	assert.Error(t, err)
}
