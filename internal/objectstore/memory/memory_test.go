package memory

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/bucketfs/internal/errs"
	"github.com/koustreak/bucketfs/internal/objectstore"
)

const bucket = "test"

func put(t *testing.T, c *Client, key, body string, opts objectstore.Options) {
	t.Helper()
	_, err := c.PutObject(context.Background(), &objectstore.PutInput{
		Bucket: bucket, Key: key, Body: strings.NewReader(body), Options: opts,
	})
	require.NoError(t, err)
}

func TestPutGetHead(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := New(WithBuckets(bucket), WithClock(func() time.Time { return fixed }))

	put(t, c, "a/b.txt", "HOLA MUNDO", objectstore.Options{
		ContentType: "text/plain",
		Metadata:    map[string]string{"k": "v"},
	})

	obj, err := c.GetObject(ctx, bucket, "a/b.txt", objectstore.Options{})
	require.NoError(t, err)
	data, err := io.ReadAll(obj.Body)
	require.NoError(t, err)
	require.NoError(t, obj.Body.Close())
	assert.Equal(t, "HOLA MUNDO", string(data))
	assert.Equal(t, int64(10), obj.ContentLength)

	head, err := c.HeadObject(ctx, bucket, "a/b.txt", objectstore.Options{})
	require.NoError(t, err)
	assert.Nil(t, head.Body)
	assert.Equal(t, "text/plain", head.ContentType)
	assert.Equal(t, map[string]string{"k": "v"}, head.Metadata)
	assert.Equal(t, "STANDARD", head.StorageClass)
	assert.Equal(t, fixed, head.LastModified)
	assert.Equal(t, objectstore.ETagOf([]byte("HOLA MUNDO")), head.ETag)
}

func TestNotFound(t *testing.T) {
	ctx := context.Background()
	c := New(WithBuckets(bucket))

	_, err := c.HeadObject(ctx, bucket, "missing", objectstore.Options{})
	assert.True(t, errs.IsNotFound(err))

	_, err = c.GetObject(ctx, "nobucket", "x", objectstore.Options{})
	assert.True(t, errs.IsNotFound(err))

	assert.NoError(t, c.DeleteObject(ctx, bucket, "missing"))
}

func TestContentLengthTruncatesBody(t *testing.T) {
	c := New(WithBuckets(bucket))
	n := int64(4)
	put(t, c, "k", "HOLA MUNDO", objectstore.Options{ContentLength: &n})

	head, err := c.HeadObject(context.Background(), bucket, "k", objectstore.Options{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), head.ContentLength)
}

func TestCopyObject(t *testing.T) {
	ctx := context.Background()
	c := New(WithBuckets(bucket, "other"))
	put(t, c, "src", "data", objectstore.Options{ACL: "public-read", Metadata: map[string]string{"a": "1"}})

	_, err := c.CopyObject(ctx, &objectstore.CopyInput{
		Bucket: "other", Key: "dst", SourceBucket: bucket, SourceKey: "src",
		Options: objectstore.Options{ACL: "private"},
	})
	require.NoError(t, err)

	head, err := c.HeadObject(ctx, "other", "dst", objectstore.Options{})
	require.NoError(t, err)
	assert.Equal(t, int64(4), head.ContentLength)
	assert.Equal(t, map[string]string{"a": "1"}, head.Metadata)

	acl, err := c.GetObjectACL(ctx, "other", "dst")
	require.NoError(t, err)
	assert.Len(t, acl.Grants, 1, "copy takes the ACL of the request")

	_, err = c.CopyObject(ctx, &objectstore.CopyInput{Bucket: bucket, Key: "x", SourceBucket: bucket, SourceKey: "nope"})
	assert.True(t, errs.IsNotFound(err))
}

func TestACL(t *testing.T) {
	ctx := context.Background()
	c := New(WithBuckets(bucket))
	put(t, c, "k", "", objectstore.Options{})

	acl, err := c.GetObjectACL(ctx, bucket, "k")
	require.NoError(t, err)
	assert.Len(t, acl.Grants, 1)

	require.NoError(t, c.PutObjectACL(ctx, bucket, "k", objectstore.ACLPublicRead))
	acl, err = c.GetObjectACL(ctx, bucket, "k")
	require.NoError(t, err)
	require.Len(t, acl.Grants, 2)
	assert.Equal(t, objectstore.AllUsersURI, acl.Grants[1].Grantee.URI)
}

func TestListObjects(t *testing.T) {
	ctx := context.Background()
	c := New(WithBuckets(bucket))
	for _, k := range []string{"root/a.txt", "root/dir/", "root/dir/b.txt", "root/dir/c/d.txt", "zzz"} {
		put(t, c, k, k, objectstore.Options{})
	}

	tests := []struct {
		name string
		in   objectstore.ListInput
		want []string
	}{
		{"shallow", objectstore.ListInput{Prefix: "root/", Delimiter: "/"}, []string{"root/a.txt", "root/dir/"}},
		{"recursive", objectstore.ListInput{Prefix: "root/"}, []string{"root/a.txt", "root/dir/", "root/dir/b.txt", "root/dir/c/d.txt"}},
		{"subdir", objectstore.ListInput{Prefix: "root/dir/", Delimiter: "/"}, []string{"root/dir/", "root/dir/b.txt", "root/dir/c/"}},
		{"no match", objectstore.ListInput{Prefix: "nothing/"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := tt.in
			in.Bucket = bucket
			page, err := c.ListObjects(ctx, &in)
			require.NoError(t, err)

			got := []string{}
			for _, r := range page.Rows {
				got = append(got, r.Key+r.Prefix)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListObjects_Pages(t *testing.T) {
	ctx := context.Background()
	c := New(WithBuckets(bucket))
	for _, k := range []string{"p/1", "p/2", "p/3", "p/4", "p/5"} {
		put(t, c, k, "", objectstore.Options{})
	}

	var keys []string
	in := &objectstore.ListInput{Bucket: bucket, Prefix: "p/", MaxKeys: 2}
	pages := 0
	for {
		page, err := c.ListObjects(ctx, in)
		require.NoError(t, err)
		pages++
		for _, r := range page.Rows {
			keys = append(keys, r.Key)
		}
		if !page.IsTruncated {
			break
		}
		in.ContinuationToken = page.NextContinuationToken
	}

	assert.Equal(t, 3, pages)
	assert.Equal(t, []string{"p/1", "p/2", "p/3", "p/4", "p/5"}, keys)
}

func TestCreateBucket(t *testing.T) {
	ctx := context.Background()
	c := New()

	_, err := c.ListObjects(ctx, &objectstore.ListInput{Bucket: "b"})
	assert.True(t, errs.IsNotFound(err))

	require.NoError(t, c.CreateBucket(ctx, "b"))
	require.NoError(t, c.CreateBucket(ctx, "b"))
	assert.True(t, errs.IsInvalidInput(c.CreateBucket(ctx, "")))

	page, err := c.ListObjects(ctx, &objectstore.ListInput{Bucket: "b"})
	require.NoError(t, err)
	assert.Empty(t, page.Rows)
}
