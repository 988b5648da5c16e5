package minio

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/bucketfs/internal/errs"
	"github.com/koustreak/bucketfs/internal/objectstore"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind errs.ErrKind
	}{
		{"deadline", context.DeadlineExceeded, errs.ErrKindTimeout},
		{"no such key", miniogo.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound}, errs.ErrKindNotFound},
		{"404 without code", miniogo.ErrorResponse{StatusCode: http.StatusNotFound}, errs.ErrKindNotFound},
		{"access denied", miniogo.ErrorResponse{Code: "AccessDenied", StatusCode: http.StatusForbidden}, errs.ErrKindPermissionDenied},
		{"bad name", miniogo.ErrorResponse{Code: "InvalidObjectName", StatusCode: http.StatusBadRequest}, errs.ErrKindInvalidInput},
		{"not implemented", miniogo.ErrorResponse{Code: "NotImplemented", StatusCode: http.StatusNotImplemented}, errs.ErrKindNotSupported},
		{"slow down", miniogo.ErrorResponse{Code: "SlowDown", StatusCode: http.StatusServiceUnavailable}, errs.ErrKindTimeout},
		{"server error", miniogo.ErrorResponse{Code: "InternalError", StatusCode: http.StatusInternalServerError}, errs.ErrKindOperationFailed},
		{"transport", errors.New("dial tcp: connection refused"), errs.ErrKindConnectionFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapError(tt.err, "op")
			require.Error(t, got)
			assert.Equal(t, tt.kind, errs.KindOf(got))
		})
	}

	assert.NoError(t, mapError(nil, "op"))
}

func TestPutOptions(t *testing.T) {
	exp := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC)
	opts, err := putOptions(objectstore.Options{
		ACL:          "public-read",
		ContentType:  "image/png",
		CacheControl: "max-age=60",
		Metadata:     map[string]string{"owner": "ops"},
		Tagging:      "env=prod&team=infra",
		StorageClass: "REDUCED_REDUNDANCY",
		Expires:      &exp,
	})
	require.NoError(t, err)

	assert.Equal(t, "image/png", opts.ContentType)
	assert.Equal(t, "max-age=60", opts.CacheControl)
	assert.Equal(t, "REDUCED_REDUNDANCY", opts.StorageClass)
	assert.Equal(t, exp, opts.Expires)
	assert.Equal(t, map[string]string{"owner": "ops", "x-amz-acl": "public-read"}, opts.UserMetadata)
	assert.Equal(t, map[string]string{"env": "prod", "team": "infra"}, opts.UserTags)
	assert.Nil(t, opts.ServerSideEncryption)
}

func TestPutOptions_Encryption(t *testing.T) {
	opts, err := putOptions(objectstore.Options{ServerSideEncryption: "AES256"})
	require.NoError(t, err)
	require.NotNil(t, opts.ServerSideEncryption)

	opts, err = putOptions(objectstore.Options{SSECustomerKey: "0123456789abcdef0123456789abcdef"})
	require.NoError(t, err)
	require.NotNil(t, opts.ServerSideEncryption)

	_, err = putOptions(objectstore.Options{SSECustomerKey: "short"})
	assert.True(t, errs.IsInvalidInput(err))
}

func TestGetOptions_CustomerKey(t *testing.T) {
	opts, err := getOptions(objectstore.Options{})
	require.NoError(t, err)
	assert.Nil(t, opts.ServerSideEncryption)

	// Server-managed encryption needs nothing on reads.
	opts, err = getOptions(objectstore.Options{ServerSideEncryption: "AES256"})
	require.NoError(t, err)
	assert.Nil(t, opts.ServerSideEncryption)

	opts, err = getOptions(objectstore.Options{SSECustomerAlgorithm: "AES256", SSECustomerKey: "0123456789abcdef0123456789abcdef"})
	require.NoError(t, err)
	require.NotNil(t, opts.ServerSideEncryption)
	assert.Equal(t, "SSE-C", string(opts.ServerSideEncryption.Type()))

	_, err = getOptions(objectstore.Options{SSECustomerKey: "short"})
	assert.True(t, errs.IsInvalidInput(err))
}

func TestCopySrc(t *testing.T) {
	in := &objectstore.CopyInput{Bucket: "b", Key: "new", SourceBucket: "b", SourceKey: "old"}
	src, err := copySrc(in)
	require.NoError(t, err)
	assert.Equal(t, "b", src.Bucket)
	assert.Equal(t, "old", src.Object)
	assert.Nil(t, src.Encryption)

	in.Options.SSECustomerKey = "0123456789abcdef0123456789abcdef"
	src, err = copySrc(in)
	require.NoError(t, err)
	require.NotNil(t, src.Encryption)
	assert.Equal(t, "SSE-C", string(src.Encryption.Type()))
}

func TestObjectSize(t *testing.T) {
	n := int64(42)
	assert.Equal(t, int64(42), objectSize(objectstore.Options{ContentLength: &n}))
	assert.Equal(t, int64(-1), objectSize(objectstore.Options{}))
}

func TestCopyDest(t *testing.T) {
	dst, err := copyDest(&objectstore.CopyInput{
		Bucket: "b", Key: "new",
		Options: objectstore.Options{ACL: "private"},
	})
	require.NoError(t, err)
	assert.False(t, dst.ReplaceMetadata)
	assert.Equal(t, "new", dst.Object)

	dst, err = copyDest(&objectstore.CopyInput{
		Bucket: "b", Key: "new",
		Options: objectstore.Options{ContentType: "text/plain"},
	})
	require.NoError(t, err)
	assert.True(t, dst.ReplaceMetadata)
	assert.Equal(t, "text/plain", dst.UserMetadata["Content-Type"])
}

func TestIsCommonPrefix(t *testing.T) {
	assert.True(t, isCommonPrefix(miniogo.ObjectInfo{Key: "dir/"}, "/"))
	assert.False(t, isCommonPrefix(miniogo.ObjectInfo{Key: "dir/", ETag: "d41d8cd98f00b204e9800998ecf8427e"}, "/"))
	assert.False(t, isCommonPrefix(miniogo.ObjectInfo{Key: "dir/"}, ""))
	assert.False(t, isCommonPrefix(miniogo.ObjectInfo{Key: "file.txt"}, "/"))
}
