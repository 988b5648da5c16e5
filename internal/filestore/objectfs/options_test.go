package objectfs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/bucketfs/internal/errs"
	"github.com/koustreak/bucketfs/internal/filestore"
	"github.com/koustreak/bucketfs/internal/objectstore"
)

func int64p(n int64) *int64 { return &n }

func TestRequestOptions(t *testing.T) {
	tests := []struct {
		name     string
		defaults filestore.Config
		cfg      filestore.Config
		want     objectstore.Options
	}{
		{
			name: "empty",
			want: objectstore.Options{},
		},
		{
			name:     "defaults only",
			defaults: filestore.Config{"StorageClass": "GLACIER", "CacheControl": "no-cache"},
			want:     objectstore.Options{StorageClass: "GLACIER", CacheControl: "no-cache"},
		},
		{
			name:     "call overrides defaults",
			defaults: filestore.Config{"StorageClass": "GLACIER"},
			cfg:      filestore.Config{"StorageClass": "STANDARD_IA"},
			want:     objectstore.Options{StorageClass: "STANDARD_IA"},
		},
		{
			name:     "unset call value keeps default",
			defaults: filestore.Config{"ContentType": "text/plain"},
			cfg:      filestore.Config{"ContentType": ""},
			want:     objectstore.Options{ContentType: "text/plain"},
		},
		{
			name: "public visibility",
			cfg:  filestore.Config{"visibility": "public"},
			want: objectstore.Options{ACL: "public-read"},
		},
		{
			name: "any other visibility is private",
			cfg:  filestore.Config{"visibility": "friends"},
			want: objectstore.Options{ACL: "private"},
		},
		{
			name:     "call visibility overrides default",
			defaults: filestore.Config{"visibility": filestore.VisibilityPublic},
			cfg:      filestore.Config{"visibility": filestore.VisibilityPrivate},
			want:     objectstore.Options{ACL: "private"},
		},
		{
			name: "explicit ACL wins over visibility",
			cfg:  filestore.Config{"visibility": "public", "ACL": "public-read-write"},
			want: objectstore.Options{ACL: "public-read-write"},
		},
		{
			name: "mimetype",
			cfg:  filestore.Config{"mimetype": "image/png"},
			want: objectstore.Options{ContentType: "image/png"},
		},
		{
			name: "unknown keys ignored",
			cfg:  filestore.Config{"Colour": "blue", "Bucket": "evil"},
			want: objectstore.Options{},
		},
		{
			name: "content length",
			cfg:  filestore.Config{"ContentLength": 4},
			want: objectstore.Options{ContentLength: int64p(4)},
		},
		{
			name:     "nil content length drops default",
			defaults: filestore.Config{"ContentLength": 4},
			cfg:      filestore.Config{"ContentLength": nil},
			want:     objectstore.Options{},
		},
		{
			name:     "typed nil content length drops default",
			defaults: filestore.Config{"ContentLength": 4},
			cfg:      filestore.Config{"ContentLength": (*int64)(nil)},
			want:     objectstore.Options{},
		},
		{
			name:     "metadata",
			defaults: filestore.Config{"Metadata": map[string]string{"a": "1"}},
			cfg:      filestore.Config{"Metadata": map[string]string{"b": "2"}},
			want:     objectstore.Options{Metadata: map[string]string{"b": "2"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := newAdapter(t, WithDefaultOptions(tt.defaults))

			got, err := a.requestOptions(tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequestOptions_Invalid(t *testing.T) {
	a, _ := newAdapter(t)

	_, err := a.requestOptions(filestore.Config{"ContentLength": "lots"})
	assert.True(t, errs.IsInvalidInput(err))
}

func TestRequestOptions_DoesNotMutate(t *testing.T) {
	defaults := filestore.Config{"StorageClass": "GLACIER"}
	a, _ := newAdapter(t, WithDefaultOptions(defaults))

	cfg := filestore.Config{"visibility": "public", "mimetype": "text/html", "ContentLength": nil}
	_, err := a.requestOptions(cfg)
	require.NoError(t, err)

	assert.Equal(t, filestore.Config{"StorageClass": "GLACIER"}, a.DefaultOptions())
	assert.Equal(t, filestore.Config{"visibility": "public", "mimetype": "text/html", "ContentLength": nil}, cfg)

	second, err := a.requestOptions(nil)
	require.NoError(t, err)
	assert.Equal(t, objectstore.Options{StorageClass: "GLACIER"}, second)
}

func TestUpload_NilContentLengthNotForwarded(t *testing.T) {
	ctx := context.Background()
	rec := &recordingClient{Client: newStore()}
	a := New(rec, bucket, WithDefaultOptions(filestore.Config{"ContentLength": 3}))

	_, err := a.Write(ctx, "test.txt", []byte("HOLA MUNDO"), filestore.Config{"ContentLength": nil})
	require.NoError(t, err)

	require.Len(t, rec.puts, 1)
	assert.Nil(t, rec.puts[0].Options.ContentLength)

	e, err := a.Read(ctx, "test.txt")
	require.NoError(t, err)
	assert.Equal(t, "HOLA MUNDO", e.Text())
}

func TestUpload_DefaultACL(t *testing.T) {
	tests := []struct {
		name     string
		defaults filestore.Config
		cfg      filestore.Config
		want     string
	}{
		{"none", nil, nil, "private"},
		{"from defaults", filestore.Config{"visibility": "public"}, nil, "public-read"},
		{"from call", nil, filestore.Config{"ACL": "public-read"}, "public-read"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingClient{Client: newStore()}
			a := New(rec, bucket, WithDefaultOptions(tt.defaults))

			_, err := a.Write(context.Background(), "f", []byte("x"), tt.cfg)
			require.NoError(t, err)
			require.Len(t, rec.puts, 1)
			assert.Equal(t, tt.want, rec.puts[0].Options.ACL)
		})
	}
}
