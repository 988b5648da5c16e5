package objectfs

import (
	"bytes"
	"context"
	"strings"

	"github.com/koustreak/bucketfs/internal/errs"
	"github.com/koustreak/bucketfs/internal/filestore"
	"github.com/koustreak/bucketfs/internal/objectstore"
)

// dirKey returns the marker key of dir: its resolved key plus "/".
// The adapter root resolves to the prefix itself, which is "" without one.
func (a *Adapter) dirKey(dir string) string {
	key := strings.TrimSuffix(a.ApplyPathPrefix(dir), "/")
	if key == "" {
		return ""
	}
	return key + "/"
}

// Has reports whether path names an object or a directory. A directory
// exists when its marker exists or when any key lies below it.
// The adapter root always exists.
func (a *Adapter) Has(ctx context.Context, path string) (bool, error) {
	if strings.Trim(path, "/") == "" {
		return true, nil
	}
	return a.exists(ctx, a.Bucket(), a.ApplyPathPrefix(path))
}

func (a *Adapter) exists(ctx context.Context, bucket, key string) (bool, error) {
	opts, err := a.requestOptions(nil)
	if err != nil {
		return false, err
	}

	a.trace("HeadObject", bucket, key)
	_, err = a.client.HeadObject(ctx, bucket, key, opts)
	switch {
	case err == nil:
		return true, nil
	case !errs.IsNotFound(err):
		return false, wrap(err, "failed to check "+key)
	}

	dir := strings.TrimSuffix(key, "/") + "/"
	a.trace("ListObjects", bucket, dir)
	page, err := a.client.ListObjects(ctx, &objectstore.ListInput{
		Bucket:  bucket,
		Prefix:  dir,
		MaxKeys: 1,
	})
	if err != nil {
		return false, wrap(err, "failed to check "+dir)
	}
	return len(page.Rows) > 0, nil
}

// CreateDir writes an empty marker object for dirname. cfg goes through
// the same option pipeline as Write.
func (a *Adapter) CreateDir(ctx context.Context, dirname string, cfg filestore.Config) (*filestore.Entry, error) {
	if strings.Trim(dirname, "/") == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "directory name must not be empty")
	}
	return a.put(ctx, a.dirKey(dirname), bytes.NewReader(nil), cfg)
}

// DeleteDir removes the marker of dirname and reports whether the
// directory is gone. Objects below dirname are left alone, so a non-empty
// directory still exists afterwards.
func (a *Adapter) DeleteDir(ctx context.Context, dirname string) (bool, error) {
	if strings.Trim(dirname, "/") == "" {
		return false, errs.New(errs.ErrKindInvalidInput, "directory name must not be empty")
	}

	bucket, key := a.Bucket(), a.dirKey(dirname)
	a.trace("DeleteObject", bucket, key)
	if err := a.client.DeleteObject(ctx, bucket, key); err != nil {
		return false, wrap(err, "failed to delete directory "+dirname)
	}

	has, err := a.Has(ctx, dirname)
	if err != nil {
		return false, err
	}
	return !has, nil
}
