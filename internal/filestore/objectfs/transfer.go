package objectfs

import (
	"bytes"
	"context"
	"io"

	"github.com/koustreak/bucketfs/internal/errs"
	"github.com/koustreak/bucketfs/internal/filestore"
	"github.com/koustreak/bucketfs/internal/objectstore"
)

// wrap adds context to err while keeping its kind.
func wrap(err error, msg string) error {
	return errs.Wrap(errs.KindOf(err), msg, err)
}

// Write stores contents at path, creating or replacing it.
func (a *Adapter) Write(ctx context.Context, path string, contents []byte, cfg filestore.Config) (*filestore.Entry, error) {
	return a.Upload(ctx, path, bytes.NewReader(contents), cfg)
}

// Update replaces the contents at path. It behaves exactly like Write.
func (a *Adapter) Update(ctx context.Context, path string, contents []byte, cfg filestore.Config) (*filestore.Entry, error) {
	return a.Upload(ctx, path, bytes.NewReader(contents), cfg)
}

// WriteStream stores everything read from r at path.
func (a *Adapter) WriteStream(ctx context.Context, path string, r io.Reader, cfg filestore.Config) (*filestore.Entry, error) {
	return a.Upload(ctx, path, r, cfg)
}

// UpdateStream behaves exactly like WriteStream.
func (a *Adapter) UpdateStream(ctx context.Context, path string, r io.Reader, cfg filestore.Config) (*filestore.Entry, error) {
	return a.Upload(ctx, path, r, cfg)
}

// Upload stores body at path. Objects are private unless the defaults or
// cfg ask otherwise.
func (a *Adapter) Upload(ctx context.Context, path string, body io.Reader, cfg filestore.Config) (*filestore.Entry, error) {
	key := a.ApplyPathPrefix(path)
	if key == a.Prefix() {
		return nil, errs.New(errs.ErrKindInvalidInput, "path must not be empty")
	}
	return a.put(ctx, key, body, cfg)
}

func (a *Adapter) put(ctx context.Context, key string, body io.Reader, cfg filestore.Config) (*filestore.Entry, error) {
	opts, err := a.requestOptions(cfg)
	if err != nil {
		return nil, err
	}
	if opts.ACL == "" {
		opts.ACL = string(objectstore.ACLPrivate)
	}

	bucket := a.Bucket()
	a.trace("PutObject", bucket, key)
	obj, err := a.client.PutObject(ctx, &objectstore.PutInput{
		Bucket:  bucket,
		Key:     key,
		Body:    body,
		Options: opts,
	})
	if err != nil {
		return nil, wrap(err, "failed to write "+key)
	}
	return a.normalize(obj, a.RemovePathPrefix(key)), nil
}

// Read returns the entry at path with its whole body in Contents.
func (a *Adapter) Read(ctx context.Context, path string) (*filestore.Entry, error) {
	e, err := a.readObject(ctx, path)
	if err != nil {
		return nil, err
	}
	defer e.Stream.Close()

	data, err := io.ReadAll(e.Stream)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "failed to read "+path, err)
	}
	e.Contents = data
	e.Stream = nil
	return e, nil
}

// ReadStream returns the entry at path with the body left open in Stream.
func (a *Adapter) ReadStream(ctx context.Context, path string) (*filestore.Entry, error) {
	return a.readObject(ctx, path)
}

func (a *Adapter) readObject(ctx context.Context, path string) (*filestore.Entry, error) {
	opts, err := a.requestOptions(nil)
	if err != nil {
		return nil, err
	}

	bucket, key := a.Bucket(), a.ApplyPathPrefix(path)
	a.trace("GetObject", bucket, key)

	obj, err := a.client.GetObject(ctx, bucket, key, opts)
	if err != nil {
		return nil, wrap(err, "failed to read "+path)
	}

	e := a.normalize(obj, a.RemovePathPrefix(key))
	e.Stream = obj.Body
	if e.Stream == nil {
		e.Stream = io.NopCloser(bytes.NewReader(nil))
	}
	return e, nil
}

// Copy duplicates path at newpath. The copy is public-read when path is
// public and private otherwise; adapter defaults apply to the rest.
// It reports whether newpath exists afterwards.
func (a *Adapter) Copy(ctx context.Context, path, newpath string) (bool, error) {
	vis, err := a.GetVisibility(ctx, path)
	switch {
	case errs.IsNotSupported(err):
		vis = filestore.VisibilityPrivate
	case err != nil:
		return false, err
	}

	opts, err := a.requestOptions(nil)
	if err != nil {
		return false, err
	}
	opts.ACL = string(cannedACL(vis))

	bucket := a.Bucket()
	src, dst := a.ApplyPathPrefix(path), a.ApplyPathPrefix(newpath)
	a.trace("CopyObject", bucket, dst)
	if _, err := a.client.CopyObject(ctx, &objectstore.CopyInput{
		Bucket:       bucket,
		Key:          dst,
		SourceBucket: bucket,
		SourceKey:    src,
		Options:      opts,
	}); err != nil {
		return false, wrap(err, "failed to copy "+path+" to "+newpath)
	}

	return a.Has(ctx, newpath)
}

// Delete removes the object at path and reports whether path is gone.
// A path that still has objects below it keeps existing as a directory.
func (a *Adapter) Delete(ctx context.Context, path string) (bool, error) {
	bucket, key := a.Bucket(), a.ApplyPathPrefix(path)
	a.trace("DeleteObject", bucket, key)
	if err := a.client.DeleteObject(ctx, bucket, key); err != nil {
		return false, wrap(err, "failed to delete "+path)
	}

	has, err := a.Has(ctx, path)
	if err != nil {
		return false, err
	}
	return !has, nil
}

// GetMetadata fetches the entry at path without its body.
func (a *Adapter) GetMetadata(ctx context.Context, path string) (*filestore.Entry, error) {
	opts, err := a.requestOptions(nil)
	if err != nil {
		return nil, err
	}

	bucket, key := a.Bucket(), a.ApplyPathPrefix(path)
	a.trace("HeadObject", bucket, key)
	obj, err := a.client.HeadObject(ctx, bucket, key, opts)
	if err != nil {
		return nil, wrap(err, "failed to stat "+path)
	}
	return a.normalize(obj, a.RemovePathPrefix(key)), nil
}

// GetSize returns the content length of the file at path.
func (a *Adapter) GetSize(ctx context.Context, path string) (int64, error) {
	e, err := a.GetMetadata(ctx, path)
	if err != nil {
		return 0, err
	}
	return e.Size, nil
}

// GetMimetype returns the stored content type of the file at path.
func (a *Adapter) GetMimetype(ctx context.Context, path string) (string, error) {
	e, err := a.GetMetadata(ctx, path)
	if err != nil {
		return "", err
	}
	return e.Mimetype, nil
}

// GetTimestamp returns the last modification time of path in Unix seconds.
func (a *Adapter) GetTimestamp(ctx context.Context, path string) (int64, error) {
	e, err := a.GetMetadata(ctx, path)
	if err != nil {
		return 0, err
	}
	return e.Timestamp, nil
}
