package objectfs

import (
	"context"
	"strings"

	"github.com/koustreak/bucketfs/internal/errs"
	"github.com/koustreak/bucketfs/internal/filestore"
	"github.com/koustreak/bucketfs/internal/objectstore"
)

// ListContents returns the names below directory, relative to it, in
// provider order. Non-recursive listings return immediate files and one
// name per subdirectory; recursive listings return every key below
// directory, directory markers included.
//
// A file and a directory of the same name ("a" and "a/") both appear as
// "a"; use ListEntries to tell them apart.
func (a *Adapter) ListContents(ctx context.Context, directory string, recursive bool) ([]string, error) {
	entries, err := a.ListEntries(ctx, directory, recursive)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Path
	}
	return names, nil
}

// ListEntries is ListContents returning normalised entries. Entry.Path is
// relative to directory and Entry.Name keeps the full object key.
func (a *Adapter) ListEntries(ctx context.Context, directory string, recursive bool) ([]*filestore.Entry, error) {
	in := &objectstore.ListInput{
		Bucket:  a.Bucket(),
		Prefix:  a.dirKey(directory),
		MaxKeys: a.pageSize,
	}
	if !recursive {
		in.Delimiter = "/"
	}

	rows, err := a.listAll(ctx, in)
	if err != nil {
		return nil, err
	}

	entries := make([]*filestore.Entry, 0, len(rows))
	for _, row := range rows {
		raw := row.Key
		if row.IsPrefix() {
			raw = row.Prefix
		}
		rel := strings.TrimSuffix(strings.TrimPrefix(raw, in.Prefix), "/")
		if rel == "" {
			// the directory's own marker
			continue
		}

		e := a.normalize(row, "")
		e.Path = rel
		entries = append(entries, e)
	}
	return entries, nil
}

// listAll follows continuation tokens until the listing is exhausted and
// returns the rows of every page in order.
func (a *Adapter) listAll(ctx context.Context, in *objectstore.ListInput) ([]*objectstore.Object, error) {
	var rows []*objectstore.Object
	for {
		a.trace("ListObjects", in.Bucket, in.Prefix)
		page, err := a.client.ListObjects(ctx, in)
		if err != nil {
			return nil, wrap(err, "failed to list "+in.Prefix)
		}
		rows = append(rows, page.Rows...)

		if !page.IsTruncated {
			return rows, nil
		}
		if page.NextContinuationToken == "" {
			return nil, errs.Newf(errs.ErrKindOperationFailed,
				"listing of %q truncated without a continuation token", in.Prefix)
		}
		in.ContinuationToken = page.NextContinuationToken
	}
}
