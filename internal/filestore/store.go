// Package filestore defines the path-based storage abstraction that
// storage adapters implement.
//
// An adapter maps hierarchical paths ("docs/readme.md") onto some backend.
// Callers depend only on this package, never on a specific adapter package.
//
// Usage:
//
//	client, err := open.Open(ctx, cfg)
//	if err != nil { ... }
//	fs := objectfs.New(client, "media", objectfs.WithPrefix("uploads"))
//
//	entry, err := fs.Write(ctx, "hello.txt", []byte("HOLA MUNDO"), nil)
//	names, err := fs.ListContents(ctx, "", false)
package filestore

import (
	"context"
	"io"
)

// Adapter is the capability interface every storage adapter implements.
//
// Paths are relative to the adapter root and never carry the adapter's
// prefix. Errors are *errs.Error values; "does not exist" is reported as
// errs.ErrKindNotFound by reads and as (false, nil) by existence checks.
type Adapter interface {
	// Write stores contents at path, replacing any existing file.
	Write(ctx context.Context, path string, contents []byte, cfg Config) (*Entry, error)

	// Update is an alias of Write.
	Update(ctx context.Context, path string, contents []byte, cfg Config) (*Entry, error)

	// WriteStream stores everything read from r at path.
	WriteStream(ctx context.Context, path string, r io.Reader, cfg Config) (*Entry, error)

	// UpdateStream is an alias of WriteStream.
	UpdateStream(ctx context.Context, path string, r io.Reader, cfg Config) (*Entry, error)

	// Read returns the entry at path with Contents filled in.
	Read(ctx context.Context, path string) (*Entry, error)

	// ReadStream returns the entry at path with an open Stream.
	// The caller MUST close Entry.Stream.
	ReadStream(ctx context.Context, path string) (*Entry, error)

	// Has reports whether a file or a directory exists at path.
	Has(ctx context.Context, path string) (bool, error)

	// Delete removes the file at path and reports whether it is gone.
	Delete(ctx context.Context, path string) (bool, error)

	// DeleteDir removes the directory marker of dirname and reports
	// whether the directory is gone.
	DeleteDir(ctx context.Context, dirname string) (bool, error)

	// CreateDir creates an empty directory.
	CreateDir(ctx context.Context, dirname string, cfg Config) (*Entry, error)

	// Copy duplicates path at newpath and reports whether newpath exists.
	Copy(ctx context.Context, path, newpath string) (bool, error)

	// Rename moves path to newpath.
	Rename(ctx context.Context, path, newpath string) (bool, error)

	// ListContents returns the names below directory, relative to it.
	ListContents(ctx context.Context, directory string, recursive bool) ([]string, error)

	// ListEntries returns the entries below directory; Path is relative to it.
	ListEntries(ctx context.Context, directory string, recursive bool) ([]*Entry, error)

	// GetMetadata returns the entry at path without its contents.
	GetMetadata(ctx context.Context, path string) (*Entry, error)

	// GetSize returns the size in bytes of the file at path.
	GetSize(ctx context.Context, path string) (int64, error)

	// GetMimetype returns the content type of the file at path.
	GetMimetype(ctx context.Context, path string) (string, error)

	// GetTimestamp returns the last-modified time of path in unix seconds.
	GetTimestamp(ctx context.Context, path string) (int64, error)

	// GetVisibility reports whether path is publicly readable.
	GetVisibility(ctx context.Context, path string) (Visibility, error)

	// SetVisibility changes the visibility of path.
	SetVisibility(ctx context.Context, path string, v Visibility) error
}
