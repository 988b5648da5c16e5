package objectfs

import (
	"strings"

	"github.com/koustreak/bucketfs/internal/filestore"
	"github.com/koustreak/bucketfs/internal/objectstore"
)

// normalize converts a provider record into an Entry.
//
// knownPath, when non-empty, is used as the path. Otherwise the path is the
// record's Key, or its Prefix for common-prefix rows, with the adapter
// prefix removed. A trailing "/" marks a directory and is stripped.
// Zero-valued provider fields stay zero in the entry.
func (a *Adapter) normalize(obj *objectstore.Object, knownPath string) *filestore.Entry {
	path := knownPath
	if path == "" {
		if obj.Key != "" {
			path = a.RemovePathPrefix(obj.Key)
		} else {
			path = a.RemovePathPrefix(obj.Prefix)
		}
	}

	e := &filestore.Entry{Path: path, Type: filestore.TypeFile}
	if strings.HasSuffix(path, "/") {
		e.Path = strings.TrimSuffix(path, "/")
		e.Type = filestore.TypeDir
	}

	// Listing rows carry Size, get/head/put responses ContentLength.
	// When both are present Size wins.
	e.Size = obj.ContentLength
	if obj.Size != 0 {
		e.Size = obj.Size
	}

	e.Mimetype = obj.ContentType
	if len(obj.Metadata) > 0 {
		e.Metadata = obj.Metadata
	}
	e.StorageClass = obj.StorageClass
	e.ETag = obj.ETag
	e.VersionID = obj.VersionID
	e.Name = obj.Key
	if !obj.LastModified.IsZero() {
		e.Timestamp = obj.LastModified.Unix()
	}
	return e
}
