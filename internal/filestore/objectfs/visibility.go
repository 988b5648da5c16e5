package objectfs

import (
	"context"

	"github.com/koustreak/bucketfs/internal/errs"
	"github.com/koustreak/bucketfs/internal/filestore"
	"github.com/koustreak/bucketfs/internal/objectstore"
)

// GetVisibility reports public when the object grants READ to the
// all-users group, private otherwise. A missing grant list is private.
func (a *Adapter) GetVisibility(ctx context.Context, path string) (filestore.Visibility, error) {
	bucket, key := a.Bucket(), a.ApplyPathPrefix(path)
	a.trace("GetObjectACL", bucket, key)

	acl, err := a.client.GetObjectACL(ctx, bucket, key)
	if err != nil {
		return "", err
	}
	return visibilityOf(acl), nil
}

// SetVisibility replaces the object's grants with the canned ACL matching v.
func (a *Adapter) SetVisibility(ctx context.Context, path string, v filestore.Visibility) error {
	if _, err := filestore.ParseVisibility(string(v)); err != nil {
		return err
	}

	bucket, key := a.Bucket(), a.ApplyPathPrefix(path)
	a.trace("PutObjectACL", bucket, key)

	if err := a.client.PutObjectACL(ctx, bucket, key, cannedACL(v)); err != nil {
		return errs.Wrap(errs.KindOf(err), "failed to set visibility of "+path, err)
	}
	return nil
}

func visibilityOf(acl *objectstore.AccessControlList) filestore.Visibility {
	if acl == nil {
		return filestore.VisibilityPrivate
	}
	for _, g := range acl.Grants {
		if g.Grantee.URI == objectstore.AllUsersURI && g.Permission == objectstore.PermissionRead {
			return filestore.VisibilityPublic
		}
	}
	return filestore.VisibilityPrivate
}
