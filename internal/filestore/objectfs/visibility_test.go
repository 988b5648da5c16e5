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

func TestVisibilityOf(t *testing.T) {
	allUsers := objectstore.Grantee{URI: objectstore.AllUsersURI, Type: "Group"}
	owner := objectstore.Grant{
		Grantee:    objectstore.Grantee{ID: "me", Type: "CanonicalUser"},
		Permission: objectstore.PermissionFullControl,
	}

	tests := []struct {
		name string
		acl  *objectstore.AccessControlList
		want filestore.Visibility
	}{
		{"nil list", nil, filestore.VisibilityPrivate},
		{"no grants", &objectstore.AccessControlList{}, filestore.VisibilityPrivate},
		{"owner only", &objectstore.AccessControlList{Grants: []objectstore.Grant{owner}}, filestore.VisibilityPrivate},
		{
			"all users read",
			&objectstore.AccessControlList{Grants: []objectstore.Grant{owner, {Grantee: allUsers, Permission: "READ"}}},
			filestore.VisibilityPublic,
		},
		{
			"all users write only",
			&objectstore.AccessControlList{Grants: []objectstore.Grant{{Grantee: allUsers, Permission: "WRITE"}}},
			filestore.VisibilityPrivate,
		},
		{
			"other group read",
			&objectstore.AccessControlList{Grants: []objectstore.Grant{{
				Grantee:    objectstore.Grantee{URI: "http://acs.amazonaws.com/groups/global/AuthenticatedUsers"},
				Permission: "READ",
			}}},
			filestore.VisibilityPrivate,
		},
		{
			"public after other grants",
			&objectstore.AccessControlList{Grants: []objectstore.Grant{
				owner,
				{Grantee: allUsers, Permission: "WRITE"},
				{Grantee: allUsers, Permission: "READ"},
			}},
			filestore.VisibilityPublic,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, visibilityOf(tt.acl))
		})
	}
}

func TestGetSetVisibility(t *testing.T) {
	ctx := context.Background()
	a, _ := newAdapter(t, WithPrefix("root"))

	_, err := a.Write(ctx, "f.txt", []byte("x"), nil)
	require.NoError(t, err)

	vis, err := a.GetVisibility(ctx, "f.txt")
	require.NoError(t, err)
	assert.Equal(t, filestore.VisibilityPrivate, vis)

	require.NoError(t, a.SetVisibility(ctx, "f.txt", filestore.VisibilityPublic))
	vis, err = a.GetVisibility(ctx, "f.txt")
	require.NoError(t, err)
	assert.Equal(t, filestore.VisibilityPublic, vis)

	require.NoError(t, a.SetVisibility(ctx, "f.txt", filestore.VisibilityPrivate))
	vis, err = a.GetVisibility(ctx, "f.txt")
	require.NoError(t, err)
	assert.Equal(t, filestore.VisibilityPrivate, vis)
}

func TestVisibility_Errors(t *testing.T) {
	ctx := context.Background()
	a, _ := newAdapter(t)

	_, err := a.GetVisibility(ctx, "missing")
	assert.True(t, errs.IsNotFound(err))

	err = a.SetVisibility(ctx, "missing", filestore.VisibilityPublic)
	assert.True(t, errs.IsNotFound(err))

	err = a.SetVisibility(ctx, "missing", "world")
	assert.True(t, errs.IsInvalidInput(err))
}
