package objectstore

// CannedACL is a predefined grant set understood by S3-compatible stores.
type CannedACL string

const (
	ACLPrivate         CannedACL = "private"
	ACLPublicRead      CannedACL = "public-read"
	ACLPublicReadWrite CannedACL = "public-read-write"
)

// AllUsersURI is the grantee URI of the well-known "everyone" group.
const AllUsersURI = "http://acs.amazonaws.com/groups/global/AllUsers"

// Grant permissions.
const (
	PermissionRead        = "READ"
	PermissionWrite       = "WRITE"
	PermissionFullControl = "FULL_CONTROL"
)

// Grantee identifies who a grant applies to: a canonical user (ID) or a
// group (URI).
type Grantee struct {
	ID          string
	DisplayName string
	URI         string
	Type        string
}

// Grant pairs a grantee with one permission.
type Grant struct {
	Grantee    Grantee
	Permission string
}

// AccessControlList is an object's owner plus its grants.
type AccessControlList struct {
	Owner  string
	Grants []Grant
}

// DefaultOwner is the owner ID reported by the local providers.
const DefaultOwner = "bucketfs"

// CannedGrants expands a canned ACL into the grant list an S3 server would
// report for it. Unknown names expand like "private".
func CannedGrants(owner string, acl CannedACL) *AccessControlList {
	list := &AccessControlList{
		Owner: owner,
		Grants: []Grant{{
			Grantee:    Grantee{ID: owner, Type: "CanonicalUser"},
			Permission: PermissionFullControl,
		}},
	}

	allUsers := Grantee{URI: AllUsersURI, Type: "Group"}
	switch acl {
	case ACLPublicRead:
		list.Grants = append(list.Grants, Grant{Grantee: allUsers, Permission: PermissionRead})
	case ACLPublicReadWrite:
		list.Grants = append(list.Grants,
			Grant{Grantee: allUsers, Permission: PermissionRead},
			Grant{Grantee: allUsers, Permission: PermissionWrite},
		)
	}
	return list
}

// NormalizeACL returns acl when it is one of the canned names stored by the
// local providers, otherwise ACLPrivate.
func NormalizeACL(acl string) CannedACL {
	switch CannedACL(acl) {
	case ACLPublicRead, ACLPublicReadWrite:
		return CannedACL(acl)
	default:
		return ACLPrivate
	}
}
