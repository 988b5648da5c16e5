package objectfs

import (
	"reflect"

	"github.com/koustreak/bucketfs/internal/filestore"
	"github.com/koustreak/bucketfs/internal/objectstore"
)

// requestOptions resolves the options of one request: adapter defaults
// first, then cfg. Each call builds a new map; neither a.defaults nor cfg
// is modified.
//
// visibility becomes ACL and mimetype becomes ContentType. Option keys
// override only when their value is set. An explicit nil ContentLength in
// cfg removes any ContentLength inherited from the defaults.
func (a *Adapter) requestOptions(cfg filestore.Config) (objectstore.Options, error) {
	merged := make(map[string]any, len(a.defaults)+len(cfg))
	overlay(merged, a.defaults)
	overlay(merged, cfg)

	if v, ok := cfg["ContentLength"]; ok && isNull(v) {
		delete(merged, "ContentLength")
	}
	return objectstore.DecodeOptions(merged)
}

func overlay(dst map[string]any, src filestore.Config) {
	if v, ok := src.Visibility(); ok {
		dst["ACL"] = string(cannedACL(v))
	}
	if mt := src.String(filestore.ConfigMimetype); mt != "" {
		dst["ContentType"] = mt
	}
	for _, k := range objectstore.OptionKeys {
		if v, ok := src[k]; ok && isSet(v) {
			dst[k] = v
		}
	}
}

// cannedACL maps public to public-read and everything else to private.
func cannedACL(v filestore.Visibility) objectstore.CannedACL {
	if v == filestore.VisibilityPublic {
		return objectstore.ACLPublicRead
	}
	return objectstore.ACLPrivate
}

func isSet(v any) bool {
	if v == nil {
		return false
	}
	return !reflect.ValueOf(v).IsZero()
}

func isNull(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice:
		return rv.IsNil()
	}
	return false
}
