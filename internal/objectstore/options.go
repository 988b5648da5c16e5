package objectstore

import (
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/koustreak/bucketfs/internal/errs"
)

// OptionKeys lists the request option names callers may pass per call.
// They match the S3 request parameter names.
var OptionKeys = []string{
	"ACL",
	"CacheControl",
	"ContentDisposition",
	"ContentEncoding",
	"ContentLength",
	"ContentType",
	"Expires",
	"GrantFullControl",
	"GrantRead",
	"GrantReadACP",
	"GrantWriteACP",
	"Metadata",
	"RequestPayer",
	"SSECustomerAlgorithm",
	"SSECustomerKey",
	"SSECustomerKeyMD5",
	"SSEKMSKeyId",
	"ServerSideEncryption",
	"StorageClass",
	"Tagging",
	"WebsiteRedirectLocation",
}

// IsOptionKey reports whether name is one of OptionKeys.
func IsOptionKey(name string) bool {
	for _, k := range OptionKeys {
		if k == name {
			return true
		}
	}
	return false
}

// Options are the request-level options forwarded to the provider.
// Providers translate the fields they support and ignore the rest.
type Options struct {
	ACL                     string            `mapstructure:"ACL"`
	CacheControl            string            `mapstructure:"CacheControl"`
	ContentDisposition      string            `mapstructure:"ContentDisposition"`
	ContentEncoding         string            `mapstructure:"ContentEncoding"`
	ContentLength           *int64            `mapstructure:"ContentLength"`
	ContentType             string            `mapstructure:"ContentType"`
	Expires                 *time.Time        `mapstructure:"Expires"`
	GrantFullControl        string            `mapstructure:"GrantFullControl"`
	GrantRead               string            `mapstructure:"GrantRead"`
	GrantReadACP            string            `mapstructure:"GrantReadACP"`
	GrantWriteACP           string            `mapstructure:"GrantWriteACP"`
	Metadata                map[string]string `mapstructure:"Metadata"`
	RequestPayer            string            `mapstructure:"RequestPayer"`
	SSECustomerAlgorithm    string            `mapstructure:"SSECustomerAlgorithm"`
	SSECustomerKey          string            `mapstructure:"SSECustomerKey"`
	SSECustomerKeyMD5       string            `mapstructure:"SSECustomerKeyMD5"`
	SSEKMSKeyId             string            `mapstructure:"SSEKMSKeyId"`
	ServerSideEncryption    string            `mapstructure:"ServerSideEncryption"`
	StorageClass            string            `mapstructure:"StorageClass"`
	Tagging                 string            `mapstructure:"Tagging"`
	WebsiteRedirectLocation string            `mapstructure:"WebsiteRedirectLocation"`
}

// DecodeOptions converts an option mapping (as found in config files or
// per-call config) into Options. Values are weakly typed: "12" decodes into
// ContentLength, RFC3339 strings decode into Expires. Keys that are not
// option names are ignored. The result never shares maps with m.
func DecodeOptions(m map[string]any) (Options, error) {
	var out Options
	if len(m) == 0 {
		return out, nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339),
	})
	if err != nil {
		return out, errs.Wrap(errs.ErrKindInvalidInput, "failed to build option decoder", err)
	}

	if err := dec.Decode(m); err != nil {
		return out, errs.Wrap(errs.ErrKindInvalidInput, "invalid object store options", err)
	}

	// mapstructure assigns a same-typed map directly; copy it so callers
	// can never observe each other's metadata.
	if out.Metadata != nil {
		md := make(map[string]string, len(out.Metadata))
		for k, v := range out.Metadata {
			md[k] = v
		}
		out.Metadata = md
	}

	return out, nil
}
