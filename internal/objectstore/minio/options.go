package minio

import (
	"strings"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/encrypt"
	"github.com/minio/minio-go/v7/pkg/tags"

	"github.com/koustreak/bucketfs/internal/errs"
	"github.com/koustreak/bucketfs/internal/objectstore"
)

// Request headers without a dedicated PutObjectOptions field. minio-go sends
// x-amz-* user metadata keys verbatim instead of prefixing them.
const (
	hdrACL              = "x-amz-acl"
	hdrGrantFullControl = "x-amz-grant-full-control"
	hdrGrantRead        = "x-amz-grant-read"
	hdrGrantReadACP     = "x-amz-grant-read-acp"
	hdrGrantWriteACP    = "x-amz-grant-write-acp"
	hdrRequestPayer     = "x-amz-request-payer"
)

// serverSide picks the encryption mode requested by opts, or nil.
func serverSide(opts objectstore.Options) (encrypt.ServerSide, error) {
	switch {
	case opts.SSECustomerKey != "":
		sse, err := encrypt.NewSSEC([]byte(opts.SSECustomerKey))
		if err != nil {
			return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid SSE-C key", err)
		}
		return sse, nil
	case opts.SSEKMSKeyId != "" || strings.EqualFold(opts.ServerSideEncryption, "aws:kms"):
		sse, err := encrypt.NewSSEKMS(opts.SSEKMSKeyId, nil)
		if err != nil {
			return nil, errs.Wrap(errs.ErrKindInvalidInput, "invalid SSE-KMS key", err)
		}
		return sse, nil
	case opts.ServerSideEncryption != "":
		return encrypt.NewSSE(), nil
	}
	return nil, nil
}

// customerKey returns the SSE-C key reads and copy sources must present, or
// nil when opts carries none.
func customerKey(opts objectstore.Options) (encrypt.ServerSide, error) {
	if opts.SSECustomerKey == "" {
		return nil, nil
	}
	return serverSide(opts)
}

// getOptions translates request options for GetObject and StatObject.
func getOptions(opts objectstore.Options) (miniogo.GetObjectOptions, error) {
	var out miniogo.GetObjectOptions
	sse, err := customerKey(opts)
	if err != nil {
		return out, err
	}
	out.ServerSideEncryption = sse
	return out, nil
}

// copySrc describes the source of CopyObject. An SSE-C source object is
// decrypted with the same customer key used for the destination.
func copySrc(in *objectstore.CopyInput) (miniogo.CopySrcOptions, error) {
	src := miniogo.CopySrcOptions{Bucket: in.SourceBucket, Object: in.SourceKey}
	sse, err := customerKey(in.Options)
	if err != nil {
		return src, err
	}
	src.Encryption = sse
	return src, nil
}

// headerMetadata returns the user metadata plus the x-amz-* request headers
// for ACLs and grants.
func headerMetadata(opts objectstore.Options) map[string]string {
	md := make(map[string]string, len(opts.Metadata)+6)
	for k, v := range opts.Metadata {
		md[k] = v
	}
	for h, v := range map[string]string{
		hdrACL:              opts.ACL,
		hdrGrantFullControl: opts.GrantFullControl,
		hdrGrantRead:        opts.GrantRead,
		hdrGrantReadACP:     opts.GrantReadACP,
		hdrGrantWriteACP:    opts.GrantWriteACP,
		hdrRequestPayer:     opts.RequestPayer,
	} {
		if v != "" {
			md[h] = v
		}
	}
	if len(md) == 0 {
		return nil
	}
	return md
}

// putOptions translates request options for PutObject.
func putOptions(opts objectstore.Options) (miniogo.PutObjectOptions, error) {
	out := miniogo.PutObjectOptions{
		UserMetadata:            headerMetadata(opts),
		ContentType:             opts.ContentType,
		ContentEncoding:         opts.ContentEncoding,
		ContentDisposition:      opts.ContentDisposition,
		CacheControl:            opts.CacheControl,
		StorageClass:            opts.StorageClass,
		WebsiteRedirectLocation: opts.WebsiteRedirectLocation,
	}
	if opts.Expires != nil {
		out.Expires = *opts.Expires
	}

	if opts.Tagging != "" {
		t, err := tags.ParseObjectTags(opts.Tagging)
		if err != nil {
			return out, errs.Wrap(errs.ErrKindInvalidInput, "invalid Tagging option", err)
		}
		out.UserTags = t.ToMap()
	}

	sse, err := serverSide(opts)
	if err != nil {
		return out, err
	}
	out.ServerSideEncryption = sse
	return out, nil
}

// objectSize is the size argument for PutObject: ContentLength when given,
// otherwise -1 so the SDK streams a multipart upload.
func objectSize(opts objectstore.Options) int64 {
	if opts.ContentLength != nil && *opts.ContentLength >= 0 {
		return *opts.ContentLength
	}
	return -1
}

// copyDest translates request options for the destination of CopyObject.
// Metadata is replaced when the request carries metadata or a content type.
func copyDest(in *objectstore.CopyInput) (miniogo.CopyDestOptions, error) {
	dst := miniogo.CopyDestOptions{
		Bucket:       in.Bucket,
		Object:       in.Key,
		UserMetadata: headerMetadata(in.Options),
	}
	if in.Options.Metadata != nil || in.Options.ContentType != "" {
		dst.ReplaceMetadata = true
		if in.Options.ContentType != "" {
			if dst.UserMetadata == nil {
				dst.UserMetadata = map[string]string{}
			}
			dst.UserMetadata["Content-Type"] = in.Options.ContentType
		}
	}
	if in.Options.Tagging != "" {
		t, err := tags.ParseObjectTags(in.Options.Tagging)
		if err != nil {
			return dst, errs.Wrap(errs.ErrKindInvalidInput, "invalid Tagging option", err)
		}
		dst.UserTags = t.ToMap()
		dst.ReplaceTags = true
	}

	sse, err := serverSide(in.Options)
	if err != nil {
		return dst, err
	}
	dst.Encryption = sse
	return dst, nil
}
