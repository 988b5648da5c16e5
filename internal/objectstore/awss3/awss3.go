// Package awss3 implements objectstore.Client on top of the AWS SDK for Go v2.
// It talks to AWS S3 and to S3-compatible servers reachable through a
// custom endpoint.
package awss3

import (
	"context"
	"net/url"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/koustreak/bucketfs/internal/errs"
	"github.com/koustreak/bucketfs/internal/objectstore"
)

const defaultRegion = "us-east-1"

// API is the subset of *s3.Client used by Client.
type API interface {
	manager.UploadAPIClient

	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	CopyObject(ctx context.Context, in *s3.CopyObjectInput, optFns ...func(*s3.Options)) (*s3.CopyObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObjectAcl(ctx context.Context, in *s3.GetObjectAclInput, optFns ...func(*s3.Options)) (*s3.GetObjectAclOutput, error)
	PutObjectAcl(ctx context.Context, in *s3.PutObjectAclInput, optFns ...func(*s3.Options)) (*s3.PutObjectAclOutput, error)
	CreateBucket(ctx context.Context, in *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

// Client is an objectstore.Client backed by the S3 API.
type Client struct {
	api      API
	uploader *manager.Uploader
}

var (
	_ objectstore.Client        = (*Client)(nil)
	_ objectstore.BucketCreator = (*Client)(nil)
)

// New builds an S3 client from cfg. Static credentials are used when an
// access key is configured, otherwise the default AWS credential chain.
func New(ctx context.Context, cfg *objectstore.Config) (*Client, error) {
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKey != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to load aws config", err)
	}

	endpoint := baseEndpoint(cfg.Endpoint, cfg.UseSSL)
	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return NewFromAPI(api), nil
}

// NewFromAPI wraps an existing S3 API client.
func NewFromAPI(api API) *Client {
	return &Client{
		api:      api,
		uploader: manager.NewUploader(api),
	}
}

// baseEndpoint adds a scheme to host:port endpoints.
func baseEndpoint(endpoint string, useSSL bool) string {
	if endpoint == "" || strings.Contains(endpoint, "://") {
		return endpoint
	}
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}

// Close is a no-op; the SDK manages its own connection pool.
func (c *Client) Close() error { return nil }

func (c *Client) CreateBucket(ctx context.Context, bucket string) error {
	_, err := c.api.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(bucket)})
	if err != nil {
		if code := errorCode(err); code == "BucketAlreadyOwnedByYou" || code == "BucketAlreadyExists" {
			return nil
		}
		return mapError(err, "failed to create bucket")
	}
	return nil
}

func (c *Client) PutObject(ctx context.Context, in *objectstore.PutInput) (*objectstore.Object, error) {
	input := putInput(in)
	out, err := c.uploader.Upload(ctx, input)
	if err != nil {
		return nil, mapError(err, "failed to put object")
	}

	obj := &objectstore.Object{
		Key:          in.Key,
		ContentType:  in.Options.ContentType,
		Metadata:     in.Options.Metadata,
		StorageClass: in.Options.StorageClass,
		ETag:         aws.ToString(out.ETag),
		VersionID:    aws.ToString(out.VersionID),
	}
	if in.Options.ContentLength != nil {
		obj.ContentLength = *in.Options.ContentLength
	}
	return obj, nil
}

// GetObject streams the object at key. SSE-C keys in opts are sent with the
// request; S3 refuses to serve such objects without them.
func (c *Client) GetObject(ctx context.Context, bucket, key string, opts objectstore.Options) (*objectstore.Object, error) {
	out, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket:               aws.String(bucket),
		Key:                  aws.String(key),
		SSECustomerAlgorithm: str(opts.SSECustomerAlgorithm),
		SSECustomerKey:       str(opts.SSECustomerKey),
		SSECustomerKeyMD5:    str(opts.SSECustomerKeyMD5),
		RequestPayer:         types.RequestPayer(opts.RequestPayer),
	})
	if err != nil {
		return nil, mapError(err, "failed to get object")
	}

	return &objectstore.Object{
		Key:           key,
		Body:          out.Body,
		ContentLength: aws.ToInt64(out.ContentLength),
		ContentType:   aws.ToString(out.ContentType),
		Metadata:      out.Metadata,
		StorageClass:  string(out.StorageClass),
		ETag:          aws.ToString(out.ETag),
		VersionID:     aws.ToString(out.VersionId),
		LastModified:  aws.ToTime(out.LastModified),
	}, nil
}

func (c *Client) HeadObject(ctx context.Context, bucket, key string, opts objectstore.Options) (*objectstore.Object, error) {
	out, err := c.api.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket:               aws.String(bucket),
		Key:                  aws.String(key),
		SSECustomerAlgorithm: str(opts.SSECustomerAlgorithm),
		SSECustomerKey:       str(opts.SSECustomerKey),
		SSECustomerKeyMD5:    str(opts.SSECustomerKeyMD5),
		RequestPayer:         types.RequestPayer(opts.RequestPayer),
	})
	if err != nil {
		return nil, mapError(err, "failed to head object")
	}

	return &objectstore.Object{
		Key:           key,
		ContentLength: aws.ToInt64(out.ContentLength),
		ContentType:   aws.ToString(out.ContentType),
		Metadata:      out.Metadata,
		StorageClass:  string(out.StorageClass),
		ETag:          aws.ToString(out.ETag),
		VersionID:     aws.ToString(out.VersionId),
		LastModified:  aws.ToTime(out.LastModified),
	}, nil
}

func (c *Client) DeleteObject(ctx context.Context, bucket, key string) error {
	_, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return mapError(err, "failed to delete object")
	}
	return nil
}

func (c *Client) CopyObject(ctx context.Context, in *objectstore.CopyInput) (*objectstore.Object, error) {
	out, err := c.api.CopyObject(ctx, copyInput(in))
	if err != nil {
		return nil, mapError(err, "failed to copy object")
	}

	obj := &objectstore.Object{Key: in.Key, VersionID: aws.ToString(out.VersionId)}
	if r := out.CopyObjectResult; r != nil {
		obj.ETag = aws.ToString(r.ETag)
		obj.LastModified = aws.ToTime(r.LastModified)
	}
	return obj, nil
}

// ListObjects issues one ListObjectsV2 request. Objects and common prefixes
// come back in separate arrays; they are merged into key order.
func (c *Client) ListObjects(ctx context.Context, in *objectstore.ListInput) (*objectstore.ListPage, error) {
	out, err := c.api.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:            aws.String(in.Bucket),
		Prefix:            str(in.Prefix),
		Delimiter:         str(in.Delimiter),
		MaxKeys:           aws.Int32(int32(in.Limit())),
		ContinuationToken: str(in.ContinuationToken),
	})
	if err != nil {
		return nil, mapError(err, "failed to list objects")
	}

	rows := make([]*objectstore.Object, 0, len(out.Contents)+len(out.CommonPrefixes))
	for _, o := range out.Contents {
		rows = append(rows, &objectstore.Object{
			Key:          aws.ToString(o.Key),
			Size:         aws.ToInt64(o.Size),
			StorageClass: string(o.StorageClass),
			ETag:         aws.ToString(o.ETag),
			LastModified: aws.ToTime(o.LastModified),
		})
	}
	for _, p := range out.CommonPrefixes {
		rows = append(rows, &objectstore.Object{Prefix: aws.ToString(p.Prefix)})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Key+rows[i].Prefix < rows[j].Key+rows[j].Prefix
	})

	return &objectstore.ListPage{
		Rows:                  rows,
		IsTruncated:           aws.ToBool(out.IsTruncated),
		NextContinuationToken: aws.ToString(out.NextContinuationToken),
	}, nil
}

func (c *Client) GetObjectACL(ctx context.Context, bucket, key string) (*objectstore.AccessControlList, error) {
	out, err := c.api.GetObjectAcl(ctx, &s3.GetObjectAclInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, mapError(err, "failed to get object acl")
	}

	acl := &objectstore.AccessControlList{}
	if out.Owner != nil {
		acl.Owner = aws.ToString(out.Owner.ID)
	}
	for _, g := range out.Grants {
		grant := objectstore.Grant{Permission: string(g.Permission)}
		if g.Grantee != nil {
			grant.Grantee = objectstore.Grantee{
				ID:          aws.ToString(g.Grantee.ID),
				DisplayName: aws.ToString(g.Grantee.DisplayName),
				URI:         aws.ToString(g.Grantee.URI),
				Type:        string(g.Grantee.Type),
			}
		}
		acl.Grants = append(acl.Grants, grant)
	}
	return acl, nil
}

func (c *Client) PutObjectACL(ctx context.Context, bucket, key string, acl objectstore.CannedACL) error {
	_, err := c.api.PutObjectAcl(ctx, &s3.PutObjectAclInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		ACL:    types.ObjectCannedACL(acl),
	})
	if err != nil {
		return mapError(err, "failed to put object acl")
	}
	return nil
}

func putInput(in *objectstore.PutInput) *s3.PutObjectInput {
	o := in.Options
	body := in.Body
	if body == nil {
		body = strings.NewReader("")
	}
	return &s3.PutObjectInput{
		Bucket:                  aws.String(in.Bucket),
		Key:                     aws.String(in.Key),
		Body:                    body,
		ACL:                     types.ObjectCannedACL(o.ACL),
		CacheControl:            str(o.CacheControl),
		ContentDisposition:      str(o.ContentDisposition),
		ContentEncoding:         str(o.ContentEncoding),
		ContentLength:           o.ContentLength,
		ContentType:             str(o.ContentType),
		Expires:                 o.Expires,
		GrantFullControl:        str(o.GrantFullControl),
		GrantRead:               str(o.GrantRead),
		GrantReadACP:            str(o.GrantReadACP),
		GrantWriteACP:           str(o.GrantWriteACP),
		Metadata:                o.Metadata,
		RequestPayer:            types.RequestPayer(o.RequestPayer),
		SSECustomerAlgorithm:    str(o.SSECustomerAlgorithm),
		SSECustomerKey:          str(o.SSECustomerKey),
		SSECustomerKeyMD5:       str(o.SSECustomerKeyMD5),
		SSEKMSKeyId:             str(o.SSEKMSKeyId),
		ServerSideEncryption:    types.ServerSideEncryption(o.ServerSideEncryption),
		StorageClass:            types.StorageClass(o.StorageClass),
		Tagging:                 str(o.Tagging),
		WebsiteRedirectLocation: str(o.WebsiteRedirectLocation),
	}
}

// copyInput builds the CopyObject request. The customer key, when set,
// both decrypts the source and encrypts the copy.
func copyInput(in *objectstore.CopyInput) *s3.CopyObjectInput {
	o := in.Options
	input := &s3.CopyObjectInput{
		Bucket:                         aws.String(in.Bucket),
		Key:                            aws.String(in.Key),
		CopySource:                     aws.String(copySource(in.SourceBucket, in.SourceKey)),
		CopySourceSSECustomerAlgorithm: str(o.SSECustomerAlgorithm),
		CopySourceSSECustomerKey:       str(o.SSECustomerKey),
		CopySourceSSECustomerKeyMD5:    str(o.SSECustomerKeyMD5),
		ACL:                            types.ObjectCannedACL(o.ACL),
		CacheControl:                   str(o.CacheControl),
		ContentDisposition:             str(o.ContentDisposition),
		ContentEncoding:                str(o.ContentEncoding),
		ContentType:                    str(o.ContentType),
		Expires:                        o.Expires,
		GrantFullControl:               str(o.GrantFullControl),
		GrantRead:                      str(o.GrantRead),
		GrantReadACP:                   str(o.GrantReadACP),
		GrantWriteACP:                  str(o.GrantWriteACP),
		Metadata:                       o.Metadata,
		RequestPayer:                   types.RequestPayer(o.RequestPayer),
		SSECustomerAlgorithm:           str(o.SSECustomerAlgorithm),
		SSECustomerKey:                 str(o.SSECustomerKey),
		SSECustomerKeyMD5:              str(o.SSECustomerKeyMD5),
		SSEKMSKeyId:                    str(o.SSEKMSKeyId),
		ServerSideEncryption:           types.ServerSideEncryption(o.ServerSideEncryption),
		StorageClass:                   types.StorageClass(o.StorageClass),
		Tagging:                        str(o.Tagging),
		WebsiteRedirectLocation:        str(o.WebsiteRedirectLocation),
	}
	if o.Metadata != nil || o.ContentType != "" {
		input.MetadataDirective = types.MetadataDirectiveReplace
	}
	if o.Tagging != "" {
		input.TaggingDirective = types.TaggingDirectiveReplace
	}
	return input
}

// copySource is the URL-encoded "bucket/key" form S3 expects.
func copySource(bucket, key string) string {
	segs := strings.Split(key, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return bucket + "/" + strings.Join(segs, "/")
}

// str returns nil for empty strings so unset options are left out of requests.
func str(s string) *string {
	if s == "" {
		return nil
	}
	return aws.String(s)
}
