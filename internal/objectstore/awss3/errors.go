package awss3

import (
	"context"
	"errors"
	"net/http"

	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/smithy-go"

	"github.com/koustreak/bucketfs/internal/errs"
)

// errorCode returns the S3 error code carried by err, or "".
func errorCode(err error) string {
	var ae smithy.APIError
	if errors.As(err, &ae) {
		return ae.ErrorCode()
	}
	return ""
}

// mapError translates an AWS SDK error into a *errs.Error.
func mapError(err error, msg string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	switch errorCode(err) {
	case "NoSuchKey", "NoSuchBucket", "NotFound", "NoSuchUpload":
		return errs.Wrap(errs.ErrKindNotFound, msg, err)
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "AllAccessDisabled":
		return errs.Wrap(errs.ErrKindPermissionDenied, msg, err)
	case "InvalidBucketName", "InvalidArgument", "KeyTooLongError", "InvalidRequest":
		return errs.Wrap(errs.ErrKindInvalidInput, msg, err)
	case "NotImplemented", "AccessControlListNotSupported":
		return errs.Wrap(errs.ErrKindNotSupported, msg, err)
	case "RequestTimeout", "SlowDown", "RequestTimeTooSkewed":
		return errs.Wrap(errs.ErrKindTimeout, msg, err)
	}

	var re *awshttp.ResponseError
	if errors.As(err, &re) {
		switch status := re.HTTPStatusCode(); {
		case status == http.StatusNotFound:
			return errs.Wrap(errs.ErrKindNotFound, msg, err)
		case status == http.StatusForbidden || status == http.StatusUnauthorized:
			return errs.Wrap(errs.ErrKindPermissionDenied, msg, err)
		case status == http.StatusNotImplemented:
			return errs.Wrap(errs.ErrKindNotSupported, msg, err)
		case status >= 400:
			return errs.Wrap(errs.ErrKindOperationFailed, msg, err)
		}
	}

	var ae smithy.APIError
	if errors.As(err, &ae) {
		return errs.Wrap(errs.ErrKindOperationFailed, msg, err)
	}

	return errs.Wrap(errs.ErrKindConnectionFailed, msg, err)
}
