package storage

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

var (
	ErrInvalidConfig  = errors.New("storage: invalid configuration")
	ErrEmptyFile      = errors.New("storage: file is empty")
	ErrFileTooLarge   = errors.New("storage: file exceeds size limit")
	ErrInvalidKey     = errors.New("storage: invalid key")
	ErrNotFound       = errors.New("storage: file not found")
	ErrAccessDenied   = errors.New("storage: access denied")
	ErrUploadFailed   = errors.New("storage: upload failed")
	ErrDownloadFailed = errors.New("storage: download failed")
	ErrDeleteFailed   = errors.New("storage: delete failed")
	ErrListFailed     = errors.New("storage: list failed")
	ErrPresignFailed  = errors.New("storage: presign failed")
	ErrUnavailable    = errors.New("storage: bucket unavailable")
)

// wrapS3Error maps S3 errors onto sentinels. The original error is kept as
// text only; callers match sentinels, not AWS types.
func wrapS3Error(err error, fallback error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		case "AccessDenied", "Forbidden":
			return fmt.Errorf("%w: %v", ErrAccessDenied, err)
		}
	}

	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return fmt.Errorf("%w: %v", fallback, err)
}
