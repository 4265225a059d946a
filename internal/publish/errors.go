package publish

import "errors"

var (
	// ErrNotConfigured indicates uploads were requested without a bucket.
	ErrNotConfigured = errors.New("S3 publishing is not configured")

	// ErrUpload indicates an object could not be stored.
	ErrUpload = errors.New("upload failed")
)
