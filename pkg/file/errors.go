package file

import "errors"

var (
	ErrEmptyReference = errors.New("empty file reference")
	ErrInvalidPath    = errors.New("invalid path")
	ErrIsDirectory    = errors.New("path is a directory")
	ErrFileNotFound   = errors.New("file not found")
	ErrEmptyFile      = errors.New("file is empty")
	ErrFileTooLarge   = errors.New("file size exceeds maximum allowed size")
	ErrNotImage       = errors.New("file is not an image")
	ErrNoS3Source     = errors.New("s3 reference without configured s3 source")

	ErrFailedToOpenFile = errors.New("failed to open file")
	ErrFailedToReadFile = errors.New("failed to read file")

	// S3 error classes.
	ErrBucketNotFound     = errors.New("bucket not found")
	ErrAccessDenied       = errors.New("access denied")
	ErrRequestTimeout     = errors.New("request timed out")
	ErrServiceUnavailable = errors.New("service temporarily unavailable")
	ErrInvalidObjectState = errors.New("invalid object state")

	ErrOperationTimeout  = errors.New("operation timed out")
	ErrOperationCanceled = errors.New("operation canceled")

	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrFailedToLoadConfig = errors.New("failed to load AWS config")
)
