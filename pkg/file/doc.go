// Package file loads image binaries for detection from the local filesystem
// or from S3 and validates them before upload.
//
// A reference is either a filesystem path or an s3://bucket/key URI:
//
//	r := file.NewResolver(file.WithS3Source(s3src), file.WithMaxSize(20<<20))
//	blob, err := r.Open(ctx, "s3://uploads/cat.png")
//	if err != nil {
//		return err
//	}
//	if !file.IsImage(blob.MIMEType) {
//		return file.ErrNotImage
//	}
//	res, err := router.SubmitByBinary(ctx, blob.Data, blob.Name, visitorID)
//
// S3Source works with AWS S3 and S3-compatible services (MinIO, R2) through
// aws-sdk-go-v2. Its errors are mapped onto the package sentinels, so callers
// can test for ErrFileNotFound or ErrAccessDenied regardless of backend.
//
// Content type is detected from the leading bytes with http.DetectContentType,
// never from the file extension alone.
package file
