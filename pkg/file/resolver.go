package file

import (
	"context"
	"strings"
)

// Source loads a single reference.
type Source interface {
	Open(ctx context.Context, ref string) (*Blob, error)
}

// Resolver dispatches references to the local filesystem or S3.
type Resolver struct {
	s3      Source
	maxSize int64
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithS3Source enables s3:// references.
func WithS3Source(src Source) ResolverOption {
	return func(r *Resolver) {
		r.s3 = src
	}
}

// WithMaxSize caps local reads. Default is DefaultMaxSize.
func WithMaxSize(maxBytes int64) ResolverOption {
	return func(r *Resolver) {
		r.maxSize = maxBytes
	}
}

// NewResolver returns a Resolver reading local files. S3 references need WithS3Source.
func NewResolver(opts ...ResolverOption) *Resolver {
	r := &Resolver{maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Open loads ref: s3://bucket/key through the S3 source, anything else from disk.
func (r *Resolver) Open(ctx context.Context, ref string) (*Blob, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrEmptyReference
	}
	if strings.HasPrefix(ref, "s3://") {
		if r.s3 == nil {
			return nil, ErrNoS3Source
		}
		return r.s3.Open(ctx, ref)
	}
	return ReadLocal(ctx, ref, r.maxSize)
}
