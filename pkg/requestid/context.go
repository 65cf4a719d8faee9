package requestid

import (
	"context"
	"regexp"

	"github.com/google/uuid"
)

// Header is the canonical header name used to propagate the request ID.
const Header = "X-Request-ID"

const maxIDLength = 128

var idPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

type contextKey struct{}

// WithContext stores requestID in ctx.
func WithContext(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKey{}, requestID)
}

// FromContext returns the request ID carried by ctx, or "".
func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	requestID, ok := ctx.Value(contextKey{}).(string)
	if !ok {
		return ""
	}
	return requestID
}

// New returns a fresh request ID.
func New() string {
	return uuid.NewString()
}

// Valid reports whether id may be sent to the backend as is.
func Valid(id string) bool {
	return id != "" && len(id) <= maxIDLength && idPattern.MatchString(id)
}

// Ensure returns ctx carrying a valid request ID, generating one when ctx has
// none or holds an invalid value.
func Ensure(ctx context.Context) context.Context {
	if Valid(FromContext(ctx)) {
		return ctx
	}
	return WithContext(ctx, New())
}
