// Package requestid carries a correlation identifier for outbound API calls.
//
// A request ID is a short opaque string attached to every request the client
// sends to the detection backends (as the "X-Request-ID" header) and to every
// log record written while that call is in flight. It lets an operator match a
// failed detection in local logs with the backend's own records.
//
// # Usage
//
//	ctx := requestid.Ensure(context.Background())
//	log.InfoContext(ctx, "submitting") // request_id attached by LoggerExtractor
//
// IDs supplied by callers through WithContext are validated; an invalid or
// empty ID is replaced by a fresh UUIDv4 when Ensure is used.
package requestid
