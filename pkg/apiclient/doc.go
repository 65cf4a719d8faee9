// Package apiclient executes JSON requests against the detection backends and
// classifies their responses.
//
// A Client is bound to one base URL. Every request carries
// "Authorization: Bearer <token>", where the token is read through a TokenFunc
// at send time; a missing token is sent as an empty bearer, which the backends
// treat as anonymous. Bodies are either JSON (see JSON) or a pre-built
// multipart upload (see Multipart).
//
// # Error taxonomy
//
// Failures are returned as *Error with a StatusClass:
//
//   - ClassBadRequest   HTTP 400, Payload holds the decoded JSON body
//   - ClassUnauthorized HTTP 401
//   - ClassNotFound     HTTP 404
//   - ClassOther        any other non-2xx status, network failure or an
//     undecodable response body
//
// The sentinels ErrBadRequest, ErrUnauthorized, ErrNotFound and
// ErrRequestFailed match the classes through errors.Is.
//
// The client never retries. Each request is bounded by the timeout set with
// WithTimeout, traced with OpenTelemetry and, on failure, logged.
package apiclient
