package apiclient

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrBadRequest    = errors.New("apiclient.bad_request")
	ErrUnauthorized  = errors.New("apiclient.unauthorized")
	ErrNotFound      = errors.New("apiclient.not_found")
	ErrRequestFailed = errors.New("apiclient.request_failed")

	ErrInvalidBaseURL   = errors.New("apiclient.invalid_base_url")
	ErrInvalidResponse  = errors.New("apiclient.invalid_response")
	ErrEmptyResponse    = errors.New("apiclient.empty_response")
	ErrTokenUnavailable = errors.New("apiclient.token_unavailable")
)

// StatusClass is the closed set of failure kinds a request can end with.
type StatusClass int

const (
	ClassOther StatusClass = iota
	ClassBadRequest
	ClassUnauthorized
	ClassNotFound
)

func (c StatusClass) String() string {
	switch c {
	case ClassBadRequest:
		return "bad request"
	case ClassUnauthorized:
		return "unauthorized"
	case ClassNotFound:
		return "not found"
	default:
		return "request failed"
	}
}

func (c StatusClass) sentinel() error {
	switch c {
	case ClassBadRequest:
		return ErrBadRequest
	case ClassUnauthorized:
		return ErrUnauthorized
	case ClassNotFound:
		return ErrNotFound
	default:
		return ErrRequestFailed
	}
}

// Error describes a failed request.
type Error struct {
	Class      StatusClass
	StatusCode int // 0 when no response was received
	Method     string
	Endpoint   string
	// Payload is the decoded response body: a JSON value, the raw text when
	// the body is not JSON, or nil.
	Payload any
	Cause   error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Method != "" {
		fmt.Fprintf(&b, "%s %s: ", e.Method, e.Endpoint)
	}
	b.WriteString(e.Class.String())
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, " (status %d)", e.StatusCode)
	}
	if e.Payload != nil {
		fmt.Fprintf(&b, ": %v", e.Payload)
	}
	if e.Cause != nil {
		b.WriteString(": " + e.Cause.Error())
	}
	return b.String()
}

// Unwrap exposes the class sentinel and the underlying cause to errors.Is/As.
func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Class.sentinel()}
	}
	return []error{e.Class.sentinel(), e.Cause}
}

// ClassOf returns the StatusClass of the first *Error in err's chain.
func ClassOf(err error) (StatusClass, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Class, true
	}
	return ClassOther, false
}
