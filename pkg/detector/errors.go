package detector

import "errors"

var (
	// ErrQuotaExceeded is a local condition: the anonymous limit is reached and
	// no request was sent.
	ErrQuotaExceeded = errors.New("detector.quota_exceeded")

	ErrVisitorIDRequired = errors.New("detector.visitor_id_required")
	ErrEmptyURL          = errors.New("detector.empty_url")
	ErrEmptyBinary       = errors.New("detector.empty_binary")
	ErrEmptyResultID     = errors.New("detector.empty_result_id")
	ErrUnknownKind       = errors.New("detector.unknown_request_kind")
)

// IsQuotaExceeded reports whether err is ErrQuotaExceeded.
func IsQuotaExceeded(err error) bool {
	return errors.Is(err, ErrQuotaExceeded)
}
