package logger

import (
	"log/slog"
	"time"
)

// Error records err under the "error" key. A nil error yields an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Mode records the routing mode (authenticated or anonymous).
func Mode(mode string) slog.Attr {
	return slog.String("mode", mode)
}

// VisitorID records the anonymous visitor identifier. Empty ids are skipped.
func VisitorID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("visitor_id", id)
}

// ResultID records a detection result identifier. Empty ids are skipped.
func ResultID(id string) slog.Attr {
	if id == "" {
		return slog.Attr{}
	}
	return slog.String("result_id", id)
}

// Method records the HTTP method.
func Method(method string) slog.Attr {
	return slog.String("method", method)
}

// Endpoint records the request path relative to the backend base URL.
func Endpoint(endpoint string) slog.Attr {
	return slog.String("endpoint", endpoint)
}

// StatusCode records the HTTP response status.
func StatusCode(code int) slog.Attr {
	return slog.Int("status_code", code)
}

// Duration records how long a call took.
func Duration(d time.Duration) slog.Attr {
	return slog.Duration("duration", d)
}

// State records a bootstrap state machine state.
func State(name string) slog.Attr {
	return slog.String("state", name)
}

// Usage records the anonymous usage counter value.
func Usage(count int) slog.Attr {
	return slog.Int("usage", count)
}

// Component tags records with the emitting package.
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
