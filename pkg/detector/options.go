package detector

import "log/slog"

// ChargePolicy decides when an anonymous submission consumes quota.
type ChargePolicy int

const (
	// ChargeOnDispatch increments usage right before the request is sent.
	// Failed requests are charged too.
	ChargeOnDispatch ChargePolicy = iota
	// ChargeOnSuccess increments usage only after a successful response. The
	// slot stays reserved while the call is in flight.
	ChargeOnSuccess
)

func (p ChargePolicy) String() string {
	if p == ChargeOnSuccess {
		return "on_success"
	}
	return "on_dispatch"
}

// Default upload filenames, matching what each backend expects when the
// caller supplies none.
const (
	DefaultAuthenticatedFilename = "uploaded-file.png"
	DefaultAnonymousFilename     = "file_name.png"
)

// Option configures a Router.
type Option func(*Router)

// WithChargePolicy selects when usage is charged. Default is ChargeOnDispatch.
func WithChargePolicy(p ChargePolicy) Option {
	return func(r *Router) {
		r.charge = p
	}
}

// WithLogger sets the logger for routing decisions.
func WithLogger(log *slog.Logger) Option {
	return func(r *Router) {
		if log != nil {
			r.log = log
		}
	}
}

// WithSource overrides the source query parameter sent to the anonymous
// backend. Default is "web".
func WithSource(source string) Option {
	return func(r *Router) {
		if source != "" {
			r.source = source
		}
	}
}
