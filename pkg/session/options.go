package session

import "log/slog"

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for state changes. Defaults to a discarding logger.
func WithLogger(log *slog.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}
