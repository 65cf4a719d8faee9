package session

import "errors"

var (
	// ErrTokenAlreadySet is returned by SetToken when a token is already stored.
	ErrTokenAlreadySet = errors.New("session.token_already_set")

	// ErrEmptyToken is returned by SetToken for a blank token.
	ErrEmptyToken = errors.New("session.empty_token")

	// ErrStorage wraps backend failures.
	ErrStorage = errors.New("session.storage_failed")
)
