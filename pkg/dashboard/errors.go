package dashboard

import (
	"errors"

	"github.com/dmitrymomot/detectkit/pkg/apiclient"
)

var (
	ErrNoAPIKey     = errors.New("dashboard.no_api_key")
	ErrInvalidRange = errors.New("dashboard.invalid_range")
)

// IsAlreadyRegistered reports whether a Register error means the account
// already exists. The backend answers sign-up for a known visitor with 400.
func IsAlreadyRegistered(err error) bool {
	return errors.Is(err, apiclient.ErrBadRequest)
}
