package detectkit

import "errors"

var (
	ErrUnknownStorage = errors.New("detectkit.unknown_storage")
	ErrOpenStorage    = errors.New("detectkit.open_storage_failed")
	ErrInvalidConfig  = errors.New("detectkit.invalid_config")
)
