package kvstore

import "errors"

var (
	ErrEmptyKey  = errors.New("kvstore.empty_key")
	ErrEmptyPath = errors.New("kvstore.empty_path")
)
