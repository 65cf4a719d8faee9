package bootstrap

import "errors"

var (
	ErrRegisterFailed = errors.New("bootstrap.register_failed")
	ErrLoginFailed    = errors.New("bootstrap.login_failed")
)
