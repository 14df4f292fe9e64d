package domain

import "errors"

var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("not found")
	ErrOutOfRange      = errors.New("stage index out of range")
	ErrLocked          = errors.New("application locked by insolvency")
	ErrNoChallenge     = errors.New("no code challenge for message")
	ErrAlreadyResolved = errors.New("message already resolved")
	ErrUpstream        = errors.New("upstream failure")
)
