package domain

import "errors"

var (
	ErrUnknownOperation = errors.New("unknown operation")
	ErrMissingParameter = errors.New("missing parameter")
	ErrUnknownParameter = errors.New("unknown parameter")
	ErrAccountsInvalid  = errors.New("account file entries must have email and password")
)
