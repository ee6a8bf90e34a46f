package auth

import "errors"

var (
	// ErrUnauthorized covers both unknown email and wrong password so a
	// login failure never reveals whether the account exists.
	ErrUnauthorized = errors.New("auth: invalid credentials")
	// ErrLocked is returned while an account lockout is in effect.
	ErrLocked     = errors.New("auth: account locked")
	ErrConflict   = errors.New("auth: email already in use")
	ErrNotFound   = errors.New("auth: not found")
	ErrBadRequest = errors.New("auth: invalid input")

	ErrInvalidToken   = errors.New("auth: invalid token")
	ErrTokenExpired   = errors.New("auth: token expired")
	ErrTokenMalformed = errors.New("auth: token malformed")
)
