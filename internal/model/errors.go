package model

import "errors"

var (
	// Credential and account errors. ErrInvalidCredentials covers both an
	// unknown email and a wrong password so callers cannot probe which
	// addresses are registered.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already exists")
	ErrRoleNotFound       = errors.New("role not found")
	ErrUserNotFound       = errors.New("user not found")

	// Token errors. Expired means the signature checked out but the expiry
	// elapsed; invalid covers bad signatures, malformed tokens, and tokens
	// verified against the wrong class secret.
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")

	// Guard decisions.
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	ErrInvalidInput = errors.New("invalid input")
)
