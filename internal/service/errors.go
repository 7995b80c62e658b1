package service

import (
	"errors"

	"marketplace/internal/auth"
)

var (
	ErrDuplicateIdentity  = errors.New("username or email already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserDisabled       = errors.New("user is disabled")
	ErrUserNotFound       = errors.New("user not found")
	ErrProductNotFound    = errors.New("product not found")
	ErrCannotModifySelf   = errors.New("admins cannot demote, deactivate or delete themselves")
	ErrMediaTooLarge      = errors.New("media exceeds the size limit")
	ErrInvalidInput       = errors.New("invalid input")

	// ErrForbidden is the same value the auth package returns, so a single
	// errors.Is check covers both layers.
	ErrForbidden = auth.ErrForbidden
)
