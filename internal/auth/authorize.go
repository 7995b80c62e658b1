package auth

import (
	"errors"
	"fmt"

	"marketplace/internal/entity"
)

// ErrForbidden means the caller's role is not on the allow-list.
var ErrForbidden = errors.New("forbidden")

// Authorize is the single role check used by routes and services.
func Authorize(role entity.Role, allowed ...entity.Role) error {
	if role.In(allowed...) {
		return nil
	}
	return fmt.Errorf("%w: role %q not permitted", ErrForbidden, role)
}
