package auth

import (
	"blogdesk/internal/errors"
	"blogdesk/internal/model"
)

// Authorize compares the session role claim against the required role.
// It returns nil to allow, errors.ErrUnauthenticated when there is no session
// and errors.ErrForbidden when the role does not match.
//
// The role claim is the one minted at login, so a role change made by an
// admin applies from the affected user's next login.
func Authorize(session *Claims, required model.Role) error {
	if session == nil {
		return errors.ErrUnauthenticated
	}
	if session.Role != required {
		return errors.ErrForbidden
	}
	return nil
}
