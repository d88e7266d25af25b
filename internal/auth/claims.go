package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"blogdesk/internal/model"
)

// Claims is the typed session payload.
// Subject and UserID both carry the user id.
type Claims struct {
	UserID string     `json:"id"`
	Name   string     `json:"name,omitempty"`
	Email  string     `json:"email"`
	Role   model.Role `json:"role"`
	jwt.RegisteredClaims
}

// Ensure Claims is validated by the parser after the registered claims.
var _ jwt.ClaimsValidator = (*Claims)(nil)

// Validate rejects tokens whose application claims are incomplete.
func (c *Claims) Validate() error {
	if c.UserID == "" || c.UserID != c.Subject {
		return errors.New("session subject mismatch")
	}
	if c.Email == "" {
		return errors.New("session email missing")
	}
	if !c.Role.Valid() {
		return errors.New("session role invalid")
	}
	return nil
}

// SessionUser is the client visible view of a session.
type SessionUser struct {
	ID    string     `json:"id"`
	Name  string     `json:"name,omitempty"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

// User returns the client visible identity carried by the claims.
func (c *Claims) User() SessionUser {
	return SessionUser{ID: c.UserID, Name: c.Name, Email: c.Email, Role: c.Role}
}

// DisplayName is the name shown as a blog author.
func (c *Claims) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Email
}
