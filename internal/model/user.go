package model

import "time"

// Role is the authorization level carried by a user and its session.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents an authenticated user in the system.
type User struct {
	ID           string    `json:"id" bson:"_id" gorm:"primaryKey;size:24"`
	Name         string    `json:"name,omitempty" bson:"name,omitempty" gorm:"size:255"`
	Email        string    `json:"email" bson:"email" gorm:"uniqueIndex;size:255;not null"`
	PasswordHash string    `json:"-" bson:"password" gorm:"column:password;size:255;not null"` // Never expose in JSON
	Role         Role      `json:"role" bson:"role" gorm:"size:16;not null;default:user"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
}

// UserRef is the public projection of a user embedded in other resources.
type UserRef struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// Ref returns the public projection of u.
func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Name: u.Name, Email: u.Email}
}
