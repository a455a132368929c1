// Package models defines the records the back office reads from and writes
// to the REST backend. The backend owns them; the client only holds copies
// that are refreshed by refetching after every mutation.
package models

import "strings"

const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User is the profile returned by the login endpoint and persisted next to
// the token. Older backends send the role as "role", newer ones as
// "user_type"; either is accepted.
type User struct {
	ID       int64  `json:"id"`
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	UserType string `json:"user_type,omitempty"`
	Role     string `json:"role,omitempty"`
}

// RoleName returns the role marker, preferring user_type.
func (u User) RoleName() string {
	if u.UserType != "" {
		return strings.ToLower(u.UserType)
	}
	return strings.ToLower(u.Role)
}

func (u User) IsAdmin() bool {
	return u.RoleName() == RoleAdmin
}

// Valid reports whether u looks like a profile the backend issued.
func (u User) Valid() bool {
	return u.ID > 0
}

// DisplayName is used in the shell prompt.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
