package domain

import (
	"strings"
	"time"
)

// User is the backend user record. Password holds either a bcrypt hash or,
// for seeded fixtures, the plaintext value.
type User struct {
	ID        ID        `json:"id,omitempty"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"password,omitempty"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// PublicUser is the projection handed to callers; it has no password field at all.
type PublicUser struct {
	ID        ID     `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      Role   `json:"role"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		FirstName: u.FirstName,
		LastName:  u.LastName,
	}
}

// MatchesLogin reports whether identifier names this user by username or email.
func (u User) MatchesLogin(identifier string) bool {
	return identifier != "" && (u.Username == identifier || u.Email == identifier)
}

// Conflicts reports which unique field of u collides with candidate, if any.
func (u User) Conflicts(username, email string) (string, bool) {
	if strings.EqualFold(u.Username, username) {
		return "username", true
	}
	if strings.EqualFold(u.Email, email) {
		return "email", true
	}
	return "", false
}

// Actor identifies who is performing an operation.
type Actor struct {
	ID   ID
	Role Role
}

func (a Actor) Authenticated() bool { return !a.ID.IsZero() }

func (a Actor) Can(p Permission) bool { return HasPermission(a.Role, p) }
