package domain

import (
	"strings"
	"time"
)

// Roles known to the backend. Any other role string is treated as a regular member.
const (
	RoleAdmin            = "admin"
	RoleLogisticsOfficer = "logistics_officer"
)

// DefaultBases is the base list used when the config does not provide one
var DefaultBases = []string{
	"Alpha Base",
	"Bravo Base",
	"Charlie Base",
	"Delta Base",
}

// User is an authenticated identity
type User struct {
	ID       string `json:"_id"`
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Role     string `json:"role"`
	Base     string `json:"base"`
}

// IsAdmin reports whether the user holds the admin role
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Initial returns the upper-cased first letter of the full name
func (u User) Initial() string {
	name := strings.TrimSpace(u.FullName)
	if name == "" {
		return "?"
	}
	return strings.ToUpper(string([]rune(name)[0]))
}

// Session is the persisted result of a successful login
type Session struct {
	Token     string    `json:"token"`
	User      User      `json:"user"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
}

// Valid reports whether the session carries a token that has not expired
func (s *Session) Valid(now time.Time) bool {
	if s == nil || s.Token == "" {
		return false
	}
	if !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt) {
		return false
	}
	return true
}

// Credentials is the payload of POST /auth/login
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the payload of POST /auth/register
type Registration struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone,omitempty"`
	Base     string `json:"base"`
}

// ProfileUpdate is the payload of PUT /auth/profile
type ProfileUpdate struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Base     string `json:"base"`
}

// AuthResult is returned by the login and register endpoints
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
