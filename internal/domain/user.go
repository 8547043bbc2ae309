package domain

import "time"

// Role represents the user's subscription and permission level.
type Role string

const (
	// RoleUser grants standard viewer access.
	RoleUser Role = "user"
	// RolePremium grants access to premium content tiers.
	RolePremium Role = "premium"
	// RoleAdmin grants catalog and guide management access.
	RoleAdmin Role = "admin"
)

// ParseRole converts a string to a Role. Unknown values map to RoleUser.
func ParseRole(s string) Role {
	switch Role(s) {
	case RolePremium:
		return RolePremium
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleUser
	}
}

// User represents an authenticated viewer account.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	FullName     string     `json:"full_name,omitempty"`
	Role         Role       `json:"role"`
	IsActive     bool       `json:"is_active"`
	CreatedAt    time.Time  `json:"created_at"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
}

// IsAdmin returns true if the user can manage the catalog and guide.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Sanitized returns a copy safe to send to clients.
func (u *User) Sanitized() *User {
	clean := *u
	clean.PasswordHash = ""
	return &clean
}
