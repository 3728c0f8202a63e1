package auth

import (
	"fmt"
	"time"
)

// Role is the fixed set of account roles. Admin is never represented by grant
// rows; it bypasses the permission store entirely.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleBuyer    Role = "buyer"
	RoleSupplier Role = "supplier"
	RoleCustom   Role = "custom"
)

// ParseRole validates a raw role value against the fixed set.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleAdmin, RoleBuyer, RoleSupplier, RoleCustom:
		return Role(raw), nil
	}
	return "", fmt.Errorf("auth: unknown role %q", raw)
}

// User represents a registered account.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	IsVerified   bool      `json:"is_verified"`
	CreatedAt    time.Time `json:"created_at"`
}
