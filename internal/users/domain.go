package users

import (
	"time"

	"github.com/priceopt/priceopt/internal/auth"
)

// User is the management view of an account.
type User struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Role       auth.Role `json:"role"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}
