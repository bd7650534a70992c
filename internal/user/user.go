package user

import (
	"time"

	"github.com/frahmantamala/pass-management/internal/auth"
)

// User is the profile returned by GET /users/me.
type User struct {
	ID         int64     `json:"id" db:"id"`
	Username   string    `json:"username" db:"username"`
	FullName   string    `json:"fullName" db:"full_name"`
	Email      string    `json:"email" db:"email"`
	Department string    `json:"department" db:"department"`
	Role       auth.Role `json:"role" db:"role"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}
