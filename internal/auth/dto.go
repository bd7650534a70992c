package auth

import (
	"regexp"

	"github.com/frahmantamala/pass-management/internal"
	"github.com/frahmantamala/pass-management/internal/core/common/validation"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)

// LoginDTO is the transport shape used by the HTTP handler to accept login requests.
type LoginDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterDTO carries self-registration data. There is no role field: every
// registered account starts as an employee.
type RegisterDTO struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	FullName   string `json:"fullName"`
	Email      string `json:"email"`
	Department string `json:"department"`
}

func (d LoginDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("username", d.Username).Required()
	v.Field("password", d.Password).Required()
	return v.Validate()
}

func (d RegisterDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("username", d.Username).
		Required().
		MinLength(3).
		MaxLength(50).
		Matches(usernamePattern, "username may only contain letters, digits, '.', '_' and '-'", internal.ErrCodeInvalidUsername)
	// bcrypt ignores input past 72 bytes
	v.Field("password", d.Password).
		Required().
		MinLength(6).
		MaxLength(72)
	v.Field("fullName", d.FullName).
		Required().
		MaxLength(100)
	v.Field("email", d.Email).
		Required().
		MaxLength(255).
		Email()
	v.Field("department", d.Department).
		MaxLength(100)
	return v.Validate()
}
