package auth

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenGenerator issues and validates bearer tokens.
type TokenGenerator interface {
	GenerateAccessToken(userID int64, role Role) (token string, expiresAt time.Time, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

// RepositoryAPI is the identity store as seen by the auth service.
type RepositoryAPI interface {
	CreateUser(ctx context.Context, u *User, passwordHash string) error
	GetCredentialsByUsername(ctx context.Context, username string) (*Credentials, error)
	GetUserByID(ctx context.Context, id int64) (*User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
}

type ServiceAPI interface {
	Register(ctx context.Context, dto RegisterDTO) (*User, error)
	Login(ctx context.Context, dto LoginDTO) (*User, string, error)
	Authenticate(ctx context.Context, token string) (*User, error)
}

// Claims represents JWT token claims. The subject holds the user id.
type Claims struct {
	UserID int64 `json:"uid"`
	Role   Role  `json:"role"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	Secret   []byte
	Issuer   string
	TokenTTL time.Duration
}

// AuthResponse is returned by the login endpoint.
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
