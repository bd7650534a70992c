package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/frahmantamala/pass-management/internal"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Service is the main auth service with dependencies
type Service struct {
	repo           RepositoryAPI
	tokenGenerator TokenGenerator
	bcryptCost     int
	logger         *slog.Logger
	now            func() time.Time

	// compared against when the username is unknown so both login failures
	// cost one bcrypt comparison
	dummyHash []byte
}

// NewService creates a new auth service
func NewService(repo RepositoryAPI, tokenGen TokenGenerator, bcryptCost int, logger *slog.Logger) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	if logger == nil {
		logger = slog.Default()
	}
	dummy, _ := bcrypt.GenerateFromPassword([]byte("pass-management-dummy"), bcryptCost)
	return &Service{
		repo:           repo,
		tokenGenerator: tokenGen,
		bcryptCost:     bcryptCost,
		logger:         logger,
		now:            time.Now,
		dummyHash:      dummy,
	}
}

// NewJWTTokenGenerator creates a new HS256 token generator
func NewJWTTokenGenerator(secret, issuer string, ttl time.Duration) *JWTTokenGenerator {
	return &JWTTokenGenerator{
		Secret:   []byte(secret),
		Issuer:   issuer,
		TokenTTL: ttl,
	}
}

// Register creates an EMPLOYEE account.
func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*User, error) {
	return s.createUser(ctx, dto, RoleEmployee)
}

// ProvisionAdmin creates an ADMIN account. It is only reachable from the
// operator CLI; roles cannot be changed over HTTP.
func (s *Service) ProvisionAdmin(ctx context.Context, dto RegisterDTO) (*User, error) {
	return s.createUser(ctx, dto, RoleAdmin)
}

func (s *Service) createUser(ctx context.Context, dto RegisterDTO, role Role) (*User, error) {
	dto.Username = strings.TrimSpace(dto.Username)
	dto.Email = strings.TrimSpace(dto.Email)
	dto.FullName = strings.TrimSpace(dto.FullName)
	dto.Department = strings.TrimSpace(dto.Department)

	if appErr := dto.Validate(); appErr != nil {
		s.logger.Warn("registration validation failed", "username", dto.Username, "error", appErr.GetDetailedMessage())
		return nil, appErr
	}

	exists, err := s.repo.UsernameExists(ctx, dto.Username)
	if err != nil {
		s.logger.Error("failed to check username", "error", err, "username", dto.Username)
		return nil, internal.NewInternalError("failed to register user", err)
	}
	if exists {
		s.logger.Warn("registration rejected: username taken", "username", dto.Username)
		return nil, internal.ErrUsernameTaken
	}

	hash, err := HashPassword(dto.Password, s.bcryptCost)
	if err != nil {
		return nil, internal.NewInternalError("failed to hash password", err)
	}

	u := &User{
		Username:   dto.Username,
		FullName:   dto.FullName,
		Email:      dto.Email,
		Department: dto.Department,
		Role:       role,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.repo.CreateUser(ctx, u, hash); err != nil {
		if errors.Is(err, internal.ErrUsernameTaken) {
			return nil, internal.ErrUsernameTaken
		}
		s.logger.Error("failed to create user", "error", err, "username", dto.Username)
		return nil, internal.NewInternalError("failed to register user", err)
	}

	s.logger.Info("user registered", "user_id", u.ID, "username", u.Username, "role", u.Role)
	return u, nil
}

// Login verifies credentials and issues a bearer token. Missing fields,
// unknown usernames and wrong passwords all produce the same error.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (*User, string, error) {
	dto.Username = strings.TrimSpace(dto.Username)
	if appErr := dto.Validate(); appErr != nil {
		s.logger.Warn("login rejected: missing credentials", "error", appErr.GetDetailedMessage())
		return nil, "", internal.ErrInvalidCredentials
	}

	creds, err := s.repo.GetCredentialsByUsername(ctx, dto.Username)
	if err != nil {
		if !errors.Is(err, internal.ErrUserNotFound) {
			s.logger.Error("failed to load credentials", "error", err)
			return nil, "", internal.NewInternalError("failed to authenticate", err)
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(dto.Password))
		s.logger.Warn("login failed", "username", dto.Username)
		return nil, "", internal.ErrInvalidCredentials
	}

	if err := VerifyPassword(creds.PasswordHash, dto.Password); err != nil {
		s.logger.Warn("login failed", "username", dto.Username)
		return nil, "", internal.ErrInvalidCredentials
	}

	token, _, err := s.tokenGenerator.GenerateAccessToken(creds.User.ID, creds.User.Role)
	if err != nil {
		return nil, "", internal.NewInternalError("failed to issue token", err)
	}

	s.logger.Info("user logged in", "user_id", creds.User.ID, "role", creds.User.Role)
	u := creds.User
	return &u, token, nil
}

// Authenticate resolves a bearer token to the current user record.
func (s *Service) Authenticate(ctx context.Context, token string) (*User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, internal.ErrMissingToken
	}

	claims, err := s.tokenGenerator.ValidateToken(token)
	if err != nil {
		return nil, err
	}

	u, err := s.repo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, internal.ErrUserNotFound) {
			s.logger.Warn("token refers to unknown user", "user_id", claims.UserID)
			return nil, internal.ErrInvalidToken
		}
		return nil, internal.NewInternalError("failed to load user", err)
	}

	return u, nil
}

// GenerateAccessToken creates a signed token carrying the user id, role and expiry.
func (j *JWTTokenGenerator) GenerateAccessToken(userID int64, role Role) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(j.TokenTTL)

	claims := &Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    j.Issuer,
			Subject:   strconv.FormatInt(userID, 10),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(j.Secret)
	if err != nil {
		return "", time.Time{}, err
	}

	return tokenString, expiresAt, nil
}

// ValidateToken validates a JWT token and returns claims
func (j *JWTTokenGenerator) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if j.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(j.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.Secret, nil
	}, opts...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, internal.ErrTokenExpired
		}
		return nil, internal.ErrInvalidToken.WithCause(err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.UserID <= 0 || !claims.Role.Valid() {
		return nil, internal.ErrInvalidToken
	}
	if claims.Subject != strconv.FormatInt(claims.UserID, 10) {
		return nil, internal.ErrInvalidToken
	}

	return claims, nil
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
