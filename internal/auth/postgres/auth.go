package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/pass-management/internal"
	"github.com/frahmantamala/pass-management/internal/auth"
	userDatamodel "github.com/frahmantamala/pass-management/internal/core/datamodel/user"
	"gorm.io/gorm"
)

// Repository is the gorm backed identity store.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser inserts u and fills in its generated id.
func (r *Repository) CreateUser(ctx context.Context, u *auth.User, passwordHash string) error {
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}

	row := userDatamodel.User{
		Username:     u.Username,
		PasswordHash: passwordHash,
		FullName:     u.FullName,
		Email:        u.Email,
		Department:   u.Department,
		Role:         u.Role.String(),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    now,
	}

	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return internal.ErrUsernameTaken
		}
		return err
	}

	u.ID = row.ID
	return nil
}

func (r *Repository) GetCredentialsByUsername(ctx context.Context, username string) (*auth.Credentials, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}

	return &auth.Credentials{
		User:         toDomain(row),
		PasswordHash: row.PasswordHash,
	}, nil
}

func (r *Repository) GetUserByID(ctx context.Context, id int64) (*auth.User, error) {
	var row userDatamodel.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, internal.ErrUserNotFound
		}
		return nil, err
	}

	u := toDomain(row)
	return &u, nil
}

func (r *Repository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("username = ?", username).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func toDomain(row userDatamodel.User) auth.User {
	return auth.User{
		ID:         row.ID,
		Username:   row.Username,
		FullName:   row.FullName,
		Email:      row.Email,
		Department: row.Department,
		Role:       auth.Role(row.Role),
		CreatedAt:  row.CreatedAt.UTC(),
	}
}
