package postgres

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/pollstream/pollstream-api/internal/apperrors"
	"github.com/pollstream/pollstream-api/internal/domain/user"
	"github.com/pollstream/pollstream-api/internal/logger"
)

// PostgresUserRepository implements UserRepository using GORM
type PostgresUserRepository struct {
	db  *gorm.DB
	log *log.Logger
}

// NewPostgresUserRepository creates a new PostgreSQL user repository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{
		db:  db,
		log: logger.Repository("user"),
	}
}

func (r *PostgresUserRepository) Create(u *user.User) (*user.User, error) {
	r.log.Debug("creating user", "email", u.Email)

	if err := r.db.Create(u).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, apperrors.Conflict("email already registered")
		}
		r.log.Error("failed to create user", "email", u.Email, "error", err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	r.log.Info("user created", "user_id", u.ID, "is_admin", u.IsAdmin)
	return u, nil
}

func (r *PostgresUserRepository) GetByID(id uuid.UUID) (*user.User, error) {
	var u user.User
	if err := r.db.First(&u, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user %s", id)
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return &u, nil
}

func (r *PostgresUserRepository) GetByEmail(email string) (*user.User, error) {
	var u user.User
	if err := r.db.First(&u, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user with email %s", email)
		}
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	return &u, nil
}

func (r *PostgresUserRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&user.User{}).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}
