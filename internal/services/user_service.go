package services

import (
	"errors"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/pollstream/pollstream-api/internal/apperrors"
	"github.com/pollstream/pollstream-api/internal/auth"
	"github.com/pollstream/pollstream-api/internal/domain/user"
	"github.com/pollstream/pollstream-api/internal/logger"
	"github.com/pollstream/pollstream-api/internal/storage/postgres"
	"github.com/pollstream/pollstream-api/internal/validation"
)

// UserService handles registration and authentication.
type UserService struct {
	userRepo postgres.UserRepository
	tokens   *auth.Manager
	log      *log.Logger
}

// NewUserService creates a new user service
func NewUserService(userRepo postgres.UserRepository, tokens *auth.Manager) *UserService {
	return &UserService{
		userRepo: userRepo,
		tokens:   tokens,
		log:      logger.Service("user"),
	}
}

// RegisterRequest represents a signup request
type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates a new account. The first registered user becomes admin;
// the count-then-insert is best-effort and not serialized against
// concurrent first signups.
func (s *UserService) Register(req RegisterRequest) (*user.User, error) {
	return logged(s.log, "create_user", func() (*user.User, error) {
		if err := validation.ValidateEmail(req.Email); err != nil {
			return nil, apperrors.Validation("%s", err)
		}

		if _, err := s.userRepo.GetByEmail(req.Email); err == nil {
			return nil, apperrors.Conflict("email already registered")
		} else if !errors.Is(err, apperrors.ErrNotFound) {
			return nil, err
		}

		hashed, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, err
		}

		count, err := s.userRepo.Count()
		if err != nil {
			return nil, err
		}

		u := user.NewUser(req.Email, hashed, req.FullName)
		u.IsAdmin = count == 0

		return s.userRepo.Create(u)
	})
}

// Authenticate verifies credentials and returns the user, or NotFound-shaped
// rejection mapped to an auth failure by the handler.
func (s *UserService) Authenticate(email, password string) (*user.User, error) {
	return logged(s.log, "authenticate_user", func() (*user.User, error) {
		u, err := s.userRepo.GetByEmail(email)
		if err != nil {
			return nil, err
		}
		if !auth.CheckPassword(password, u.HashedPassword) {
			return nil, apperrors.NotFound("invalid credentials")
		}
		return u, nil
	})
}

// IssueToken signs an access token for the user.
func (s *UserService) IssueToken(u *user.User) (string, error) {
	return s.tokens.Generate(u.ID, u.Email, u.IsAdmin)
}

// GetByID loads a user by id.
func (s *UserService) GetByID(id uuid.UUID) (*user.User, error) {
	return logged(s.log, "get_user", func() (*user.User, error) {
		return s.userRepo.GetByID(id)
	})
}
