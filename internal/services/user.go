package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/asltutor/apiserver/internal/store"
	"github.com/asltutor/apiserver/types"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// ErrUsernameTaken is returned when registering an existing username.
var ErrUsernameTaken = errors.New("username already exists")

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (types.User, error)
	GetByUsername(ctx context.Context, username string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	TouchLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error
	Count(ctx context.Context, filter store.UserCountFilter) (int64, error)
}

// UserService encapsulates user use-cases.
type UserService struct {
	repo UserRepository
	now  func() time.Time
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo, now: time.Now}
}

func (s *UserService) GetByID(ctx context.Context, id primitive.ObjectID) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (types.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

// Register creates a user with a bcrypt hash of password.
func (s *UserService) Register(ctx context.Context, user types.User, password string) (types.User, error) {
	user.Username = strings.TrimSpace(user.Username)
	user.Email = strings.TrimSpace(user.Email)
	if user.Username == "" || password == "" {
		return types.User{}, errors.New("username and password are required")
	}
	if user.Role == "" {
		user.Role = types.RoleUser
	}

	if _, err := s.repo.GetByUsername(ctx, user.Username); err == nil {
		return types.User{}, ErrUsernameTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, fmt.Errorf("check username: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(hashed)

	return s.repo.Create(ctx, user)
}

// RecordLogin stamps the user's last login with the current time.
func (s *UserService) RecordLogin(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.TouchLastLogin(ctx, id, s.now().UTC())
}
