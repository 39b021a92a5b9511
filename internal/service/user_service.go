package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"mini-pos/internal/auth"
	"mini-pos/internal/model"
	"mini-pos/internal/repository"

	"github.com/rs/zerolog"
)

// userService implements UserService.
type userService struct {
	userRepo repository.UserRepository
	sessions auth.SessionStore
	logger   zerolog.Logger
}

// NewUserService creates a new user service.
func NewUserService(userRepo repository.UserRepository, sessions auth.SessionStore, logger zerolog.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		sessions: sessions,
		logger:   logger.With().Str("service", "user").Logger(),
	}
}

// Login checks credentials and opens a session. Unknown users and wrong
// passwords produce the same error.
func (s *userService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, model.ErrPasswordRequired
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Warn().Str("username", username).Msg("failed login attempt")
		return nil, model.ErrInvalidCredentials
	}

	role, err := auth.ParseRole(user.Role)
	if err != nil {
		s.logger.Error().Str("username", username).Str("role", user.Role).Msg("stored user has unknown role")
		return nil, model.ErrInvalidCredentials
	}

	token, err := s.sessions.Create(ctx, auth.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Role:     role,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}

	s.logger.Info().Str("username", user.Username).Str("role", string(role)).Msg("user logged in")

	return &model.LoginResponse{
		Token:    token,
		Username: user.Username,
		Role:     string(role),
	}, nil
}

// Logout ends the session identified by token.
func (s *userService) Logout(ctx context.Context, token string) error {
	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}
	return nil
}

// Register creates a staff account.
func (s *userService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, model.ErrPasswordRequired
	}

	role, err := auth.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}

	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if existing != nil {
		return nil, model.ErrUsernameTaken
	}

	return s.create(ctx, username, req.Password, role)
}

// EnsureAdmin makes username an admin account with the given password,
// creating it or resetting the existing one in place. A failure leaves any
// existing account untouched.
func (s *userService) EnsureAdmin(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, model.ErrPasswordRequired
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
		Role:         string(auth.RoleAdmin),
	}
	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to ensure admin: %w", err)
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("username", user.Username).
		Msg("admin account ensured")

	return user, nil
}

func (s *userService) create(ctx context.Context, username, password string, role auth.Role) (*model.User, error) {
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
		Role:         string(role),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, model.ErrUsernameTaken) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info().
		Int64("user_id", user.ID).
		Str("username", user.Username).
		Str("role", user.Role).
		Msg("user registered")

	return user, nil
}
