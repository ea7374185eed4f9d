package service

import (
	"context"
	"errors"
	"fmt"

	"acquisitions/internal/logutil"
	"acquisitions/internal/model"
	"acquisitions/internal/repository"
)

var (
	ErrUserAlreadyExists  = errors.New("user with this email already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid password")
)

// PasswordHasher is satisfied by utils.PasswordHasher
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hashed string) (bool, error)
}

// AuthService provides authentication related services
type AuthService interface {
	CreateUser(ctx context.Context, name, email, password, role string) (*model.User, error)
	AuthenticateUser(ctx context.Context, email, password string) (*model.User, error)
}

type authService struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo repository.UserRepository, hasher PasswordHasher) AuthService {
	return &authService{
		userRepo: userRepo,
		hasher:   hasher,
	}
}

// CreateUser registers a new account. An empty role means model.RoleUser.
func (s *authService) CreateUser(ctx context.Context, name, email, password, role string) (*model.User, error) {
	log := logutil.GetOrDefault(ctx)
	if role == "" {
		role = model.RoleUser
	}

	// Fast path only; the unique constraint on insert is authoritative.
	existingUser, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		log.Info().Str("email", email).Msg("sign-up rejected, email already registered")
		return nil, ErrUserAlreadyExists
	}

	hashedPassword, err := s.hasher.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.Insert(ctx, name, email, hashedPassword, role)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			log.Info().Str("email", email).Msg("sign-up lost race on unique email")
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user in repository: %w", err)
	}

	log.Info().Int64("user_id", user.ID).Str("email", user.Email).Str("role", user.Role).Msg("user created")
	return user.WithoutPassword(), nil
}

// AuthenticateUser checks email and password and returns the matching user
func (s *authService) AuthenticateUser(ctx context.Context, email, password string) (*model.User, error) {
	log := logutil.GetOrDefault(ctx)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("error finding user by email: %w", err)
	}
	if user == nil {
		log.Info().Str("email", email).Msg("authentication failed, unknown email")
		return nil, ErrUserNotFound
	}

	ok, err := s.hasher.Verify(password, user.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		log.Info().Int64("user_id", user.ID).Msg("authentication failed, wrong password")
		return nil, ErrInvalidCredentials
	}

	log.Info().Int64("user_id", user.ID).Msg("user authenticated")
	return user.WithoutPassword(), nil
}
