// Package services holds account management and authentication.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/sibintb/submanager/internal/lib/jwt"
	"github.com/sibintb/submanager/internal/lib/password"
	"github.com/sibintb/submanager/internal/models"
	"github.com/sibintb/submanager/internal/storage"
)

var (
	// ErrInvalidCredentials is returned for an unknown identity or a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrRemoveSelf is returned when an admin tries to delete the own account.
	ErrRemoveSelf = errors.New("cannot remove the current user")
	// ErrProtectedUser is returned when removing the bootstrap administrator.
	ErrProtectedUser = errors.New("the bootstrap administrator cannot be removed")
)

// UserRepository persists accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, u models.User) (models.User, error)
	ReadUserByEmail(ctx context.Context, email string) (models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error
	RemoveUser(ctx context.Context, id string) error
	CountUsers(ctx context.Context) (int, error)
}

// Admin is the account seeded into an empty user table.
type Admin struct {
	Name     string
	Identity string
	Password string
}

// AuthService signs users in and manages accounts.
type AuthService struct {
	users    UserRepository
	jwtMaker jwt.Maker
	log      *slog.Logger
}

// NewAuthService creates an AuthService.
func NewAuthService(users UserRepository, jwtMaker jwt.Maker, log *slog.Logger) *AuthService {
	return &AuthService{
		users:    users,
		jwtMaker: jwtMaker,
		log:      log,
	}
}

// Login checks identity and password and issues an access token.
func (s *AuthService) Login(ctx context.Context, identity, rawPassword string) (string, models.User, error) {
	const op = "services.auth.Login"

	user, err := s.users.ReadUserByEmail(ctx, strings.TrimSpace(identity))
	if errors.Is(err, storage.ErrNotFound) {
		return "", models.User{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err != nil {
		return "", models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		return "", models.User{}, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	token, err := s.jwtMaker.GenerateToken(user.ID, user.Email, user.Role)
	if err != nil {
		return "", models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	return token, user, nil
}

// ParseToken validates an access token and returns its claims.
func (s *AuthService) ParseToken(token string) (*jwt.CustomClaims, error) {
	return s.jwtMaker.ParseToken(token)
}

// ListUsers returns every account in creation order.
func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	const op = "services.auth.ListUsers"
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

// CreateUser hashes the password and stores a new account.
func (s *AuthService) CreateUser(ctx context.Context, req models.DummyUser) (models.User, error) {
	const op = "services.auth.CreateUser"

	hash, err := password.GetHash(req.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	user, err := s.users.CreateUser(ctx, models.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
		Role:         role,
	})
	if err != nil {
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("created user", slog.String("id", user.ID), slog.String("role", user.Role))
	return user, nil
}

// RemoveUser deletes the account with id. currentID is the caller. The
// account named models.AdminIdentity is never removed.
func (s *AuthService) RemoveUser(ctx context.Context, currentID, id string) error {
	const op = "services.auth.RemoveUser"
	if id == currentID {
		return fmt.Errorf("%s: %w", op, ErrRemoveSelf)
	}

	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	i := slices.IndexFunc(users, func(u models.User) bool { return u.ID == id })
	if i < 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	if users[i].Email == models.AdminIdentity {
		return fmt.Errorf("%s: %w", op, ErrProtectedUser)
	}

	if err := s.users.RemoveUser(ctx, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("removed user", slog.String("id", id))
	return nil
}

// ResetPassword replaces the password of the account with id.
func (s *AuthService) ResetPassword(ctx context.Context, id, rawPassword string) error {
	const op = "services.auth.ResetPassword"

	hash, err := password.GetHash(rawPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.users.UpdateUserPassword(ctx, id, hash); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("reset password", slog.String("id", id))
	return nil
}

// EnsureAdmin creates admin when there are no accounts yet. It reports
// whether an account was created.
func (s *AuthService) EnsureAdmin(ctx context.Context, admin Admin) (bool, error) {
	const op = "services.auth.EnsureAdmin"

	n, err := s.users.CountUsers(ctx)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if n > 0 {
		return false, nil
	}
	_, err = s.CreateUser(ctx, models.DummyUser{
		Name:     admin.Name,
		Email:    admin.Identity,
		Password: admin.Password,
		Role:     models.RoleAdmin,
	})
	if errors.Is(err, storage.ErrUserExists) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Warn("seeded default administrator, change its password", slog.String("identity", admin.Identity))
	return true, nil
}
