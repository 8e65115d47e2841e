package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"sunday-market/internal/domain"
	"sunday-market/pkg/utils"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type NewUser struct {
	FirstName string      `json:"first_name" validate:"max=64"`
	LastName  string      `json:"last_name" validate:"max=64"`
	Email     string      `json:"email" validate:"required,email,max=191"`
	Password  string      `json:"password" validate:"required,min=8,max=72"`
	ShopName  string      `json:"shop_name" validate:"max=128"`
	Role      domain.Role `json:"role"`
}

type Sessions struct {
	users UserStore
	log   *zap.Logger
}

func NewSessions(users UserStore, log *zap.Logger) *Sessions {
	if log == nil {
		log = zap.NewNop()
	}
	return &Sessions{users: users, log: log}
}

// Authenticate returns the account for email when password matches.
// Banned accounts cannot sign in.
func (s *Sessions) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	u, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if u.Ban || !utils.CheckPassword(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Current resolves a session's user id; banned accounts are treated as
// signed out.
func (s *Sessions) Current(ctx context.Context, id string) (*domain.User, error) {
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Ban {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (s *Sessions) CreateUser(ctx context.Context, in NewUser) (*domain.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := check(&in); err != nil {
		return nil, err
	}
	if in.Role == "" {
		in.Role = domain.RoleBuyer
	}
	if !in.Role.Valid() {
		return nil, &ValidationError{Fields: map[string]string{"role": "is invalid"}}
	}
	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	u := &domain.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        in.Email,
		PasswordHash: hash,
		ShopName:     strings.TrimSpace(in.ShopName),
		Role:         in.Role,
	}
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, &ValidationError{Fields: map[string]string{"email": "has already been taken"}}
		}
		return nil, err
	}
	s.log.Info("user created", zap.String("slug", u.Slug), zap.String("role", u.Role.String()))
	return u, nil
}

// EnsureAdmin creates the administrator account, or promotes an existing
// account with that email. It is safe to call on every boot.
func (s *Sessions) EnsureAdmin(ctx context.Context, in NewUser) (*domain.User, error) {
	in.Role = domain.RoleAdmin
	u, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(in.Email)))
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return s.CreateUser(ctx, in)
	case err != nil:
		return nil, err
	}
	if u.Role != domain.RoleAdmin {
		if err := s.users.SetRole(ctx, u.ID, domain.RoleAdmin); err != nil {
			return nil, err
		}
		u.Role = domain.RoleAdmin
		s.log.Info("user promoted to admin", zap.String("slug", u.Slug))
	}
	return u, nil
}

// SetRole changes an account's role by email.
func (s *Sessions) SetRole(ctx context.Context, email string, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, &ValidationError{Fields: map[string]string{"role": "is invalid"}}
	}
	u, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, err
	}
	if err := s.users.SetRole(ctx, u.ID, role); err != nil {
		return nil, err
	}
	u.Role = role
	return u, nil
}
