package service

import (
	"context"
	"errors"
	"strings"

	"github.com/aussiebroadwan/grantd/internal/auth/domain"
	"github.com/aussiebroadwan/grantd/internal/auth/store"
	"github.com/aussiebroadwan/grantd/pkg/cryptox"
	"github.com/aussiebroadwan/grantd/pkg/slogx"
)

var (
	ErrInvalidUsername = errors.New("username is required")
	ErrUsernameTaken   = errors.New("username already taken")
)

type UserService struct {
	Users store.Users
}

// CreateUser registers a resource owner. When password is empty one is
// generated; the password actually set is returned.
func (s *UserService) CreateUser(ctx context.Context, username, password string) (*domain.User, string, error) {
	l := slogx.FromContext(ctx)

	if strings.TrimSpace(username) == "" {
		return nil, "", ErrInvalidUsername
	}
	if password == "" {
		var err error
		if password, err = cryptox.GeneratePassword(); err != nil {
			return nil, "", err
		}
	}

	u, err := domain.NewUser(username, password)
	if err != nil {
		return nil, "", err
	}
	if err := s.Users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, "", ErrUsernameTaken
		}
		l.Error("failed to create user", "error", err)
		return nil, "", err
	}

	l.Info("user created", "user_id", u.ID, "username", u.Username)
	return u, password, nil
}

// GetUserByID fetches a user by id.
func (s *UserService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.Users.GetUserByID(ctx, id)
}

// ValidateCredentials returns the user for a correct username and password
// and a nil owner otherwise. Only storage failures are errors.
func (s *UserService) ValidateCredentials(ctx context.Context, username, password string) (domain.TokenOwner, error) {
	u, err := s.Users.GetUserByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if !u.CheckPassword(password) {
		slogx.FromContext(ctx).Info("password check failed", "user_id", u.ID)
		return nil, nil
	}
	return u, nil
}
