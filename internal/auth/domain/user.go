package domain

import (
	"strings"
	"time"

	"github.com/aussiebroadwan/grantd/pkg/cryptox"
	"github.com/aussiebroadwan/grantd/pkg/idx"
)

// User is a resource owner that can authenticate with the password grant.
type User struct {
	ID           string
	Username     string
	PasswordHash string // argon2 encoded
	CreatedAt    time.Time
}

// NewUser hashes password and returns a user with a fresh id.
func NewUser(username, password string) (*User, error) {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return nil, err
	}
	return &User{
		ID:           idx.New().String(),
		Username:     strings.TrimSpace(username),
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}, nil
}

func (u *User) TokenOwnerID() string { return u.ID }

// CheckPassword reports whether password matches the stored hash.
func (u *User) CheckPassword(password string) bool {
	return cryptox.VerifyPassword(password, u.PasswordHash) == nil
}
