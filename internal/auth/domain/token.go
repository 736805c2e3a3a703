package domain

import (
	"math"
	"slices"
	"time"
)

// TokenKind distinguishes the token families. Each kind lives in its own
// keyspace, so a value is unique only among tokens of the same kind.
type TokenKind string

const (
	KindAccessToken       TokenKind = "access_token"
	KindRefreshToken      TokenKind = "refresh_token"
	KindAuthorizationCode TokenKind = "authorization_code"
)

func (k TokenKind) String() string { return string(k) }

// Token is an opaque bearer credential. Owner and Client are references and
// may be nil. A nil ExpiresAt never expires.
type Token struct {
	Kind        TokenKind
	Value       string
	Owner       TokenOwner
	Client      *Client
	Scopes      []string
	ExpiresAt   *time.Time
	RedirectURI string // authorization codes only
	CreatedAt   time.Time
}

// NewToken builds a token expiring ttl from now. A nil ttl never expires and
// a ttl of zero or less is expired on creation.
func NewToken(kind TokenKind, value string, owner TokenOwner, client *Client, scopes []string, ttl *time.Duration) *Token {
	now := time.Now().UTC()

	var expiresAt *time.Time
	if ttl != nil {
		at := now.Add(*ttl)
		expiresAt = &at
	}

	return &Token{
		Kind:      kind,
		Value:     value,
		Owner:     owner,
		Client:    client,
		Scopes:    slices.Clone(scopes),
		ExpiresAt: expiresAt,
		CreatedAt: now,
	}
}

// ReconstituteToken rebuilds a token loaded from storage.
func ReconstituteToken(kind TokenKind, value string, owner TokenOwner, client *Client, scopes []string, expiresAt *time.Time, redirectURI string, createdAt time.Time) *Token {
	return &Token{
		Kind:        kind,
		Value:       value,
		Owner:       owner,
		Client:      client,
		Scopes:      scopes,
		ExpiresAt:   expiresAt,
		RedirectURI: redirectURI,
		CreatedAt:   createdAt,
	}
}

// IsExpired reports whether now is past the expiry. A token is still valid
// at the exact instant it expires.
func (t *Token) IsExpired(now time.Time) bool {
	return t.ExpiresAt != nil && t.ExpiresAt.Before(now)
}

// IsValid reports whether the token is unexpired and holds every scope.
func (t *Token) IsValid(now time.Time, scopes ...string) bool {
	if t.IsExpired(now) {
		return false
	}
	return t.HasScopes(scopes...)
}

// HasScopes reports whether the token holds every scope.
func (t *Token) HasScopes(scopes ...string) bool {
	for _, s := range scopes {
		if !slices.Contains(t.Scopes, s) {
			return false
		}
	}
	return true
}

// ExpiresIn is the number of whole seconds left, rounded up. Tokens without
// an expiry, or already expired, report 0.
func (t *Token) ExpiresIn(now time.Time) int64 {
	if t.ExpiresAt == nil {
		return 0
	}
	left := t.ExpiresAt.Sub(now)
	if left <= 0 {
		return 0
	}
	return int64(math.Ceil(left.Seconds()))
}

// OwnerID returns the owner id or "".
func (t *Token) OwnerID() string {
	return OwnerIDOf(t.Owner)
}

// ClientID returns the client id or "".
func (t *Token) ClientID() string {
	if t.Client == nil {
		return ""
	}
	return t.Client.ID
}
