package authsdk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"
)

// refreshBuffer renews tokens slightly before they actually expire.
const refreshBuffer = 30 * time.Second

// ErrNoRefreshToken is returned when a session can neither refresh nor
// re-authenticate.
var ErrNoRefreshToken = errors.New("access token expired and no refresh token available")

// Session represents an authenticated session with automatic token refresh.
// All Session methods automatically handle token expiration and refresh when needed.
type Session struct {
	client      *SDKClient
	credentials ClientCredentials

	// reauth replaces refreshing for grants that issue no refresh token
	reauth func(context.Context) (*TokenResponse, error)

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time // zero when the access token never expires
	scopes       map[string]bool
}

// Revoke revokes the session's tokens. The refresh token is revoked first
// so the session cannot be resumed.
func (s *Session) Revoke(ctx context.Context) error {
	s.mu.RLock()
	accessToken, refreshToken := s.accessToken, s.refreshToken
	s.mu.RUnlock()

	if refreshToken != "" {
		if err := s.client.RevokeToken(ctx, s.credentials, refreshToken, "refresh_token"); err != nil {
			return err
		}
	}
	return s.client.RevokeToken(ctx, s.credentials, accessToken, "access_token")
}

// newSession creates a new authenticated session from a token response.
func newSession(client *SDKClient, credentials ClientCredentials, tokenResp *TokenResponse) *Session {
	s := &Session{client: client, credentials: credentials}
	s.update(tokenResp)
	return s
}

// update stores a token response. Callers hold the write lock or own s.
func (s *Session) update(tokenResp *TokenResponse) {
	s.accessToken = tokenResp.AccessToken
	if tokenResp.RefreshToken != "" {
		s.refreshToken = tokenResp.RefreshToken
	}
	s.expiresAt = time.Time{}
	if tokenResp.ExpiresIn > 0 {
		s.expiresAt = time.Now().Add(time.Duration(tokenResp.ExpiresIn)*time.Second - refreshBuffer)
	}
	s.scopes = parseScopes(tokenResp.Scope)
}

// parseScopes parses a space-delimited scope string into a map for fast lookup.
func parseScopes(scopeStr string) map[string]bool {
	parts := strings.Fields(scopeStr)
	scopes := make(map[string]bool, len(parts))
	for _, scope := range parts {
		scopes[scope] = true
	}
	return scopes
}

func (s *Session) fresh() bool {
	return s.expiresAt.IsZero() || time.Now().Before(s.expiresAt)
}

// getValidToken returns a valid access token, automatically refreshing if expired.
func (s *Session) getValidToken(ctx context.Context) (string, error) {
	s.mu.RLock()
	if s.fresh() {
		token := s.accessToken
		s.mu.RUnlock()
		return token, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()

	// Double-check after acquiring write lock (another goroutine may have refreshed)
	if s.fresh() {
		return s.accessToken, nil
	}

	var (
		tokenResp *TokenResponse
		err       error
	)
	switch {
	case s.refreshToken != "":
		tokenResp, err = s.client.RefreshGrant(ctx, s.credentials, s.refreshToken)
	case s.reauth != nil:
		tokenResp, err = s.reauth(ctx)
	default:
		return "", ErrNoRefreshToken
	}
	if err != nil {
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}

	s.update(tokenResp)
	return s.accessToken, nil
}

// AccessToken returns the current access token without checking expiration.
// For most use cases, prefer using the Session methods which handle refresh automatically.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// Scopes returns a copy of the current granted scopes as a slice.
func (s *Session) Scopes() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	scopes := make([]string, 0, len(s.scopes))
	for scope := range s.scopes {
		scopes = append(scopes, scope)
	}
	return scopes
}

// HasScope returns true if the session has the specified scope.
func (s *Session) HasScope(scope string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scopes[scope]
}

// HasAnyScope returns true if the session has at least one of the specified scopes.
func (s *Session) HasAnyScope(scopes ...string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, scope := range scopes {
		if s.scopes[scope] {
			return true
		}
	}
	return false
}

// checkScopes returns an error if scope checking is enabled and the session
// holds none of the accepted scopes.
func (s *Session) checkScopes(anyOf ...string) error {
	if !s.client.CheckScopes || len(anyOf) == 0 {
		return nil
	}

	if !s.HasAnyScope(anyOf...) {
		return fmt.Errorf("missing required scope, one of: %s", strings.Join(anyOf, ", "))
	}
	return nil
}

// TokenInfo describes the session's current access token.
func (s *Session) TokenInfo(ctx context.Context) (*TokenInfoResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/oauth2/tokeninfo", nil, nil)
	if err != nil {
		return nil, err
	}

	var info TokenInfoResponse
	if err := decodeJSON(resp, &info, http.StatusOK); err != nil {
		return nil, err
	}
	return &info, nil
}
