package authsdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the grantd authorization server.
// It provides access to unauthenticated operations and can create authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// CheckScopes determines whether to perform client-side scope validation
	// before making API requests. When true, the Session will check if it has
	// the required scopes before making a request and return an error if not.
	// Set to false for testing to ensure server-side scope checks work correctly.
	// Default: true
	CheckScopes bool
}

// NewSDKClient creates a new client with scope checking enabled.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		CheckScopes: true,
	}
}

// AuthenticateWithClientCredentials creates a session for the client itself
// (machine-to-machine). The session cannot refresh, it re-authenticates
// instead.
func (c *SDKClient) AuthenticateWithClientCredentials(
	ctx context.Context,
	client ClientCredentials,
	scopes []string,
) (*Session, error) {
	tokenResp, err := c.ClientCredentialsGrant(ctx, client, scopes)
	if err != nil {
		return nil, err
	}

	s := newSession(c, client, tokenResp)
	s.reauth = func(ctx context.Context) (*TokenResponse, error) {
		return c.ClientCredentialsGrant(ctx, client, scopes)
	}
	return s, nil
}

// AuthenticateWithPassword creates a session on behalf of a user.
func (c *SDKClient) AuthenticateWithPassword(
	ctx context.Context,
	client ClientCredentials,
	username, password string,
	scopes []string,
) (*Session, error) {
	tokenResp, err := c.PasswordGrant(ctx, client, username, password, scopes)
	if err != nil {
		return nil, err
	}

	return newSession(c, client, tokenResp), nil
}

// AuthenticateWithRefreshToken creates an authenticated session from an existing refresh token.
func (c *SDKClient) AuthenticateWithRefreshToken(
	ctx context.Context,
	client ClientCredentials,
	refreshToken string,
) (*Session, error) {
	tokenResp, err := c.RefreshGrant(ctx, client, refreshToken)
	if err != nil {
		return nil, err
	}

	return newSession(c, client, tokenResp), nil
}

// NewSessionFromTokens creates an authenticated session from existing tokens.
// The session will still perform auto-refresh when the access token expires.
func (c *SDKClient) NewSessionFromTokens(client ClientCredentials, tokens *TokenResponse) *Session {
	return newSession(c, client, tokens)
}

// TokenInfo describes an access token. It fails with an invalid_token
// OAuth2Error when the token is unknown or expired.
func (c *SDKClient) TokenInfo(ctx context.Context, accessToken string) (*TokenInfoResponse, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/oauth2/tokeninfo", nil, map[string]string{
		"Authorization": "Bearer " + accessToken,
	})
	if err != nil {
		return nil, err
	}

	var info TokenInfoResponse
	if err := decodeJSON(resp, &info, http.StatusOK); err != nil {
		return nil, err
	}
	return &info, nil
}
