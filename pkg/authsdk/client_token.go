package authsdk

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// ClientCredentials identifies an OAuth2 client. Secret is empty for public
// clients.
type ClientCredentials struct {
	ID     string
	Secret string
}

// form names a public client in the request body.
func (cc ClientCredentials) form(data url.Values) {
	if cc.Secret == "" && cc.ID != "" {
		data.Set("client_id", cc.ID)
	}
}

// auth sends confidential credentials with HTTP Basic, form-encoded per
// RFC 6749 section 2.3.1.
func (cc ClientCredentials) auth(req *http.Request) {
	if cc.Secret != "" {
		req.SetBasicAuth(url.QueryEscape(cc.ID), url.QueryEscape(cc.Secret))
	}
}

// ClientCredentialsGrant requests an access token for the client itself.
// The client must be confidential. No refresh token is issued.
func (c *SDKClient) ClientCredentialsGrant(
	ctx context.Context,
	client ClientCredentials,
	scopes []string,
) (*TokenResponse, error) {
	data := url.Values{"grant_type": {"client_credentials"}}
	setScopes(data, scopes)

	return c.requestToken(ctx, client, data)
}

// PasswordGrant exchanges a username and password for tokens.
func (c *SDKClient) PasswordGrant(
	ctx context.Context,
	client ClientCredentials,
	username, password string,
	scopes []string,
) (*TokenResponse, error) {
	data := url.Values{
		"grant_type": {"password"},
		"username":   {username},
		"password":   {password},
	}
	setScopes(data, scopes)

	return c.requestToken(ctx, client, data)
}

// RefreshGrant requests new tokens using a refresh token. scopes may narrow
// the original grant.
func (c *SDKClient) RefreshGrant(
	ctx context.Context,
	client ClientCredentials,
	refreshToken string,
	scopes ...string,
) (*TokenResponse, error) {
	data := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	setScopes(data, scopes)

	return c.requestToken(ctx, client, data)
}

// ExchangeAuthorizationCode trades an authorization code for tokens.
// redirectURI must repeat the one sent to the authorization endpoint, if
// any.
func (c *SDKClient) ExchangeAuthorizationCode(
	ctx context.Context,
	client ClientCredentials,
	code, redirectURI string,
) (*TokenResponse, error) {
	data := url.Values{
		"grant_type": {"authorization_code"},
		"code":       {code},
	}
	if redirectURI != "" {
		data.Set("redirect_uri", redirectURI)
	}

	return c.requestToken(ctx, client, data)
}

// RevokeToken revokes an access or refresh token per RFC 7009. kind is
// "access_token" or "refresh_token". Revoking an unknown token succeeds.
func (c *SDKClient) RevokeToken(ctx context.Context, client ClientCredentials, token, kind string) error {
	data := url.Values{
		"token":           {token},
		"token_type_hint": {kind},
	}

	resp, err := c.postForm(ctx, "/v1/oauth2/revoke", client, data)
	if err != nil {
		return err
	}
	return checkStatus(resp, http.StatusOK)
}

func (c *SDKClient) requestToken(ctx context.Context, client ClientCredentials, data url.Values) (*TokenResponse, error) {
	resp, err := c.postForm(ctx, "/v1/oauth2/token", client, data)
	if err != nil {
		return nil, err
	}

	var tokenResp TokenResponse
	if err := decodeJSON(resp, &tokenResp, http.StatusOK); err != nil {
		return nil, err
	}
	return &tokenResp, nil
}

func setScopes(data url.Values, scopes []string) {
	if len(scopes) > 0 {
		data.Set("scope", strings.Join(scopes, " "))
	}
}
