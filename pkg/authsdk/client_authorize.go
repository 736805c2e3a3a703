package authsdk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// ErrNoAuthorizationCode is returned when the authorization endpoint
// redirects without a code.
var ErrNoAuthorizationCode = errors.New("redirect missing authorization code")

// AuthorizeRequest is an authorization code request (RFC 6749 section
// 4.1.1).
type AuthorizeRequest struct {
	ClientID string

	// RedirectURI is optional; the client's default is used when empty. If
	// set, it must be repeated when exchanging the code.
	RedirectURI string

	State  string
	Scopes []string
}

// BuildAuthorizeURL constructs the URL to send a user's browser to.
func (c *SDKClient) BuildAuthorizeURL(req AuthorizeRequest) string {
	return c.BaseURL + "/v1/oauth2/authorize?" + req.query().Encode()
}

func (req AuthorizeRequest) query() url.Values {
	params := url.Values{
		"response_type": {"code"},
		"client_id":     {req.ClientID},
	}
	if req.RedirectURI != "" {
		params.Set("redirect_uri", req.RedirectURI)
	}
	if req.State != "" {
		params.Set("state", req.State)
	}
	if len(req.Scopes) > 0 {
		params.Set("scope", strings.Join(req.Scopes, " "))
	}
	return params
}

// AuthorizeWithBearerToken performs the authorization request on behalf of
// the user that owns accessToken and returns the redirect the browser would
// follow. Errors the server redirects back are returned as *OAuth2Error.
func (c *SDKClient) AuthorizeWithBearerToken(
	ctx context.Context,
	accessToken string,
	req AuthorizeRequest,
) (*url.URL, error) {
	// Create HTTP client that doesn't follow redirects
	noRedirectClient := &http.Client{
		Transport: c.HTTPClient.Transport,
		Timeout:   c.HTTPClient.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BuildAuthorizeURL(req), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := noRedirectClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusFound {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, parseErrorResponse(resp, bodyBytes)
	}

	location, err := url.Parse(resp.Header.Get("Location"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse redirect URL: %w", err)
	}
	if code := location.Query().Get("error"); code != "" {
		return nil, &OAuth2Error{
			StatusCode:  resp.StatusCode,
			Code:        code,
			Description: location.Query().Get("error_description"),
		}
	}
	return location, nil
}

// AuthorizationCode runs the authorization request and returns the issued
// code.
func (c *SDKClient) AuthorizationCode(ctx context.Context, accessToken string, req AuthorizeRequest) (string, error) {
	location, err := c.AuthorizeWithBearerToken(ctx, accessToken, req)
	if err != nil {
		return "", err
	}

	code := location.Query().Get("code")
	if code == "" {
		return "", ErrNoAuthorizationCode
	}
	return code, nil
}
