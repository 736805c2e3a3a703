package oauth2

import (
	"context"
	"errors"
	"net/url"

	"github.com/aussiebroadwan/grantd/internal/auth/domain"
	"github.com/aussiebroadwan/grantd/internal/auth/service"
	"github.com/aussiebroadwan/grantd/internal/auth/store"
	"github.com/aussiebroadwan/grantd/pkg/httpx"
)

// AuthorizationCodeGrant issues one-time codes at the authorization
// endpoint and exchanges them for tokens. Owner authentication happens
// before the request reaches the server.
type AuthorizationCodeGrant struct {
	codes   TokenService
	access  TokenService
	refresh TokenService
	grants  GrantLookup
}

func NewAuthorizationCodeGrant(codes, access, refresh TokenService, grants GrantLookup) *AuthorizationCodeGrant {
	return &AuthorizationCodeGrant{codes: codes, access: access, refresh: refresh, grants: grants}
}

func (*AuthorizationCodeGrant) Type() string              { return GrantTypeAuthorizationCode }
func (*AuthorizationCodeGrant) ResponseType() string      { return ResponseTypeCode }
func (*AuthorizationCodeGrant) AllowsPublicClients() bool { return true }

// CreateAuthorizationResponse redirects back to the client with a fresh code
// and the caller's state.
func (g *AuthorizationCodeGrant) CreateAuthorizationResponse(ctx context.Context, req *Request, client *domain.Client, owner domain.TokenOwner) (*Response, error) {
	if owner == nil {
		return nil, AccessDenied("the resource owner must be authenticated")
	}

	requested := req.QueryValue("redirect_uri")
	redirectURI := requested
	switch {
	case redirectURI == "":
		redirectURI = client.DefaultRedirectURI()
		if redirectURI == "" {
			return nil, InvalidRequest("client has no registered redirect URI")
		}
	case !client.HasRedirectURI(redirectURI):
		return nil, InvalidRequest("redirect_uri is not registered for this client")
	}

	target, err := url.Parse(redirectURI)
	if err != nil {
		return nil, InvalidRequest("registered redirect URI is malformed")
	}

	scopes := httpx.ParseSpaceDelimitedFields(req.QueryValue("scope"))
	code, err := g.codes.CreateToken(ctx, owner, client, scopes, service.WithRedirectURI(requested))
	if err != nil {
		return nil, scopeError(err)
	}

	q := target.Query()
	q.Set("code", code.Value)
	if state := req.Query.Get("state"); state != "" {
		q.Set("state", state)
	}
	target.RawQuery = q.Encode()

	return redirectResponse(target.String()), nil
}

func (g *AuthorizationCodeGrant) CreateTokenResponse(ctx context.Context, req *Request, client *domain.Client, _ domain.TokenOwner) (*Response, error) {
	value := req.BodyValue("code")
	if value == "" {
		return nil, InvalidRequest("code is missing")
	}
	if client == nil {
		return nil, InvalidRequest("client_id is missing")
	}

	code, err := lookupToken(ctx, g.codes, value, "authorization code")
	if err != nil {
		return nil, err
	}
	if !sameClient(code.Client, client) {
		return nil, InvalidGrant("authorization code was issued to another client")
	}
	if code.RedirectURI != "" && req.BodyValue("redirect_uri") != code.RedirectURI {
		return nil, InvalidGrant("redirect_uri does not match the authorization request")
	}

	// Codes are single use; a concurrent exchange loses here
	if err := g.codes.DeleteToken(ctx, code); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, InvalidGrant("authorization code is expired or does not exist")
		}
		return nil, err
	}

	access, err := g.access.CreateToken(ctx, code.Owner, client, code.Scopes)
	if err != nil {
		return nil, scopeError(err)
	}

	refresh, err := issueRefreshToken(ctx, g.grants, g.refresh, access)
	if err != nil {
		return nil, err
	}
	return tokenResponse(access, refresh), nil
}
