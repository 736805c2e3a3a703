package oauth2

import (
	"context"

	"github.com/aussiebroadwan/grantd/internal/auth/domain"
	"github.com/aussiebroadwan/grantd/pkg/httpx"
)

// OwnerValidator checks raw resource owner credentials. It returns a nil
// owner for bad credentials; errors are reserved for failures.
type OwnerValidator func(ctx context.Context, username, password string) (domain.TokenOwner, error)

// PasswordGrant is the resource owner password credentials grant.
type PasswordGrant struct {
	tokenOnly
	access   TokenService
	refresh  TokenService
	validate OwnerValidator
	grants   GrantLookup
}

func NewPasswordGrant(access, refresh TokenService, validate OwnerValidator, grants GrantLookup) *PasswordGrant {
	return &PasswordGrant{access: access, refresh: refresh, validate: validate, grants: grants}
}

func (*PasswordGrant) Type() string              { return GrantTypePassword }
func (*PasswordGrant) AllowsPublicClients() bool { return true }

func (g *PasswordGrant) CreateTokenResponse(ctx context.Context, req *Request, client *domain.Client, _ domain.TokenOwner) (*Response, error) {
	username := req.BodyValue("username")
	password := req.Body.Get("password")
	if username == "" || password == "" {
		return nil, InvalidRequest("username and/or password is missing")
	}

	owner, err := g.validate(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, InvalidGrant("invalid username or password")
	}

	scopes := httpx.ParseSpaceDelimitedFields(req.BodyValue("scope"))
	access, err := g.access.CreateToken(ctx, owner, client, scopes)
	if err != nil {
		return nil, scopeError(err)
	}

	refresh, err := issueRefreshToken(ctx, g.grants, g.refresh, access)
	if err != nil {
		return nil, err
	}
	return tokenResponse(access, refresh), nil
}

// issueRefreshToken pairs a refresh token with access when the refresh
// grant is enabled.
func issueRefreshToken(ctx context.Context, grants GrantLookup, refresh TokenService, access *domain.Token) (*domain.Token, error) {
	if grants == nil || !grants.HasGrant(GrantTypeRefreshToken) {
		return nil, nil
	}
	tok, err := refresh.CreateToken(ctx, access.Owner, access.Client, access.Scopes)
	if err != nil {
		return nil, scopeError(err)
	}
	return tok, nil
}
