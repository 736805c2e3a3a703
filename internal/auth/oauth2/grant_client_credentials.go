package oauth2

import (
	"context"

	"github.com/aussiebroadwan/grantd/internal/auth/domain"
	"github.com/aussiebroadwan/grantd/pkg/httpx"
)

// ClientCredentialsGrant issues access tokens to confidential clients acting
// on their own behalf. No refresh token is issued.
type ClientCredentialsGrant struct {
	tokenOnly
	access TokenService
}

func NewClientCredentialsGrant(access TokenService) *ClientCredentialsGrant {
	return &ClientCredentialsGrant{access: access}
}

func (*ClientCredentialsGrant) Type() string              { return GrantTypeClientCredentials }
func (*ClientCredentialsGrant) AllowsPublicClients() bool { return false }

func (g *ClientCredentialsGrant) CreateTokenResponse(ctx context.Context, req *Request, client *domain.Client, owner domain.TokenOwner) (*Response, error) {
	if client == nil {
		return nil, InvalidClient("client authentication is required")
	}

	scopes := httpx.ParseSpaceDelimitedFields(req.BodyValue("scope"))
	access, err := g.access.CreateToken(ctx, owner, client, scopes)
	if err != nil {
		return nil, scopeError(err)
	}
	return tokenResponse(access, nil), nil
}
