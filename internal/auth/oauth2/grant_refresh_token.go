package oauth2

import (
	"context"
	"errors"
	"slices"

	"github.com/aussiebroadwan/grantd/internal/auth/domain"
	"github.com/aussiebroadwan/grantd/internal/auth/store"
	"github.com/aussiebroadwan/grantd/pkg/httpx"
	"github.com/aussiebroadwan/grantd/pkg/slogx"
)

// RefreshTokenGrant exchanges a refresh token for a new access token,
// optionally rotating the refresh token.
type RefreshTokenGrant struct {
	tokenOnly
	access  TokenService
	refresh TokenService
	opts    Options
}

func NewRefreshTokenGrant(access, refresh TokenService, opts Options) *RefreshTokenGrant {
	return &RefreshTokenGrant{access: access, refresh: refresh, opts: opts}
}

func (*RefreshTokenGrant) Type() string              { return GrantTypeRefreshToken }
func (*RefreshTokenGrant) AllowsPublicClients() bool { return true }

func (g *RefreshTokenGrant) CreateTokenResponse(ctx context.Context, req *Request, client *domain.Client, _ domain.TokenOwner) (*Response, error) {
	value := req.BodyValue("refresh_token")
	if value == "" {
		return nil, InvalidRequest("refresh_token is missing")
	}

	old, err := lookupToken(ctx, g.refresh, value, "refresh token")
	if err != nil {
		return nil, err
	}

	if old.Client != nil {
		// A confidential client's refresh token is useless without its
		// credentials.
		if client == nil && !old.Client.IsPublic() {
			return nil, InvalidClient("client authentication is required")
		}
		if client != nil && !sameClient(old.Client, client) {
			return nil, InvalidGrant("refresh token was issued to another client")
		}
	}

	scopes := old.Scopes
	if requested := httpx.ParseSpaceDelimitedFields(req.BodyValue("scope")); len(requested) > 0 {
		for _, s := range requested {
			if !slices.Contains(old.Scopes, s) {
				return nil, InvalidScope("requested scope %q was not granted to the refresh token", s)
			}
		}
		scopes = requested
	}

	current := old
	if g.opts.RotateRefreshTokens {
		// The replacement exists before the old token goes away, so a crash
		// in between leaves the client with two valid tokens, not none.
		rotated, err := g.refresh.CreateToken(ctx, old.Owner, old.Client, scopes)
		if err != nil {
			return nil, scopeError(err)
		}

		if g.opts.RevokeRotatedRefreshTokens {
			if err := g.refresh.DeleteToken(ctx, old); err != nil {
				if cerr := g.refresh.DeleteToken(ctx, rotated); cerr != nil {
					slogx.FromContext(ctx).Error("failed to remove rotated refresh token",
						"client_id", old.ClientID(), "error", cerr)
				}
				if errors.Is(err, store.ErrNotFound) {
					// Someone else redeemed it first
					slogx.FromContext(ctx).Warn("refresh token reused during rotation", "client_id", old.ClientID())
					return nil, InvalidGrant("refresh token is expired or does not exist")
				}
				return nil, err
			}
		}
		current = rotated
	}

	access, err := g.access.CreateToken(ctx, old.Owner, old.Client, scopes)
	if err != nil {
		return nil, scopeError(err)
	}
	return tokenResponse(access, current), nil
}
