package oauth2

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/aussiebroadwan/grantd/internal/auth/domain"
	"github.com/aussiebroadwan/grantd/internal/auth/service"
	"github.com/aussiebroadwan/grantd/pkg/httpx"
)

// ResourceServer validates access tokens presented by callers.
type ResourceServer struct {
	access TokenService
}

func NewResourceServer(access TokenService) *ResourceServer {
	return &ResourceServer{access: access}
}

// AccessToken returns the valid access token carried by req, taken from an
// Authorization: Bearer header or an access_token field. It fails with
// invalid_token when the token is missing, unknown or expired, and with
// insufficient_scope when it lacks one of scopes.
func (s *ResourceServer) AccessToken(ctx context.Context, req *Request, scopes ...string) (*domain.Token, error) {
	raw, err := httpx.BearerFromHeader(req.Header)
	if err != nil {
		raw = req.BodyValue("access_token")
		if raw == "" {
			raw = req.QueryValue("access_token")
		}
	}
	if raw == "" {
		return nil, InvalidToken("no access token was found in the request")
	}

	tok, err := s.lookup(ctx, raw)
	if err != nil {
		return nil, err
	}
	if !tok.HasScopes(scopes...) {
		return nil, InsufficientScope("the access token requires scope %q", strings.Join(scopes, " "))
	}
	return tok, nil
}

// VerifyBearer implements httpx.TokenVerifier.
func (s *ResourceServer) VerifyBearer(ctx context.Context, raw string) (httpx.Principal, error) {
	tok, err := s.lookup(ctx, raw)
	if err != nil {
		return httpx.Principal{}, err
	}

	subject := tok.OwnerID()
	if subject == "" {
		subject = tok.ClientID()
	}
	return httpx.Principal{
		Subject:   subject,
		OwnerID:   tok.OwnerID(),
		ClientID:  tok.ClientID(),
		Scopes:    tok.Scopes,
		ExpiresAt: tok.ExpiresAt,
	}, nil
}

func (s *ResourceServer) lookup(ctx context.Context, raw string) (*domain.Token, error) {
	tok, err := s.access.GetToken(ctx, raw)
	if errors.Is(err, service.ErrTokenNotFound) {
		return nil, InvalidToken("the access token is unknown")
	}
	if err != nil {
		return nil, err
	}
	if tok.IsExpired(time.Now()) {
		return nil, InvalidToken("the access token has expired")
	}
	return tok, nil
}
