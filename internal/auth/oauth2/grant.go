package oauth2

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/grantd/internal/auth/domain"
	"github.com/aussiebroadwan/grantd/internal/auth/service"
)

const (
	GrantTypeClientCredentials = "client_credentials"
	GrantTypeRefreshToken      = "refresh_token"
	GrantTypePassword          = "password"
	GrantTypeAuthorizationCode = "authorization_code"

	ResponseTypeCode = "code"
)

// Grant is one RFC 6749 grant type.
type Grant interface {
	// Type is the grant_type value this grant answers to.
	Type() string

	// ResponseType is the response_type value for the authorization
	// endpoint, empty when the grant has none.
	ResponseType() string

	AllowsPublicClients() bool

	CreateAuthorizationResponse(ctx context.Context, req *Request, client *domain.Client, owner domain.TokenOwner) (*Response, error)
	CreateTokenResponse(ctx context.Context, req *Request, client *domain.Client, owner domain.TokenOwner) (*Response, error)
}

// GrantLookup lets a grant ask which other grants are enabled.
type GrantLookup interface {
	HasGrant(grantType string) bool
}

// TokenService is the slice of service.TokenService the grants use.
type TokenService interface {
	GetToken(ctx context.Context, value string) (*domain.Token, error)
	CreateToken(ctx context.Context, owner domain.TokenOwner, client *domain.Client, scopes []string, opts ...service.TokenOption) (*domain.Token, error)
	DeleteToken(ctx context.Context, tok *domain.Token) error
}

// tokenOnly is embedded by grants that have no authorization endpoint.
type tokenOnly struct{}

func (tokenOnly) ResponseType() string { return "" }

func (tokenOnly) CreateAuthorizationResponse(context.Context, *Request, *domain.Client, domain.TokenOwner) (*Response, error) {
	return nil, InvalidRequest("grant does not support authorization requests")
}

type tokenResponseBody struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	Scope        string `json:"scope,omitempty"`
	OwnerID      string `json:"owner_id,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// tokenResponse renders the RFC 6749 section 5.1 body. refresh may be nil.
func tokenResponse(access, refresh *domain.Token) *Response {
	body := tokenResponseBody{
		AccessToken: access.Value,
		TokenType:   "Bearer",
		ExpiresIn:   access.ExpiresIn(time.Now()),
		Scope:       strings.Join(access.Scopes, " "),
		OwnerID:     access.OwnerID(),
	}
	if refresh != nil {
		body.RefreshToken = refresh.Value
	}
	return jsonResponse(http.StatusOK, body)
}

// scopeError turns the token service's scope failure into invalid_scope.
func scopeError(err error) error {
	if errors.Is(err, service.ErrInvalidScope) {
		names := strings.TrimPrefix(err.Error(), service.ErrInvalidScope.Error()+": ")
		return InvalidScope("requested scope is not allowed: %s", names)
	}
	return err
}

// lookupToken resolves value, mapping unknown and expired tokens to
// invalid_grant.
func lookupToken(ctx context.Context, tokens TokenService, value, what string) (*domain.Token, error) {
	tok, err := tokens.GetToken(ctx, value)
	if errors.Is(err, service.ErrTokenNotFound) {
		return nil, InvalidGrant("%s is expired or does not exist", what)
	}
	if err != nil {
		return nil, err
	}
	if tok.IsExpired(time.Now()) {
		return nil, InvalidGrant("%s is expired or does not exist", what)
	}
	return tok, nil
}

func sameClient(a, b *domain.Client) bool {
	return a != nil && b != nil && a.ID == b.ID
}
