package http

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/grantd/internal/auth/domain"
	"github.com/aussiebroadwan/grantd/internal/auth/oauth2"
	"github.com/aussiebroadwan/grantd/pkg/httpx"
)

// AuthorizeHandler serves GET /v1/oauth2/authorize. The resource owner is
// the user behind the bearer token on the request; rendering a login page
// is left to a frontend that holds such a token.
type AuthorizeHandler struct {
	Server *oauth2.Server
}

// ServeHTTP godoc
//
//	@Summary		OAuth2 Authorization Endpoint
//	@Description	Issues an authorization code for the user identified by the bearer token and redirects to the client's redirect URI.
//	@Description	Errors are answered as JSON and never redirected, so an unverified redirect URI is never followed.
//	@Tags			OAuth2
//	@Produce		json
//	@Security		BearerAuth
//	@Param			response_type	query		string					true	"Response type"	Enums(code)
//	@Param			client_id		query		string					true	"Client identifier"
//	@Param			redirect_uri	query		string					false	"Registered redirect URI, defaults to the client's first one"
//	@Param			scope			query		string					false	"Space-delimited list of scopes"
//	@Param			state			query		string					false	"Opaque value echoed on the redirect"
//	@Success		302				"Redirect with code and state"
//	@Failure		400				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		401				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/oauth2/authorize [get].
func (h *AuthorizeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	serveProtocol(w, r, func(ctx context.Context, req *oauth2.Request) (*oauth2.Response, error) {
		return h.Server.HandleAuthorizationRequest(ctx, req, ownerFromContext(ctx))
	})
}

// ownerFromContext returns the user behind the request's bearer token.
// Tokens issued to a client alone carry no owner.
func ownerFromContext(ctx context.Context) domain.TokenOwner {
	p, ok := httpx.PrincipalFromContext(ctx)
	if !ok || p.OwnerID == "" {
		return nil
	}
	return domain.OwnerID(p.OwnerID)
}
