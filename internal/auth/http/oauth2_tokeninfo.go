package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/aussiebroadwan/grantd/internal/auth/oauth2"
	"github.com/aussiebroadwan/grantd/pkg/authsdk"
	"github.com/aussiebroadwan/grantd/pkg/httpx"
)

// TokenInfoHandler serves GET /v1/oauth2/tokeninfo. It describes the access
// token the caller presents, the way a resource server would see it.
type TokenInfoHandler struct {
	Resource *oauth2.ResourceServer
}

// ServeHTTP godoc
//
//	@Summary		Access Token Information
//	@Description	Validates the presented access token and returns its client, owner, scopes and expiry.
//	@Description	The token is read from the Authorization header, or the access_token query parameter.
//	@Tags			OAuth2
//	@Produce		json
//	@Security		BearerAuth
//	@Param			access_token	query		string						false	"Access token, when not sent as a bearer header"
//	@Success		200				{object}	authsdk.TokenInfoResponse	"client_id, user_id, scope, expires_in"
//	@Failure		401				{object}	authsdk.ErrorResponse		"error, error_description"
//	@Router			/v1/oauth2/tokeninfo [get].
func (h *TokenInfoHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, err := oauth2.NewRequest(r)
	if err != nil {
		writeProtocolError(ctx, w, err)
		return
	}

	tok, err := h.Resource.AccessToken(ctx, req)
	if err != nil {
		writeProtocolError(ctx, w, err)
		return
	}

	info := authsdk.TokenInfoResponse{
		ClientID:  tok.ClientID(),
		UserID:    tok.OwnerID(),
		Scope:     strings.Join(tok.Scopes, " "),
		ExpiresIn: tok.ExpiresIn(time.Now()),
	}
	if tok.ExpiresAt != nil {
		info.ExpiresAt = tok.ExpiresAt.UTC().Format(time.RFC3339)
	}

	httpx.WriteJSON(w, http.StatusOK, info)
}
