package http

import (
	"context"
	"net/http"

	"github.com/aussiebroadwan/grantd/internal/auth/oauth2"
)

// RevokeHandler serves POST /v1/oauth2/revoke following RFC 7009. Unknown
// tokens answer 200 OK to prevent token scanning.
type RevokeHandler struct {
	Server *oauth2.Server
}

// ServeHTTP godoc
//
//	@Summary		OAuth2 Token Revocation Endpoint
//	@Description	Revokes a previously issued access or refresh token (RFC 7009).
//	@Description	Tokens issued to confidential clients can only be revoked by that client.
//	@Description	The endpoint returns 200 OK even for unknown tokens, and 503 when the token could not be deleted.
//	@Tags			OAuth2
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Security		ClientAuth
//	@Param			token			formData	string	true	"The token to revoke"
//	@Param			token_type_hint	formData	string	true	"Kind of token"	Enums(access_token, refresh_token)
//	@Success		200				"Token revoked successfully (or was already invalid)"
//	@Failure		400				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		503				"Token could not be revoked, retry later"
//	@Router			/v1/oauth2/revoke [post].
func (h *RevokeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	serveProtocol(w, r, func(ctx context.Context, req *oauth2.Request) (*oauth2.Response, error) {
		return h.Server.HandleRevocationRequest(ctx, req)
	})
}
