package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/grantd/internal/auth/oauth2"
	"github.com/aussiebroadwan/grantd/pkg/authsdk"
	"github.com/aussiebroadwan/grantd/pkg/httpx"
	"github.com/aussiebroadwan/grantd/pkg/slogx"
)

// TokenHandler serves POST /v1/oauth2/token
// Accepts application/x-www-form-urlencoded per the RFC 6749 framework.
type TokenHandler struct {
	Server *oauth2.Server
}

// ServeHTTP godoc
//
//	@Summary		OAuth2 Token Endpoint
//	@Description	Issues access and refresh tokens using OAuth2 grant types (authorization_code, client_credentials, password, refresh_token).
//	@Description	Confidential clients authenticate with HTTP Basic or client_id/client_secret form fields.
//	@Tags			OAuth2
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Security		ClientAuth
//	@Param			grant_type		formData	string					true	"Grant type"	Enums(authorization_code, client_credentials, password, refresh_token)
//	@Param			code			formData	string					false	"Authorization code (required for authorization_code grant)"
//	@Param			redirect_uri	formData	string					false	"Redirect URI (required when it was sent to the authorization endpoint)"
//	@Param			refresh_token	formData	string					false	"Refresh token (required for refresh_token grant)"
//	@Param			username		formData	string					false	"Username (required for password grant)"
//	@Param			password		formData	string					false	"Password (required for password grant)"
//	@Param			client_id		formData	string					false	"Client identifier"
//	@Param			client_secret	formData	string					false	"Client secret (confidential clients not using HTTP Basic)"
//	@Param			scope			formData	string					false	"Space-delimited list of scopes"
//	@Success		200				{object}	authsdk.TokenResponse	"access_token, refresh_token, token_type, expires_in, scope"
//	@Failure		400				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		429				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		500				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Header			200				{string}	Cache-Control			"no-store"
//	@Header			200				{string}	Pragma					"no-cache"
//	@Router			/v1/oauth2/token [post].
func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Set up front so requests that fail to parse are not cached either
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")

	serveProtocol(w, r, func(ctx context.Context, req *oauth2.Request) (*oauth2.Response, error) {
		return h.Server.HandleTokenRequest(ctx, req, nil)
	})
}

// serveProtocol parses r as a protocol request, runs handle and writes the
// response. Errors that are not protocol errors answer server_error.
func serveProtocol(
	w http.ResponseWriter,
	r *http.Request,
	handle func(context.Context, *oauth2.Request) (*oauth2.Response, error),
) {
	ctx := r.Context()

	req, err := oauth2.NewRequest(r)
	if err != nil {
		writeProtocolError(ctx, w, err)
		return
	}

	resp, err := handle(ctx, req)
	if err != nil {
		writeProtocolError(ctx, w, err)
		return
	}
	resp.Write(w)
}

func writeProtocolError(ctx context.Context, w http.ResponseWriter, err error) {
	var oerr *oauth2.Error
	if errors.As(err, &oerr) {
		oerr.Write(w)
		return
	}

	slogx.FromContext(ctx).Error("oauth2 request failed", "error", err)
	httpx.WriteJSON(w, http.StatusInternalServerError, authsdk.ErrorResponse{
		Error:            oauth2.CodeServerError,
		ErrorDescription: "An internal error occurred",
	})
}
