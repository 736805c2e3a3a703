package httpx

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/aussiebroadwan/grantd/pkg/slogx"
)

// ErrNoBearer is returned by BearerToken when the request carries no token.
var ErrNoBearer = errors.New("httpx: missing bearer token")

// TokenVerifier resolves a raw bearer token into the principal it stands for.
type TokenVerifier interface {
	VerifyBearer(ctx context.Context, raw string) (Principal, error)
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, error) {
	return BearerFromHeader(r.Header)
}

// BearerFromHeader is BearerToken for a bare header set.
func BearerFromHeader(h http.Header) (string, error) {
	authz := h.Get("Authorization")
	scheme, raw, ok := strings.Cut(authz, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", ErrNoBearer
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrNoBearer
	}
	return raw, nil
}

// AuthnMiddleware rejects requests without a valid bearer token.
func AuthnMiddleware(v TokenVerifier) Middleware {
	return authn(v, true)
}

// OptionalAuthnMiddleware attaches the principal when a valid bearer token is
// present and lets anonymous requests through untouched. An invalid token is
// still rejected.
func OptionalAuthnMiddleware(v TokenVerifier) Middleware {
	return authn(v, false)
}

func authn(v TokenVerifier, required bool) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			raw, err := BearerToken(r)
			if err != nil {
				if !required {
					next.ServeHTTP(w, r)
					return
				}
				writeBearerError(w, "missing bearer token")
				return
			}

			p, err := v.VerifyBearer(ctx, raw)
			if err != nil {
				slogx.FromContext(ctx).Info("bearer token rejected", "err", err)
				writeBearerError(w, "the access token is invalid or expired")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, p)))
		})
	}
}

// RFC 6750 error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	WriteJSON(w, http.StatusUnauthorized, map[string]string{
		"error":             "invalid_token",
		"error_description": desc,
	})
}
