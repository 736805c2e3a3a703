package httpx_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aussiebroadwan/grantd/pkg/httpx"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

type stubVerifier map[string]httpx.Principal

func (s stubVerifier) VerifyBearer(_ context.Context, raw string) (httpx.Principal, error) {
	p, ok := s[raw]
	if !ok {
		return httpx.Principal{}, errors.New("unknown token")
	}
	return p, nil
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestChain_Order(t *testing.T) {
	var order []string
	mw := func(name string) httpx.Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := httpx.Chain(okHandler(), mw("a"), mw("b"), mw("c"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, []string{"a", "b", "c"}, order)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		err    bool
	}{
		{"valid", "Bearer abc", "abc", false},
		{"lowercase scheme", "bearer abc", "abc", false},
		{"missing", "", "", true},
		{"basic scheme", "Basic Zm9vOmJhcg==", "", true},
		{"empty token", "Bearer   ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			got, err := httpx.BearerToken(req)
			if tt.err {
				require.ErrorIs(t, err, httpx.ErrNoBearer)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestAuthnMiddleware(t *testing.T) {
	verifier := stubVerifier{"good": {Subject: "alice", ClientID: "app", Scopes: []string{"read"}}}

	var seen httpx.Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = httpx.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	h := httpx.AuthnMiddleware(verifier)(next)

	t.Run("valid token attaches principal", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer good")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "alice", seen.Subject)
		require.Equal(t, []string{"read"}, seen.Scopes)
	})

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), `error="invalid_token"`)
		require.Equal(t, "invalid_token", gjson.Get(rec.Body.String(), "error").String())
	})

	t.Run("unknown token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestOptionalAuthnMiddleware(t *testing.T) {
	verifier := stubVerifier{"good": {Subject: "alice"}}

	var hasPrincipal bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, hasPrincipal = httpx.PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	h := httpx.OptionalAuthnMiddleware(verifier)(next)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, hasPrincipal)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer good")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, hasPrincipal)

	// A bad token is still an error, even on optional routes
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer bad")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireScopes(t *testing.T) {
	withScopes := func(scopes ...string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		return req.WithContext(httpx.WithPrincipal(req.Context(), httpx.Principal{Scopes: scopes}))
	}

	tests := []struct {
		name   string
		mw     httpx.Middleware
		req    *http.Request
		status int
	}{
		{"any: one matches", httpx.RequireAnyScope("clients:read", "clients:write"), withScopes("clients:write"), http.StatusOK},
		{"any: none match", httpx.RequireAnyScope("clients:read"), withScopes("read"), http.StatusForbidden},
		{"any: anonymous", httpx.RequireAnyScope("clients:read"), httptest.NewRequest(http.MethodGet, "/", nil), http.StatusForbidden},
		{"all: has all", httpx.RequireAllScopes("a", "b"), withScopes("b", "a", "c"), http.StatusOK},
		{"all: missing one", httpx.RequireAllScopes("a", "b"), withScopes("a"), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.mw(okHandler()).ServeHTTP(rec, tt.req)

			require.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusForbidden {
				require.Equal(t, "insufficient_scope", gjson.Get(rec.Body.String(), "error").String())
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.WriteJSON(rec, http.StatusCreated, map[string]int{"n": 1})

	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	require.Equal(t, int64(1), gjson.Get(rec.Body.String(), "n").Int())
}

func TestParseSpaceDelimitedFields(t *testing.T) {
	require.Nil(t, httpx.ParseSpaceDelimitedFields("   "))
	require.Equal(t, []string{"read", "write"}, httpx.ParseSpaceDelimitedFields(" read  write "))
}
