package authsdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// tokenServer answers the token endpoint with fresh tokens that expire
// immediately, so every session call refreshes.
func tokenServer(t *testing.T, handle func(r *http.Request) (int, any)) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		status, body := handle(r)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientCredentialsGrant_SendsBasicAuth(t *testing.T) {
	t.Parallel()

	srv := tokenServer(t, func(r *http.Request) (int, any) {
		id, secret, ok := r.BasicAuth()
		require.True(t, ok)
		// Basic credentials are form-encoded before base64
		require.Equal(t, "my+client", id)
		require.Equal(t, "s%3Acret", secret)
		require.Empty(t, r.PostForm.Get("client_id"))
		require.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		require.Equal(t, "read write", r.PostForm.Get("scope"))

		return http.StatusOK, TokenResponse{AccessToken: "at", TokenType: "Bearer", ExpiresIn: 3600, Scope: "read write"}
	})

	c := NewSDKClient(srv.URL)
	resp, err := c.ClientCredentialsGrant(context.Background(), ClientCredentials{ID: "my client", Secret: "s:cret"}, []string{"read", "write"})
	require.NoError(t, err)
	require.Equal(t, "at", resp.AccessToken)
	require.Equal(t, 3600, resp.ExpiresIn)
}

func TestPasswordGrant_PublicClientSendsClientID(t *testing.T) {
	t.Parallel()

	srv := tokenServer(t, func(r *http.Request) (int, any) {
		_, _, ok := r.BasicAuth()
		require.False(t, ok)
		require.Equal(t, "spa", r.PostForm.Get("client_id"))
		require.Equal(t, "alice", r.PostForm.Get("username"))
		return http.StatusOK, TokenResponse{AccessToken: "at", RefreshToken: "rt", TokenType: "Bearer"}
	})

	c := NewSDKClient(srv.URL)
	resp, err := c.PasswordGrant(context.Background(), ClientCredentials{ID: "spa"}, "alice", "pw", nil)
	require.NoError(t, err)
	require.Equal(t, "rt", resp.RefreshToken)
}

func TestTokenErrorsAreTyped(t *testing.T) {
	t.Parallel()

	srv := tokenServer(t, func(r *http.Request) (int, any) {
		return http.StatusBadRequest, ErrorResponse{Error: ErrorCodeInvalidGrant, ErrorDescription: "refresh token is expired"}
	})

	c := NewSDKClient(srv.URL)
	_, err := c.RefreshGrant(context.Background(), ClientCredentials{ID: "spa"}, "old")

	var oerr *OAuth2Error
	require.ErrorAs(t, err, &oerr)
	require.Equal(t, http.StatusBadRequest, oerr.StatusCode)
	require.Equal(t, "refresh token is expired", oerr.Description)
	require.True(t, IsOAuth2Error(err, ErrorCodeInvalidGrant))
}

func TestParseErrorResponse_Fallbacks(t *testing.T) {
	t.Parallel()

	resp := &http.Response{StatusCode: http.StatusBadRequest}
	err := parseErrorResponse(resp, []byte(`{"code":"validation_error","message":"bad","details":{"name":"required"}}`))
	var oerr *OAuth2Error
	require.ErrorAs(t, err, &oerr)
	require.Equal(t, "validation_error", oerr.Code)
	require.Equal(t, map[string]string{"name": "required"}, oerr.Details)

	resp = &http.Response{StatusCode: http.StatusBadGateway}
	require.True(t, IsOAuth2Error(parseErrorResponse(resp, []byte("<html>")), ErrorCodeServerError))

	require.NoError(t, parseErrorResponse(&http.Response{StatusCode: http.StatusOK}, nil))
}

func TestSession_RefreshesExpiredTokens(t *testing.T) {
	t.Parallel()

	var refreshes atomic.Int32
	srv := tokenServer(t, func(r *http.Request) (int, any) {
		switch r.PostForm.Get("grant_type") {
		case "password":
			return http.StatusOK, TokenResponse{AccessToken: "at-0", RefreshToken: "rt-0", ExpiresIn: 1}
		case "refresh_token":
			n := refreshes.Add(1)
			require.Equal(t, "rt-0", r.PostForm.Get("refresh_token"))
			// No rotation: the old refresh token stays in use
			return http.StatusOK, TokenResponse{AccessToken: "at-" + string(rune('0'+n)), ExpiresIn: 3600, Scope: "read"}
		}
		return http.StatusBadRequest, ErrorResponse{Error: ErrorCodeUnsupportedGrantType}
	})

	c := NewSDKClient(srv.URL)
	ctx := context.Background()
	s, err := c.AuthenticateWithPassword(ctx, ClientCredentials{ID: "spa"}, "alice", "pw", nil)
	require.NoError(t, err)

	// ExpiresIn is below the refresh buffer, so the first use refreshes
	token, err := s.getValidToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "at-1", token)
	require.Equal(t, "rt-0", s.RefreshToken())
	require.True(t, s.HasScope("read"))

	token, err = s.getValidToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "at-1", token)
	require.Equal(t, int32(1), refreshes.Load())
}

func TestSession_ClientCredentialsReauthenticates(t *testing.T) {
	t.Parallel()

	var grants atomic.Int32
	srv := tokenServer(t, func(r *http.Request) (int, any) {
		grants.Add(1)
		return http.StatusOK, TokenResponse{AccessToken: "at", ExpiresIn: 1}
	})

	c := NewSDKClient(srv.URL)
	ctx := context.Background()
	s, err := c.AuthenticateWithClientCredentials(ctx, ClientCredentials{ID: "svc", Secret: "x"}, nil)
	require.NoError(t, err)

	_, err = s.getValidToken(ctx)
	require.NoError(t, err)
	require.Equal(t, int32(2), grants.Load())
}

func TestSession_NoRefreshToken(t *testing.T) {
	t.Parallel()

	c := NewSDKClient("http://unused")
	s := c.NewSessionFromTokens(ClientCredentials{ID: "spa"}, &TokenResponse{AccessToken: "at", ExpiresIn: 1})

	_, err := s.getValidToken(context.Background())
	require.ErrorIs(t, err, ErrNoRefreshToken)

	// Tokens without expires_in never expire
	s = c.NewSessionFromTokens(ClientCredentials{ID: "spa"}, &TokenResponse{AccessToken: "forever"})
	token, err := s.getValidToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, "forever", token)
}

func TestSession_CheckScopes(t *testing.T) {
	t.Parallel()

	c := NewSDKClient("http://unused")
	s := c.NewSessionFromTokens(ClientCredentials{}, &TokenResponse{AccessToken: "at", Scope: "clients:read"})

	_, err := s.CreateClient(context.Background(), CreateClientRequest{Name: "x"})
	require.ErrorContains(t, err, "clients:write")

	c.CheckScopes = false
	require.NoError(t, s.checkScopes(scopeClientsWrite))
}

func TestRevokeToken(t *testing.T) {
	t.Parallel()

	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		got = r.PostForm
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(srv.Close)

	c := NewSDKClient(srv.URL)
	require.NoError(t, c.RevokeToken(context.Background(), ClientCredentials{ID: "spa"}, "rt", "refresh_token"))
	require.Equal(t, "rt", got.Get("token"))
	require.Equal(t, "refresh_token", got.Get("token_type_hint"))
	require.Equal(t, "spa", got.Get("client_id"))
}
