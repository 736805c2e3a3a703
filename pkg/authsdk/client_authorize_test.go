package authsdk

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuildAuthorizeURL(t *testing.T) {
	t.Parallel()

	client := NewSDKClient("https://auth.example.com/")

	t.Run("minimal parameters", func(t *testing.T) {
		u := client.BuildAuthorizeURL(AuthorizeRequest{ClientID: "test-client"})
		require.Contains(t, u, "https://auth.example.com/v1/oauth2/authorize?")
		require.Contains(t, u, "response_type=code")
		require.Contains(t, u, "client_id=test-client")
		require.NotContains(t, u, "redirect_uri")
		require.NotContains(t, u, "state")
	})

	t.Run("all parameters", func(t *testing.T) {
		u := client.BuildAuthorizeURL(AuthorizeRequest{
			ClientID:    "test-client",
			RedirectURI: "https://app.example.com/callback",
			State:       "random-state",
			Scopes:      []string{"read", "clients:write"},
		})
		require.Contains(t, u, "redirect_uri=https%3A%2F%2Fapp.example.com%2Fcallback")
		require.Contains(t, u, "state=random-state")
		require.Contains(t, u, "scope=read+clients%3Awrite")
	})
}

func TestAuthorizationCode(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer user-token" {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_token","error_description":"nope"}`))
			return
		}

		target, _ := url.Parse("https://app.example.com/callback")
		q := url.Values{"state": {r.URL.Query().Get("state")}}
		if r.URL.Query().Get("scope") == "forbidden" {
			q.Set("error", "invalid_scope")
		} else {
			q.Set("code", "abc123")
		}
		target.RawQuery = q.Encode()
		http.Redirect(w, r, target.String(), http.StatusFound)
	}))
	t.Cleanup(srv.Close)

	client := NewSDKClient(srv.URL)
	ctx := context.Background()

	code, err := client.AuthorizationCode(ctx, "user-token", AuthorizeRequest{ClientID: "app", State: "xyz"})
	require.NoError(t, err)
	require.Equal(t, "abc123", code)

	_, err = client.AuthorizationCode(ctx, "user-token", AuthorizeRequest{ClientID: "app", Scopes: []string{"forbidden"}})
	require.True(t, IsOAuth2Error(err, ErrorCodeInvalidScope))

	_, err = client.AuthorizationCode(ctx, "bad-token", AuthorizeRequest{ClientID: "app"})
	var oerr *OAuth2Error
	require.ErrorAs(t, err, &oerr)
	require.Equal(t, http.StatusUnauthorized, oerr.StatusCode)
	require.Equal(t, ErrorCodeInvalidToken, oerr.Code)
}
