package oauth2_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/aussiebroadwan/grantd/internal/auth/domain"
	"github.com/aussiebroadwan/grantd/internal/auth/metrics"
	"github.com/aussiebroadwan/grantd/internal/auth/oauth2"
	"github.com/aussiebroadwan/grantd/internal/auth/service"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func requireOAuthError(t *testing.T, resp *oauth2.Response, status int, code string) {
	t.Helper()

	require.Equal(t, status, resp.StatusCode, string(resp.Body))
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.Equal(t, code, gjson.GetBytes(resp.Body, "error").String())
	require.NotEmpty(t, gjson.GetBytes(resp.Body, "error_description").String())
}

func TestTokenRequest_EndToEndClientCredentials(t *testing.T) {
	fx := newFixture(t, oauth2.DefaultOptions())

	resp := fx.token(t, url.Values{
		"grant_type": {"client_credentials"},
		"scope":      {"read"},
	}, fx.confidential.ID, fx.secret)

	require.Equal(t, http.StatusOK, resp.StatusCode, string(resp.Body))
	require.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	require.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	require.Equal(t, "no-cache", resp.Header.Get("Pragma"))

	body := gjson.ParseBytes(resp.Body)
	require.Len(t, body.Get("access_token").String(), 40)
	require.Equal(t, "Bearer", body.Get("token_type").String())
	require.Equal(t, int64(3600), body.Get("expires_in").Int())
	require.Equal(t, "read", body.Get("scope").String())
	require.False(t, body.Get("refresh_token").Exists())
	require.False(t, body.Get("owner_id").Exists())
}

func TestTokenRequest_Dispatch(t *testing.T) {
	fx := newFixture(t, oauth2.DefaultOptions())

	t.Run("missing grant type", func(t *testing.T) {
		resp := fx.token(t, url.Values{}, fx.confidential.ID, fx.secret)
		requireOAuthError(t, resp, http.StatusBadRequest, oauth2.CodeInvalidRequest)
		require.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
		require.Equal(t, "no-cache", resp.Header.Get("Pragma"))
	})

	t.Run("unknown grant type", func(t *testing.T) {
		resp := fx.token(t, url.Values{"grant_type": {"device_code"}}, fx.confidential.ID, fx.secret)
		requireOAuthError(t, resp, http.StatusBadRequest, oauth2.CodeUnsupportedGrantType)
	})
}

func TestTokenRequest_ClientAuthentication(t *testing.T) {
	fx := newFixture(t, oauth2.DefaultOptions())
	grant := url.Values{"grant_type": {"client_credentials"}}

	with := func(extra url.Values) url.Values {
		out := url.Values{}
		for k, v := range grant {
			out[k] = v
		}
		for k, v := range extra {
			out[k] = v
		}
		return out
	}

	tests := []struct {
		name  string
		form  url.Values
		basic []string
		code  string
	}{
		{name: "basic auth", form: grant, basic: []string{fx.confidential.ID, fx.secret}},
		{name: "body credentials", form: with(url.Values{"client_id": {fx.confidential.ID}, "client_secret": {fx.secret}})},
		{
			name:  "basic wins over body",
			form:  with(url.Values{"client_id": {fx.confidential.ID}, "client_secret": {fx.secret}}),
			basic: []string{fx.confidential.ID, "wrong"},
			code:  oauth2.CodeInvalidClient,
		},
		{name: "missing secret", form: with(url.Values{"client_id": {fx.confidential.ID}}), code: oauth2.CodeInvalidClient},
		{name: "wrong secret", form: grant, basic: []string{fx.confidential.ID, "nope"}, code: oauth2.CodeInvalidClient},
		{name: "unknown client", form: grant, basic: []string{"ghost", "nope"}, code: oauth2.CodeInvalidClient},
		{name: "public client cannot use client credentials", form: grant, basic: []string{fx.public.ID, "anything"}, code: oauth2.CodeInvalidClient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := fx.token(t, tt.form, tt.basic...)
			if tt.code == "" {
				require.Equal(t, http.StatusOK, resp.StatusCode, string(resp.Body))
				return
			}
			requireOAuthError(t, resp, http.StatusBadRequest, tt.code)
		})
	}
}

func TestTokenRequest_ClientCredentialsScopes(t *testing.T) {
	fx := newFixture(t, oauth2.DefaultOptions())

	resp := fx.token(t, url.Values{"grant_type": {"client_credentials"}}, fx.confidential.ID, fx.secret)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "read", gjson.GetBytes(resp.Body, "scope").String())

	resp = fx.token(t, url.Values{"grant_type": {"client_credentials"}, "scope": {"read write"}}, fx.confidential.ID, fx.secret)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "read write", gjson.GetBytes(resp.Body, "scope").String())

	resp = fx.token(t, url.Values{"grant_type": {"client_credentials"}, "scope": {"read launch"}}, fx.confidential.ID, fx.secret)
	requireOAuthError(t, resp, http.StatusBadRequest, oauth2.CodeInvalidScope)
	require.Contains(t, gjson.GetBytes(resp.Body, "error_description").String(), "launch")
}

func TestTokenRequest_ExternalOwnerIsAttached(t *testing.T) {
	fx := newFixture(t, oauth2.DefaultOptions())

	req := postForm(t, url.Values{"grant_type": {"client_credentials"}}, fx.confidential.ID, fx.secret)
	resp, err := fx.server.HandleTokenRequest(context.Background(), req, domain.OwnerID("svc-user"))
	require.NoError(t, err)
	require.Equal(t, "svc-user", gjson.GetBytes(resp.Body, "owner_id").String())
}

func TestServer_Client(t *testing.T) {
	fx := newFixture(t, oauth2.DefaultOptions())
	ctx := context.Background()

	t.Run("no client when public clients are allowed", func(t *testing.T) {
		c, err := fx.server.Client(ctx, postForm(t, url.Values{}), true)
		require.NoError(t, err)
		require.Nil(t, c)
	})

	t.Run("public client passes without a secret", func(t *testing.T) {
		c, err := fx.server.Client(ctx, postForm(t, url.Values{"client_id": {fx.public.ID}}), true)
		require.NoError(t, err)
		require.Equal(t, fx.public.ID, c.ID)
	})

	t.Run("confidential client is always checked", func(t *testing.T) {
		_, err := fx.server.Client(ctx, postForm(t, url.Values{"client_id": {fx.confidential.ID}}), true)
		var oerr *oauth2.Error
		require.ErrorAs(t, err, &oerr)
		require.Equal(t, oauth2.CodeInvalidClient, oerr.Code)
	})

	t.Run("secret required", func(t *testing.T) {
		_, err := fx.server.Client(ctx, postForm(t, url.Values{"client_id": {fx.confidential.ID}}), false)
		var oerr *oauth2.Error
		require.ErrorAs(t, err, &oerr)
		require.Equal(t, "client secret is missing", oerr.Description)
	})
}

type brokenClients struct{ err error }

func (b brokenClients) GetClient(context.Context, string) (*domain.Client, error) {
	return nil, b.err
}

func TestTokenRequest_StorageFailurePropagates(t *testing.T) {
	fx := newFixture(t, oauth2.DefaultOptions())
	boom := errors.New("database is locked")

	srv := oauth2.NewServer(brokenClients{boom}, fx.access, fx.refresh, oauth2.NewRegistry().MustRegister(
		oauth2.NewClientCredentialsGrant(fx.access),
	), nil)

	resp, err := srv.HandleTokenRequest(context.Background(),
		postForm(t, url.Values{"grant_type": {"client_credentials"}}, "id", "secret"), nil)
	require.ErrorIs(t, err, boom)
	require.Nil(t, resp)
}

func TestServer_Metrics(t *testing.T) {
	fx := newFixture(t, oauth2.DefaultOptions())
	m := metrics.New()

	srv := oauth2.NewServer(fx.clients, fx.access, fx.refresh, oauth2.NewRegistry().MustRegister(
		oauth2.NewClientCredentialsGrant(fx.access),
	), m)

	ctx := context.Background()
	_, err := srv.HandleTokenRequest(ctx, postForm(t, url.Values{"grant_type": {"client_credentials"}}, fx.confidential.ID, fx.secret), nil)
	require.NoError(t, err)
	_, err = srv.HandleTokenRequest(ctx, postForm(t, url.Values{}), nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Contains(t, rec.Body.String(), `grantd_oauth2_requests_total{endpoint="token",outcome="ok"} 1`)
	require.Contains(t, rec.Body.String(), `grantd_oauth2_requests_total{endpoint="token",outcome="invalid_request"} 1`)
}

func TestRegistry(t *testing.T) {
	fx := newFixture(t, oauth2.DefaultOptions())

	reg := oauth2.NewRegistry()
	cc := oauth2.NewClientCredentialsGrant(fx.access)
	code := oauth2.NewAuthorizationCodeGrant(fx.codes, fx.access, fx.refresh, reg)

	require.NoError(t, reg.Register(cc))
	require.NoError(t, reg.Register(code))
	require.ErrorIs(t, reg.Register(cc), oauth2.ErrDuplicateGrant)

	require.True(t, reg.HasGrant("client_credentials"))
	require.True(t, reg.HasGrant("authorization_code"))
	require.False(t, reg.HasGrant("password"))
	require.True(t, reg.HasResponseType("code"))
	require.False(t, reg.HasResponseType(""))

	g, err := reg.ResponseType("code")
	require.NoError(t, err)
	require.Equal(t, "authorization_code", g.Type())

	_, err = reg.Grant("password")
	var oerr *oauth2.Error
	require.ErrorAs(t, err, &oerr)
	require.Equal(t, oauth2.CodeUnsupportedGrantType, oerr.Code)

	_, err = reg.ResponseType("token")
	require.ErrorAs(t, err, &oerr)
	require.Equal(t, oauth2.CodeUnsupportedResponseType, oerr.Code)

	oauth2.NewServer(fx.clients, fx.access, fx.refresh, reg, nil)
	require.ErrorIs(t, reg.Register(oauth2.NewRefreshTokenGrant(fx.access, fx.refresh, fx.opts)), oauth2.ErrRegistrySealed)
}

func TestTokenOnlyGrantsRejectAuthorization(t *testing.T) {
	fx := newFixture(t, oauth2.DefaultOptions())

	for _, g := range []oauth2.Grant{
		oauth2.NewClientCredentialsGrant(fx.access),
		oauth2.NewRefreshTokenGrant(fx.access, fx.refresh, fx.opts),
		oauth2.NewPasswordGrant(fx.access, fx.refresh, nil, nil),
	} {
		require.Empty(t, g.ResponseType())
		_, err := g.CreateAuthorizationResponse(context.Background(), getQuery(t, url.Values{}), fx.confidential, nil)
		var oerr *oauth2.Error
		require.ErrorAs(t, err, &oerr, g.Type())
		require.Equal(t, oauth2.CodeInvalidRequest, oerr.Code)
	}
}

var _ oauth2.ClientFinder = (*service.ClientService)(nil)
