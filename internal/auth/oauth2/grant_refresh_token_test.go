package oauth2_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/aussiebroadwan/grantd/internal/auth/domain"
	"github.com/aussiebroadwan/grantd/internal/auth/oauth2"
	"github.com/aussiebroadwan/grantd/internal/auth/service"
	"github.com/aussiebroadwan/grantd/internal/auth/store"
	"github.com/aussiebroadwan/grantd/pkg/slogx"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

// countingDeletes counts DeleteToken calls on the wrapped service.
type countingDeletes struct {
	oauth2.TokenService
	deletes atomic.Int32
}

func (c *countingDeletes) DeleteToken(ctx context.Context, tok *domain.Token) error {
	c.deletes.Add(1)
	return c.TokenService.DeleteToken(ctx, tok)
}

func TestRefreshGrant_RotationMatrix(t *testing.T) {
	tests := []struct {
		name        string
		rotate      bool
		revoke      bool
		wantNew     bool
		wantOldLive bool
		wantDeletes int32
	}{
		{name: "no rotation", rotate: false, revoke: true, wantNew: false, wantOldLive: true},
		{name: "no rotation, revoke flag ignored", rotate: false, revoke: false, wantNew: false, wantOldLive: true},
		{name: "rotate and keep", rotate: true, revoke: false, wantNew: true, wantOldLive: true},
		{name: "rotate and revoke", rotate: true, revoke: true, wantNew: true, wantOldLive: false, wantDeletes: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			opts := oauth2.DefaultOptions()
			opts.RotateRefreshTokens = tt.rotate
			opts.RevokeRotatedRefreshTokens = tt.revoke
			fx := newFixture(t, opts)

			old, err := fx.refresh.CreateToken(ctx, fx.user, fx.confidential, []string{"read", "write"})
			require.NoError(t, err)

			refresh := &countingDeletes{TokenService: fx.refresh}
			grant := oauth2.NewRefreshTokenGrant(fx.access, refresh, opts)

			resp, err := grant.CreateTokenResponse(ctx, postForm(t, url.Values{
				"grant_type":    {"refresh_token"},
				"refresh_token": {old.Value},
			}), fx.confidential, nil)
			require.NoError(t, err)
			require.Equal(t, http.StatusOK, resp.StatusCode)

			body := gjson.ParseBytes(resp.Body)
			returned := body.Get("refresh_token").String()
			require.Len(t, body.Get("access_token").String(), 40)
			require.Equal(t, "read write", body.Get("scope").String())
			require.Equal(t, fx.user.ID, body.Get("owner_id").String())

			if tt.wantNew {
				require.NotEqual(t, old.Value, returned)
				_, err := fx.refresh.GetToken(ctx, returned)
				require.NoError(t, err)
			} else {
				require.Equal(t, old.Value, returned)
			}

			_, err = fx.refresh.GetToken(ctx, old.Value)
			if tt.wantOldLive {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, service.ErrTokenNotFound)
			}
			require.Equal(t, tt.wantDeletes, refresh.deletes.Load())
		})
	}
}

func TestRefreshGrant_Scopes(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, oauth2.DefaultOptions())

	old, err := fx.refresh.CreateToken(ctx, fx.user, fx.confidential, []string{"read", "write"})
	require.NoError(t, err)

	exchange := func(scope string) *oauth2.Response {
		form := url.Values{"grant_type": {"refresh_token"}, "refresh_token": {old.Value}}
		if scope != "" {
			form.Set("scope", scope)
		}
		return fx.token(t, form, fx.confidential.ID, fx.secret)
	}

	resp := exchange("write")
	require.Equal(t, http.StatusOK, resp.StatusCode, string(resp.Body))
	require.Equal(t, "write", gjson.GetBytes(resp.Body, "scope").String())

	resp = exchange("read write")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "read write", gjson.GetBytes(resp.Body, "scope").String())

	resp = exchange("")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "read write", gjson.GetBytes(resp.Body, "scope").String())

	// admin is registered but was never granted to the refresh token
	resp = exchange("read admin")
	requireOAuthError(t, resp, http.StatusBadRequest, oauth2.CodeInvalidScope)

	access, err := fx.access.GetToken(ctx, gjson.GetBytes(exchange("read").Body, "access_token").String())
	require.NoError(t, err)
	require.Equal(t, []string{"read"}, access.Scopes)
	require.Equal(t, fx.confidential.ID, access.ClientID())
	require.Equal(t, fx.user.ID, access.OwnerID())
}

func TestRefreshGrant_Rejections(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t, oauth2.DefaultOptions())

	confidentialRT, err := fx.refresh.CreateToken(ctx, fx.user, fx.confidential, nil)
	require.NoError(t, err)
	publicRT, err := fx.refresh.CreateToken(ctx, fx.user, fx.public, nil)
	require.NoError(t, err)
	expired := fx.expired(t, domain.KindRefreshToken, fx.user, fx.confidential)

	form := func(value string) url.Values {
		return url.Values{"grant_type": {"refresh_token"}, "refresh_token": {value}}
	}

	t.Run("missing refresh token", func(t *testing.T) {
		resp := fx.token(t, url.Values{"grant_type": {"refresh_token"}}, fx.confidential.ID, fx.secret)
		requireOAuthError(t, resp, http.StatusBadRequest, oauth2.CodeInvalidRequest)
	})

	t.Run("unknown", func(t *testing.T) {
		resp := fx.token(t, form("ffffffffffffffffffffffffffffffffffffffff"), fx.confidential.ID, fx.secret)
		requireOAuthError(t, resp, http.StatusBadRequest, oauth2.CodeInvalidGrant)
	})

	t.Run("expired", func(t *testing.T) {
		resp := fx.token(t, form(expired.Value), fx.confidential.ID, fx.secret)
		requireOAuthError(t, resp, http.StatusBadRequest, oauth2.CodeInvalidGrant)
	})

	t.Run("another client", func(t *testing.T) {
		resp := fx.token(t, form(confidentialRT.Value), fx.other.ID, fx.otherSecret)
		requireOAuthError(t, resp, http.StatusBadRequest, oauth2.CodeInvalidGrant)
	})

	t.Run("confidential token without client authentication", func(t *testing.T) {
		resp := fx.token(t, form(confidentialRT.Value))
		requireOAuthError(t, resp, http.StatusBadRequest, oauth2.CodeInvalidClient)
	})

	t.Run("public token without client authentication", func(t *testing.T) {
		resp := fx.token(t, form(publicRT.Value))
		require.Equal(t, http.StatusOK, resp.StatusCode, string(resp.Body))
	})

	t.Run("public token named by its client", func(t *testing.T) {
		f := form(publicRT.Value)
		f.Set("client_id", fx.public.ID)
		resp := fx.token(t, f)
		require.Equal(t, http.StatusOK, resp.StatusCode, string(resp.Body))
	})
}

// alreadyGone reports every delete as a lost race.
type alreadyGone struct {
	oauth2.TokenService
}

func (alreadyGone) DeleteToken(context.Context, *domain.Token) error { return store.ErrNotFound }

func TestRefreshGrant_ConcurrentRotationLoses(t *testing.T) {
	ctx := context.Background()
	opts := oauth2.DefaultOptions()
	opts.RotateRefreshTokens = true
	fx := newFixture(t, opts)

	old, err := fx.refresh.CreateToken(ctx, fx.user, fx.confidential, nil)
	require.NoError(t, err)

	grant := oauth2.NewRefreshTokenGrant(fx.access, alreadyGone{fx.refresh}, opts)
	_, err = grant.CreateTokenResponse(ctx, postForm(t, url.Values{"refresh_token": {old.Value}}), fx.confidential, nil)

	var oerr *oauth2.Error
	require.ErrorAs(t, err, &oerr)
	require.Equal(t, oauth2.CodeInvalidGrant, oerr.Code)
}

// brokenDeletes fails every delete with a storage error.
type brokenDeletes struct {
	oauth2.TokenService
}

var errDiskFull = errors.New("disk full")

func (brokenDeletes) DeleteToken(context.Context, *domain.Token) error { return errDiskFull }

func TestRefreshGrant_RotationCleanupFailureIsLogged(t *testing.T) {
	var logs bytes.Buffer
	ctx := slogx.WithContext(context.Background(), slog.New(slog.NewJSONHandler(&logs, nil)))

	opts := oauth2.DefaultOptions()
	opts.RotateRefreshTokens = true
	opts.RevokeRotatedRefreshTokens = true
	fx := newFixture(t, opts)

	old, err := fx.refresh.CreateToken(ctx, fx.user, fx.confidential, nil)
	require.NoError(t, err)

	grant := oauth2.NewRefreshTokenGrant(fx.access, brokenDeletes{fx.refresh}, opts)
	_, err = grant.CreateTokenResponse(ctx, postForm(t, url.Values{"refresh_token": {old.Value}}), fx.confidential, nil)
	require.ErrorIs(t, err, errDiskFull)

	line := gjson.Get(logs.String(), `..#(msg=="failed to remove rotated refresh token")`)
	require.True(t, line.Exists(), logs.String())
	require.Equal(t, "ERROR", line.Get("level").String())
	require.Equal(t, fx.confidential.ID, line.Get("client_id").String())
	require.Equal(t, errDiskFull.Error(), line.Get("error").String())
}
