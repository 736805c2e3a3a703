package service

import (
	"context"
	"errors"
	"testing"

	"github.com/aussiebroadwan/grantd/internal/auth/domain"
	"github.com/aussiebroadwan/grantd/internal/auth/store"
	"github.com/aussiebroadwan/grantd/internal/auth/store/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newClientService(t *testing.T) (*ClientService, *mock.MockClients, *mock.MockScopes) {
	t.Helper()

	ctrl := gomock.NewController(t)
	clients := mock.NewMockClients(ctrl)
	scopes := mock.NewMockScopes(ctrl)
	return &ClientService{Clients: clients, Scopes: scopes}, clients, scopes
}

func TestCreateClient(t *testing.T) {
	ctx := context.Background()

	t.Run("confidential gets a secret", func(t *testing.T) {
		svc, clients, _ := newClientService(t)
		clients.EXPECT().CreateClient(gomock.Any(), gomock.Any()).Return(nil)

		c, secret, err := svc.CreateClient(ctx, NewClientParams{Name: "svc", Confidential: true})
		require.NoError(t, err)
		require.NotEmpty(t, secret)
		require.False(t, c.IsPublic())
		require.True(t, c.Authenticate(secret))
		require.NotEqual(t, secret, c.Secret)
	})

	t.Run("public has no secret", func(t *testing.T) {
		svc, clients, _ := newClientService(t)
		clients.EXPECT().CreateClient(gomock.Any(), gomock.Any()).Return(nil)

		c, secret, err := svc.CreateClient(ctx, NewClientParams{
			Name:         "spa",
			RedirectURIs: []string{" https://spa.example/cb "},
		})
		require.NoError(t, err)
		require.Empty(t, secret)
		require.True(t, c.IsPublic())
		require.Equal(t, []string{"https://spa.example/cb"}, c.RedirectURIs)
	})

	t.Run("allow-list must be registered", func(t *testing.T) {
		svc, _, scopes := newClientService(t)
		scopes.EXPECT().GetAll(gomock.Any()).Return(registered, nil)

		_, _, err := svc.CreateClient(ctx, NewClientParams{Name: "svc", Scopes: []string{"read", "root"}})
		require.ErrorIs(t, err, ErrInvalidScope)
	})

	t.Run("allow-list is kept", func(t *testing.T) {
		svc, clients, scopes := newClientService(t)
		scopes.EXPECT().GetAll(gomock.Any()).Return(registered, nil)
		clients.EXPECT().CreateClient(gomock.Any(), gomock.Any()).Return(nil)

		c, _, err := svc.CreateClient(ctx, NewClientParams{Name: "svc", Scopes: []string{"read", "read", "write"}})
		require.NoError(t, err)
		require.Equal(t, []string{"read", "write"}, c.Scopes)
	})

	t.Run("validation", func(t *testing.T) {
		svc, _, _ := newClientService(t)

		_, _, err := svc.CreateClient(ctx, NewClientParams{Name: "  "})
		require.ErrorIs(t, err, ErrInvalidClientName)

		for _, uri := range []string{"/relative", "https://app.example/cb#frag", "not a url"} {
			_, _, err = svc.CreateClient(ctx, NewClientParams{Name: "x", RedirectURIs: []string{uri}})
			require.ErrorIs(t, err, ErrInvalidRedirectURI, uri)
		}
	})

	t.Run("storage failure", func(t *testing.T) {
		svc, clients, _ := newClientService(t)
		boom := errors.New("boom")
		clients.EXPECT().CreateClient(gomock.Any(), gomock.Any()).Return(boom)

		_, _, err := svc.CreateClient(ctx, NewClientParams{Name: "svc"})
		require.ErrorIs(t, err, boom)
	})
}

func TestGetAndDeleteClient(t *testing.T) {
	ctx := context.Background()
	svc, clients, _ := newClientService(t)

	clients.EXPECT().GetClientByID(gomock.Any(), "missing").Return(nil, store.ErrNotFound)
	_, err := svc.GetClient(ctx, "missing")
	require.ErrorIs(t, err, ErrClientNotFound)

	want := &domain.Client{ID: "c1"}
	clients.EXPECT().GetClientByID(gomock.Any(), "c1").Return(want, nil)
	got, err := svc.GetClient(ctx, "c1")
	require.NoError(t, err)
	require.Same(t, want, got)

	clients.EXPECT().DeleteClient(gomock.Any(), "missing").Return(store.ErrNotFound)
	require.ErrorIs(t, svc.DeleteClient(ctx, "missing"), ErrClientNotFound)

	clients.EXPECT().DeleteClient(gomock.Any(), "c1").Return(nil)
	require.NoError(t, svc.DeleteClient(ctx, "c1"))

	clients.EXPECT().ListClients(gomock.Any()).Return([]*domain.Client{want}, nil)
	list, err := svc.ListClients(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
}
