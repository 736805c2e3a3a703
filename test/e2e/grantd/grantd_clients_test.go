package grantd_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/grantd/pkg/authsdk"
	"github.com/stretchr/testify/require"
)

func TestClientsAdmin(t *testing.T) {
	client := setupContainer(t)
	creds := bootstrapService(t, client)
	ctx := t.Context()

	admin := adminSession(t, client, creds)

	created, err := admin.CreateClient(ctx, authsdk.CreateClientRequest{
		Name:         "backend",
		Confidential: true,
		Scopes:       []string{"profile:read"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ClientSecret)

	t.Run("Get", func(t *testing.T) {
		info, err := admin.GetClient(ctx, created.ClientID)
		require.NoError(t, err)
		require.Equal(t, "backend", info.Name)
		require.True(t, info.HasSecret)
		require.Equal(t, []string{"profile:read"}, info.Scopes)
	})

	t.Run("List", func(t *testing.T) {
		list, err := admin.ListClients(ctx)
		require.NoError(t, err)
		require.Len(t, list.Clients, 2)
	})

	t.Run("AllowListIsEnforced", func(t *testing.T) {
		backend := authsdk.ClientCredentials{ID: created.ClientID, Secret: created.ClientSecret}
		_, err := client.ClientCredentialsGrant(ctx, backend, []string{"profile:write"})
		assertOAuth2Error(t, err, http.StatusBadRequest, authsdk.ErrorCodeInvalidScope)
	})

	t.Run("CannotDelegateUnheldScopes", func(t *testing.T) {
		narrow, err := client.AuthenticateWithClientCredentials(ctx, creds, []string{"clients:write"})
		require.NoError(t, err)

		_, err = narrow.CreateClient(ctx, authsdk.CreateClientRequest{
			Name:   "greedy",
			Scopes: []string{"profile:write"},
		})
		assertOAuth2Error(t, err, http.StatusForbidden, authsdk.ErrorCodeInsufficientScope)
	})

	t.Run("RequiresScope", func(t *testing.T) {
		reader, err := client.AuthenticateWithClientCredentials(ctx, creds, []string{"profile:read"})
		require.NoError(t, err)

		_, err = reader.ListClients(ctx)
		assertOAuth2Error(t, err, http.StatusForbidden, authsdk.ErrorCodeInsufficientScope)
	})

	t.Run("CannotDeleteSelf", func(t *testing.T) {
		err := admin.DeleteClient(ctx, creds.ID)
		assertOAuth2Error(t, err, http.StatusBadRequest, authsdk.ErrorCodeInvalidRequest)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, admin.DeleteClient(ctx, created.ClientID))

		_, err := admin.GetClient(ctx, created.ClientID)
		assertOAuth2Error(t, err, http.StatusNotFound, "not_found")
	})
}

func TestListScopes(t *testing.T) {
	client := setupContainer(t)
	creds := bootstrapService(t, client)

	scopes, err := adminSession(t, client, creds).ListScopes(t.Context())
	require.NoError(t, err)

	byName := make(map[string]authsdk.ScopeDefinition, len(scopes.Scopes))
	for _, s := range scopes.Scopes {
		byName[s.Name] = s
	}
	require.Contains(t, byName, "clients:write")
	require.True(t, byName["profile:read"].Default)
	require.False(t, byName["profile:write"].Default)
}
