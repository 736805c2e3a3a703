package service

import (
	"context"
	"sync"
	"testing"

	"github.com/aussiebroadwan/grantd/internal/auth/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootstrap(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	svc := &BootstrapService{Store: s, Token: "let-me-in"}

	req := domain.BootstrapData{
		ClientName:    "admin-cli",
		ClientScopes:  []string{"read"},
		Scopes:        []domain.ScopeDefinition{{Name: "read", Default: true}, {Name: "write"}},
		AdminUsername: "root",
		AdminPassword: "hunter2",
	}

	done, err := svc.IsBootstrapped(ctx)
	require.NoError(t, err)
	require.False(t, done)

	_, err = svc.Bootstrap(ctx, "wrong", req)
	require.ErrorIs(t, err, ErrBootstrapUnauthorized)

	res, err := svc.Bootstrap(ctx, "let-me-in", req)
	require.NoError(t, err)
	require.NotEmpty(t, res.ClientSecret)
	require.NotEmpty(t, res.UserID)
	require.ElementsMatch(t, []string{"read", domain.ScopeClientsRead, domain.ScopeClientsWrite}, res.ClientScopes)

	client, err := s.Clients().GetClientByID(ctx, res.ClientID)
	require.NoError(t, err)
	require.True(t, client.Authenticate(res.ClientSecret))

	all, err := s.Scopes().GetAll(ctx)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"read", "write", domain.ScopeClientsRead, domain.ScopeClientsWrite}, domain.ScopeNames(all))

	_, err = svc.Bootstrap(ctx, "let-me-in", req)
	require.ErrorIs(t, err, ErrBootstrapAlready)
}

func TestBootstrap_RollsBackOnFailure(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	svc := &BootstrapService{Store: s, Token: "t"}

	// An unregistered client scope fails the whole transaction
	_, err := svc.Bootstrap(ctx, "t", domain.BootstrapData{ClientName: "c", ClientScopes: []string{"ghost"}})
	require.ErrorIs(t, err, ErrInvalidScope)

	empty, err := s.Clients().IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)

	all, err := s.Scopes().GetAll(ctx)
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestBootstrap_Disabled(t *testing.T) {
	svc := &BootstrapService{Store: newTestStore(t)}

	_, err := svc.Bootstrap(context.Background(), "", domain.BootstrapData{ClientName: "c"})
	require.ErrorIs(t, err, ErrBootstrapDisabled)
}

func TestBootstrap_ConcurrentSingleWinner(t *testing.T) {
	ctx := context.Background()
	svc := &BootstrapService{Store: newTestStore(t), Token: "t"}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Bootstrap(ctx, "t", domain.BootstrapData{ClientName: "c"})
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, ErrBootstrapAlready)
		}()
	}
	wg.Wait()

	require.Equal(t, 1, wins)
}
