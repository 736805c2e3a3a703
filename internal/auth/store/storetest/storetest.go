// Package storetest holds behaviour every store driver must share. Drivers
// call Run from their own tests with a constructor for a fresh, migrated
// store.
package storetest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/grantd/internal/auth/domain"
	"github.com/aussiebroadwan/grantd/internal/auth/store"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty store with migrations applied and registers its
// own cleanup.
type Factory func(t *testing.T) store.Store

// Run runs the conformance suite.
func Run(t *testing.T, newStore Factory) {
	t.Run("TokensRoundTrip", func(t *testing.T) { testTokensRoundTrip(t, newStore) })
	t.Run("TokensWithoutOwnerOrExpiry", func(t *testing.T) { testTokensWithoutOwnerOrExpiry(t, newStore) })
	t.Run("TokensLookupIsCaseInsensitive", func(t *testing.T) { testTokensLookupIsCaseInsensitive(t, newStore) })
	t.Run("TokensDelete", func(t *testing.T) { testTokensDelete(t, newStore) })
	t.Run("TokensPurgeExpired", func(t *testing.T) { testTokensPurgeExpired(t, newStore) })
	t.Run("TokensPurgeKeepsTokenAtExpiry", func(t *testing.T) { testTokensPurgeKeepsTokenAtExpiry(t, newStore) })
	t.Run("AuthorizationCodeKeepsRedirectURI", func(t *testing.T) { testAuthorizationCodeKeepsRedirectURI(t, newStore) })
	t.Run("Clients", func(t *testing.T) { testClients(t, newStore) })
	t.Run("DeleteClientCascadesToTokens", func(t *testing.T) { testDeleteClientCascadesToTokens(t, newStore) })
	t.Run("Scopes", func(t *testing.T) { testScopes(t, newStore) })
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore) })
	t.Run("WithTxRollsBack", func(t *testing.T) { testWithTxRollsBack(t, newStore) })
}

func createClient(t *testing.T, s store.Store, secret string) *domain.Client {
	t.Helper()

	c := domain.NewClient("svc", "https://app.example/cb")
	c.Secret = secret
	c.Scopes = []string{"read", "write"}
	require.NoError(t, s.Clients().CreateClient(context.Background(), c))
	return c
}

func testTokensRoundTrip(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t)
	client := createClient(t, s, "hash")

	ttl := time.Hour
	tok := domain.NewToken(domain.KindRefreshToken, "0123456789abcdef0123456789abcdef01234567",
		domain.OwnerID("user-1"), client, []string{"read", "write"}, &ttl)
	require.NoError(t, s.RefreshTokens().Save(ctx, tok))

	got, err := s.RefreshTokens().FindByToken(ctx, tok.Value)
	require.NoError(t, err)
	require.Equal(t, domain.KindRefreshToken, got.Kind)
	require.Equal(t, tok.Value, got.Value)
	require.Equal(t, "user-1", got.OwnerID())
	require.Equal(t, []string{"read", "write"}, got.Scopes)
	require.NotNil(t, got.ExpiresAt)
	require.True(t, tok.ExpiresAt.Equal(*got.ExpiresAt))

	// The client comes back in full so callers can check IsPublic
	require.NotNil(t, got.Client)
	require.Equal(t, client.ID, got.Client.ID)
	require.Equal(t, "hash", got.Client.Secret)
	require.Equal(t, []string{"https://app.example/cb"}, got.Client.RedirectURIs)
	require.Equal(t, []string{"read", "write"}, got.Client.Scopes)

	// Kinds are separate keyspaces
	_, err = s.AccessTokens().FindByToken(ctx, tok.Value)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testTokensWithoutOwnerOrExpiry(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t)

	tok := domain.NewToken(domain.KindAccessToken, "aaaaaaaaaabbbbbbbbbbccccccccccdddddddddd", nil, nil, nil, nil)
	require.NoError(t, s.AccessTokens().Save(ctx, tok))

	got, err := s.AccessTokens().FindByToken(ctx, tok.Value)
	require.NoError(t, err)
	require.Nil(t, got.Owner)
	require.Nil(t, got.Client)
	require.Nil(t, got.ExpiresAt)
	require.Empty(t, got.Scopes)
}

func testTokensLookupIsCaseInsensitive(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t)

	tok := domain.NewToken(domain.KindAccessToken, "abcdefabcdefabcdefabcdefabcdefabcdefabcd", nil, nil, nil, nil)
	require.NoError(t, s.AccessTokens().Save(ctx, tok))

	upper := strings.ToUpper(tok.Value)
	got, err := s.AccessTokens().FindByToken(ctx, upper)
	require.NoError(t, err)
	require.Equal(t, tok.Value, got.Value, "the stored value is returned, not the query")

	exists, err := s.AccessTokens().TokenExists(ctx, upper)
	require.NoError(t, err)
	require.True(t, exists)

	// Uniqueness follows the same collation
	dup := domain.NewToken(domain.KindAccessToken, upper, nil, nil, nil, nil)
	require.ErrorIs(t, s.AccessTokens().Save(ctx, dup), store.ErrAlreadyExists)
}

func testTokensDelete(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t)

	tok := domain.NewToken(domain.KindAccessToken, "1111111111111111111111111111111111111111", nil, nil, nil, nil)
	require.NoError(t, s.AccessTokens().Save(ctx, tok))
	require.NoError(t, s.AccessTokens().DeleteToken(ctx, tok))

	exists, err := s.AccessTokens().TokenExists(ctx, tok.Value)
	require.NoError(t, err)
	require.False(t, exists)

	require.ErrorIs(t, s.AccessTokens().DeleteToken(ctx, tok), store.ErrNotFound)
}

func testTokensPurgeExpired(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t)

	past := -time.Minute
	future := time.Hour
	expired := domain.NewToken(domain.KindAccessToken, "2222222222222222222222222222222222222222", nil, nil, nil, &past)
	live := domain.NewToken(domain.KindAccessToken, "3333333333333333333333333333333333333333", nil, nil, nil, &future)
	forever := domain.NewToken(domain.KindAccessToken, "4444444444444444444444444444444444444444", nil, nil, nil, nil)
	for _, tok := range []*domain.Token{expired, live, forever} {
		require.NoError(t, s.AccessTokens().Save(ctx, tok))
	}

	n, err := s.AccessTokens().PurgeExpiredTokens(ctx, time.Now())
	require.NoError(t, err)
	require.Equal(t, int64(1), n)

	_, err = s.AccessTokens().FindByToken(ctx, expired.Value)
	require.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.AccessTokens().FindByToken(ctx, live.Value)
	require.NoError(t, err)
	_, err = s.AccessTokens().FindByToken(ctx, forever.Value)
	require.NoError(t, err)
}

func testTokensPurgeKeepsTokenAtExpiry(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t)

	at := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	tok := domain.ReconstituteToken(domain.KindRefreshToken, "6666666666666666666666666666666666666666",
		nil, nil, nil, &at, "", at.Add(-time.Hour))
	require.NoError(t, s.RefreshTokens().Save(ctx, tok))

	n, err := s.RefreshTokens().PurgeExpiredTokens(ctx, at)
	require.NoError(t, err)
	require.Zero(t, n)

	n, err = s.RefreshTokens().PurgeExpiredTokens(ctx, at.Add(time.Nanosecond))
	require.NoError(t, err)
	require.Equal(t, int64(1), n)
}

func testAuthorizationCodeKeepsRedirectURI(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t)
	client := createClient(t, s, "")

	ttl := 2 * time.Minute
	code := domain.NewToken(domain.KindAuthorizationCode, "5555555555555555555555555555555555555555",
		domain.OwnerID("user-1"), client, []string{"read"}, &ttl)
	code.RedirectURI = "https://app.example/cb"
	require.NoError(t, s.AuthorizationCodes().Save(ctx, code))

	got, err := s.AuthorizationCodes().FindByToken(ctx, code.Value)
	require.NoError(t, err)
	require.Equal(t, "https://app.example/cb", got.RedirectURI)
	require.True(t, got.Client.IsPublic())
}

func testClients(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t)

	empty, err := s.Clients().IsEmpty(ctx)
	require.NoError(t, err)
	require.True(t, empty)

	first := createClient(t, s, "")
	second := createClient(t, s, "hash")

	empty, err = s.Clients().IsEmpty(ctx)
	require.NoError(t, err)
	require.False(t, empty)

	got, err := s.Clients().GetClientByID(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, first.Name, got.Name)
	require.True(t, got.IsPublic())

	list, err := s.Clients().ListClients(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, second.ID, list[0].ID, "newest first")

	_, err = s.Clients().GetClientByID(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
	require.ErrorIs(t, s.Clients().DeleteClient(ctx, "missing"), store.ErrNotFound)
}

func testDeleteClientCascadesToTokens(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t)
	client := createClient(t, s, "hash")

	tok := domain.NewToken(domain.KindAccessToken, "6666666666666666666666666666666666666666", nil, client, nil, nil)
	require.NoError(t, s.AccessTokens().Save(ctx, tok))

	require.NoError(t, s.Clients().DeleteClient(ctx, client.ID))

	exists, err := s.AccessTokens().TokenExists(ctx, tok.Value)
	require.NoError(t, err)
	require.False(t, exists)
}

func testScopes(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t)

	read, err := s.Scopes().CreateScope(ctx, domain.NewScope("read", "Read access", true))
	require.NoError(t, err)
	require.NotNil(t, read.ID)

	_, err = s.Scopes().CreateScope(ctx, domain.NewScope("write", "", false))
	require.NoError(t, err)

	_, err = s.Scopes().CreateScope(ctx, domain.NewScope("read", "again", false))
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	all, err := s.Scopes().GetAll(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"read", "write"}, domain.ScopeNames(all))

	defaults, err := s.Scopes().GetDefaultScopes(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"read"}, domain.ScopeNames(defaults))
	require.Equal(t, "Read access", defaults[0].Description)
}

func testUsers(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t)

	u := &domain.User{ID: "u1", Username: "Alice", PasswordHash: "hash", CreatedAt: time.Now().UTC()}
	require.NoError(t, s.Users().CreateUser(ctx, u))

	got, err := s.Users().GetUserByUsername(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, "u1", got.ID)

	got, err = s.Users().GetUserByID(ctx, "u1")
	require.NoError(t, err)
	require.Equal(t, "Alice", got.Username)

	dup := &domain.User{ID: "u2", Username: "ALICE", PasswordHash: "hash", CreatedAt: time.Now().UTC()}
	require.ErrorIs(t, s.Users().CreateUser(ctx, dup), store.ErrAlreadyExists)

	_, err = s.Users().GetUserByUsername(ctx, "bob")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testWithTxRollsBack(t *testing.T, newStore Factory) {
	ctx := context.Background()
	s := newStore(t)

	boom := errors.New("boom")
	err := s.WithTx(ctx, func(tx store.Tx) error {
		if _, err := tx.Scopes().CreateScope(ctx, domain.NewScope("read", "", false)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	all, err := s.Scopes().GetAll(ctx)
	require.NoError(t, err)
	require.Empty(t, all)

	err = s.WithTx(ctx, func(tx store.Tx) error {
		_, err := tx.Scopes().CreateScope(ctx, domain.NewScope("read", "", false))
		return err
	})
	require.NoError(t, err)

	all, err = s.Scopes().GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}
