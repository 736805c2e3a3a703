package service

import (
	"context"
	"strings"
	"testing"

	"github.com/aussiebroadwan/grantd/internal/auth/domain"
	"github.com/stretchr/testify/require"
)

const seedYAML = `
scopes:
  - name: read
    description: Read access
    default: true
  - name: write
    description: Write access
`

func TestScopeService_Seed(t *testing.T) {
	ctx := context.Background()
	svc := &ScopeService{Store: newTestStore(t)}

	n, err := svc.Seed(ctx, strings.NewReader(seedYAML))
	require.NoError(t, err)
	require.Equal(t, 2, n)

	// Seeding again is a no-op
	n, err = svc.Seed(ctx, strings.NewReader(seedYAML))
	require.NoError(t, err)
	require.Zero(t, n)

	all, err := svc.GetAll(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"read", "write"}, domain.ScopeNames(all))

	defaults, err := svc.GetDefaultScopes(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"read"}, domain.ScopeNames(defaults))
}

func TestScopeService_SeedIsAtomic(t *testing.T) {
	ctx := context.Background()
	svc := &ScopeService{Store: newTestStore(t)}

	_, err := svc.Seed(ctx, strings.NewReader("scopes:\n  - name: ok\n  - name: \"not ok\"\n"))
	require.ErrorIs(t, err, ErrInvalidScopeName)

	all, err := svc.GetAll(ctx)
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestScopeService_SeedRejectsBadYAML(t *testing.T) {
	svc := &ScopeService{Store: newTestStore(t)}

	_, err := svc.Seed(context.Background(), strings.NewReader("scopes: [unterminated"))
	require.Error(t, err)
}

func TestScopeService_CreateScope(t *testing.T) {
	ctx := context.Background()
	svc := &ScopeService{Store: newTestStore(t)}

	sc, err := svc.CreateScope(ctx, domain.ScopeDefinition{Name: "read", Default: true})
	require.NoError(t, err)
	require.NotNil(t, sc.ID)
	require.True(t, sc.IsDefault)

	_, err = svc.CreateScope(ctx, domain.ScopeDefinition{Name: "read"})
	require.ErrorIs(t, err, ErrScopeExists)

	_, err = svc.CreateScope(ctx, domain.ScopeDefinition{Name: ""})
	require.ErrorIs(t, err, ErrInvalidScopeName)
}
