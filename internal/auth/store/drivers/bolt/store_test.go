package bolt

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/aussiebroadwan/grantd/internal/auth/domain"
	"github.com/aussiebroadwan/grantd/internal/auth/store"
	"github.com/aussiebroadwan/grantd/internal/auth/store/storetest"
	"github.com/aussiebroadwan/grantd/pkg/cryptox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(filepath.Join(t.TempDir(), "nested", "auth.bolt"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return newTestStore(t) })
}

func TestMissingBuckets(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "auth.bolt"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	_, err = s.Clients().IsEmpty(context.Background())
	require.ErrorIs(t, err, errNoBucket)
}

func TestPingAfterClose(t *testing.T) {
	s, err := NewStore(filepath.Join(t.TempDir(), "auth.bolt"))
	require.NoError(t, err)
	require.NoError(t, s.Ping(context.Background()))

	require.NoError(t, s.Close())
	require.Error(t, s.Ping(context.Background()))
}

func TestCancelledContext(t *testing.T) {
	s := newTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.AccessTokens().TokenExists(ctx, "x")
	require.ErrorIs(t, err, context.Canceled)
}

// Concurrent saves of the same value must yield exactly one winner.
func TestConcurrentSaveSingleWinner(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	value := cryptox.MustGenerateToken(cryptox.TokenBytes)

	const workers = 8
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		wins   int
		losses int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.AccessTokens().Save(ctx, domain.NewToken(domain.KindAccessToken, value, nil, nil, nil, nil))
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
			} else {
				assert.ErrorIs(t, err, store.ErrAlreadyExists)
				losses++
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 1, wins)
	require.Equal(t, workers-1, losses)

	exists, err := s.AccessTokens().TokenExists(ctx, strings.ToUpper(value))
	require.NoError(t, err)
	require.True(t, exists)
}
