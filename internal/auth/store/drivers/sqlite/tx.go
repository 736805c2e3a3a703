package sqlite

import (
	"context"
	"database/sql"

	"github.com/aussiebroadwan/grantd/internal/auth/domain"
	"github.com/aussiebroadwan/grantd/internal/auth/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // nothing to close; caller will commit/rollback and outer DB stays open

// Ping is a no-op for transactions. The connection is already established
// when the transaction is created.
func (t *txStore) Ping(ctx context.Context) error {
	return nil
}

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Clients() store.Clients { return &clientsRepo{db: t.tx} }
func (t *txStore) Scopes() store.Scopes   { return &scopesRepo{db: t.tx} }
func (t *txStore) Users() store.Users     { return &usersRepo{db: t.tx} }

func (t *txStore) Tokens(kind domain.TokenKind) store.Tokens { return newTokensRepo(t.tx, kind) }
func (t *txStore) AccessTokens() store.Tokens                { return t.Tokens(domain.KindAccessToken) }
func (t *txStore) RefreshTokens() store.Tokens               { return t.Tokens(domain.KindRefreshToken) }
func (t *txStore) AuthorizationCodes() store.Tokens          { return t.Tokens(domain.KindAuthorizationCode) }

func (t *txStore) ApplyMigrations() error { return nil } // no-op; migrations should be applied before starting a tx
