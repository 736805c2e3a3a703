// Package bolt is an embedded key-value driver for the auth store, backed by
// bbolt. Each repository lives in its own bucket and records are JSON.
package bolt

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/aussiebroadwan/grantd/internal/auth/domain"
	"github.com/aussiebroadwan/grantd/internal/auth/store"
	"go.etcd.io/bbolt"
)

const (
	dirPerm     = fs.FileMode(0o700)
	filePerm    = fs.FileMode(0o600)
	openTimeout = 5 * time.Second
)

var (
	clientsBucket       = []byte("clients")
	usersBucket         = []byte("users")
	usernamesBucket     = []byte("users_by_name")
	scopesBucket        = []byte("scopes")
	accessTokensBucket  = []byte("access_tokens")
	refreshTokensBucket = []byte("refresh_tokens")
	authCodesBucket     = []byte("authorization_codes")

	allBuckets = [][]byte{
		clientsBucket,
		usersBucket,
		usernamesBucket,
		scopesBucket,
		accessTokensBucket,
		refreshTokensBucket,
		authCodesBucket,
	}

	tokenBuckets = map[domain.TokenKind][]byte{
		domain.KindAccessToken:       accessTokensBucket,
		domain.KindRefreshToken:      refreshTokensBucket,
		domain.KindAuthorizationCode: authCodesBucket,
	}
)

var errNoBucket = errors.New("bolt: bucket missing, run ApplyMigrations")

// runner hides whether a repo runs its own transactions or shares one.
type runner interface {
	view(ctx context.Context, fn func(tx *bbolt.Tx) error) error
	update(ctx context.Context, fn func(tx *bbolt.Tx) error) error
}

type dbRunner struct{ db *bbolt.DB }

func (r dbRunner) view(ctx context.Context, fn func(tx *bbolt.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.View(fn)
}

func (r dbRunner) update(ctx context.Context, fn func(tx *bbolt.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return r.db.Update(fn)
}

type txRunner struct{ tx *bbolt.Tx }

func (r txRunner) view(ctx context.Context, fn func(tx *bbolt.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(r.tx)
}

func (r txRunner) update(ctx context.Context, fn func(tx *bbolt.Tx) error) error {
	return r.view(ctx, fn)
}

type Store struct {
	db *bbolt.DB
}

// NewStore opens (or creates) the database file at path.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	db, err := bbolt.Open(path, filePerm, &bbolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db: %w", err)
	}
	return &Store{db: db}, nil
}

// ApplyMigrations creates any missing buckets.
func (s *Store) ApplyMigrations() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("creating bucket %s: %w", name, err)
			}
		}
		return nil
	})
}

func (s *Store) Close() error { return s.db.Close() }

// Ping runs an empty read transaction, which fails once the db is closed.
func (s *Store) Ping(ctx context.Context) error {
	return dbRunner{s.db}.view(ctx, func(*bbolt.Tx) error { return nil })
}

func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	tx, err := s.db.Begin(true)
	if err != nil {
		return nil, err
	}
	return &txStore{tx: tx}, nil
}

func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback() // returns ErrTxClosed after a commit
	}()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Clients() store.Clients { return &clientsRepo{r: dbRunner{s.db}} }
func (s *Store) Scopes() store.Scopes   { return &scopesRepo{r: dbRunner{s.db}} }
func (s *Store) Users() store.Users     { return &usersRepo{r: dbRunner{s.db}} }

func (s *Store) Tokens(kind domain.TokenKind) store.Tokens {
	return newTokensRepo(dbRunner{s.db}, kind)
}
func (s *Store) AccessTokens() store.Tokens       { return s.Tokens(domain.KindAccessToken) }
func (s *Store) RefreshTokens() store.Tokens      { return s.Tokens(domain.KindRefreshToken) }
func (s *Store) AuthorizationCodes() store.Tokens { return s.Tokens(domain.KindAuthorizationCode) }

type txStore struct {
	tx *bbolt.Tx
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error                   { return nil }
func (t *txStore) Ping(ctx context.Context) error { return nil }
func (t *txStore) ApplyMigrations() error         { return nil }

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	return nil, bbolt.ErrTxClosed // nested transactions are not supported
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	return bbolt.ErrTxClosed
}

func (t *txStore) Clients() store.Clients { return &clientsRepo{r: txRunner{t.tx}} }
func (t *txStore) Scopes() store.Scopes   { return &scopesRepo{r: txRunner{t.tx}} }
func (t *txStore) Users() store.Users     { return &usersRepo{r: txRunner{t.tx}} }

func (t *txStore) Tokens(kind domain.TokenKind) store.Tokens {
	return newTokensRepo(txRunner{t.tx}, kind)
}
func (t *txStore) AccessTokens() store.Tokens       { return t.Tokens(domain.KindAccessToken) }
func (t *txStore) RefreshTokens() store.Tokens      { return t.Tokens(domain.KindRefreshToken) }
func (t *txStore) AuthorizationCodes() store.Tokens { return t.Tokens(domain.KindAuthorizationCode) }

func bucket(tx *bbolt.Tx, name []byte) (*bbolt.Bucket, error) {
	b := tx.Bucket(name)
	if b == nil {
		return nil, errNoBucket
	}
	return b, nil
}
