package store

//go:generate mockgen -source=store.go -destination=mock/mock_store.go -package=mock -exclude_interfaces=Store,Tx

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/grantd/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite, bolt)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and so a Tx can never start another transaction.
type Store interface {
	Clients() Clients
	Scopes() Scopes
	Users() Users

	// Tokens returns the repository for one token kind. Each kind is its own
	// keyspace.
	Tokens(kind domain.TokenKind) Tokens
	AccessTokens() Tokens
	RefreshTokens() Tokens
	AuthorizationCodes() Tokens

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the backing database is still reachable.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

// Tokens persists one kind of token. Lookups may be case insensitive, so
// callers must compare the returned value against what they asked for.
type Tokens interface {
	// FindByToken returns the token with the given value, or ErrNotFound.
	// The token's client is loaded in full.
	FindByToken(ctx context.Context, value string) (*domain.Token, error)

	// TokenExists reports whether a token with the given value is stored.
	TokenExists(ctx context.Context, value string) (bool, error)

	// Save inserts a token. It fails with ErrAlreadyExists when the value
	// is taken, atomically with the insert.
	Save(ctx context.Context, t *domain.Token) error

	// DeleteToken removes a token. Returns ErrNotFound if it was already
	// gone.
	DeleteToken(ctx context.Context, t *domain.Token) error

	// PurgeExpiredTokens deletes every token whose expiry is at or before
	// now and returns how many were removed.
	PurgeExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}

type Scopes interface {
	// GetAll returns the registry ordered by name.
	GetAll(ctx context.Context) ([]domain.Scope, error)

	// GetDefaultScopes returns the scopes granted when none are requested.
	GetDefaultScopes(ctx context.Context) ([]domain.Scope, error)

	// CreateScope inserts a scope and returns it with its id assigned.
	// Duplicate names fail with ErrAlreadyExists.
	CreateScope(ctx context.Context, s domain.Scope) (domain.Scope, error)
}

type Clients interface {
	// GetClientByID fetches a client, or ErrNotFound.
	GetClientByID(ctx context.Context, id string) (*domain.Client, error)

	// ListClients returns all clients ordered by creation date (newest first).
	ListClients(ctx context.Context) ([]*domain.Client, error)

	// CreateClient inserts a new client. The secret may be empty for public
	// clients.
	CreateClient(ctx context.Context, c *domain.Client) error

	// DeleteClient removes the client and every token issued to it.
	DeleteClient(ctx context.Context, id string) error

	// IsEmpty returns true if there are no clients.
	IsEmpty(ctx context.Context) (bool, error)
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (*domain.User, error)

	// GetUserByUsername is used during the password grant. Usernames are
	// matched case insensitively.
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// CreateUser inserts a new user. A taken username fails with
	// ErrAlreadyExists.
	CreateUser(ctx context.Context, u *domain.User) error
}
