package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/aussiebroadwan/grantd/internal/auth/domain"
	"github.com/aussiebroadwan/grantd/internal/auth/store"
)

var tokenTables = map[domain.TokenKind]string{
	domain.KindAccessToken:       "access_tokens",
	domain.KindRefreshToken:      "refresh_tokens",
	domain.KindAuthorizationCode: "authorization_codes",
}

type tokensRepo struct {
	db    dbtx
	kind  domain.TokenKind
	table string
}

func newTokensRepo(db dbtx, kind domain.TokenKind) *tokensRepo {
	table, ok := tokenTables[kind]
	if !ok {
		panic("sqlite: unknown token kind " + kind.String())
	}
	return &tokensRepo{db: db, kind: kind, table: table}
}

func (r *tokensRepo) FindByToken(ctx context.Context, value string) (*domain.Token, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT t.token, t.owner_id, t.scopes, t.expires_at, t.redirect_uri, t.created_at,
		       c.id, c.name, c.secret_hash, c.redirect_uris, c.scopes, c.created_at
		FROM `+r.table+` t
		LEFT JOIN clients c ON c.id = t.client_id
		WHERE t.token = ?`, value)

	var (
		token, scopes, redirectURI string
		ownerID                    sql.NullString
		expiresAt                  sql.NullInt64
		createdAt                  time.Time

		clientID, clientName, clientSecret sql.NullString
		clientURIs, clientScopes           sql.NullString
		clientCreatedAt                    sql.NullTime
	)
	err := row.Scan(
		&token, &ownerID, &scopes, &expiresAt, &redirectURI, &createdAt,
		&clientID, &clientName, &clientSecret, &clientURIs, &clientScopes, &clientCreatedAt,
	)
	if err != nil {
		return nil, mapNotFound(err)
	}

	var owner domain.TokenOwner
	if ownerID.Valid {
		owner = domain.OwnerID(ownerID.String)
	}

	var client *domain.Client
	if clientID.Valid {
		client = domain.ReconstituteClient(
			clientID.String,
			mapNullString(clientName),
			mapNullString(clientSecret),
			splitAndFilter(mapNullString(clientURIs)),
			splitAndFilter(mapNullString(clientScopes)),
			clientCreatedAt.Time,
		)
	}

	return domain.ReconstituteToken(
		r.kind,
		token,
		owner,
		client,
		splitAndFilter(scopes),
		mapNullUnixNano(expiresAt),
		redirectURI,
		createdAt,
	), nil
}

func (r *tokensRepo) TokenExists(ctx context.Context, value string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM `+r.table+` WHERE token = ?)`, value,
	).Scan(&exists)
	return exists, err
}

func (r *tokensRepo) Save(ctx context.Context, t *domain.Token) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO `+r.table+` (token, owner_id, client_id, scopes, expires_at, redirect_uri, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.Value,
		mapStringNull(t.OwnerID()),
		mapStringNull(t.ClientID()),
		strings.Join(t.Scopes, " "),
		mapUnixNanoNull(t.ExpiresAt),
		t.RedirectURI,
		t.CreatedAt,
	)
	return mapConstraint(err)
}

func (r *tokensRepo) DeleteToken(ctx context.Context, t *domain.Token) error {
	return requireAffected(r.db.ExecContext(ctx,
		`DELETE FROM `+r.table+` WHERE token = ?`, t.Value,
	))
}

func (r *tokensRepo) PurgeExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM `+r.table+` WHERE expires_at IS NOT NULL AND expires_at < ?`, now.UnixNano(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

var _ store.Tokens = (*tokensRepo)(nil)
