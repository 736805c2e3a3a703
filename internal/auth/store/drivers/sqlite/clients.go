package sqlite

import (
	"context"
	"strings"
	"time"

	"github.com/aussiebroadwan/grantd/internal/auth/domain"
)

type clientsRepo struct {
	db dbtx
}

const clientColumns = `id, name, secret_hash, redirect_uris, scopes, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (*domain.Client, error) {
	var (
		id, name, secret, uris, scopes string
		createdAt                      time.Time
	)
	if err := row.Scan(&id, &name, &secret, &uris, &scopes, &createdAt); err != nil {
		return nil, err
	}
	return domain.ReconstituteClient(id, name, secret, splitAndFilter(uris), splitAndFilter(scopes), createdAt), nil
}

func (r *clientsRepo) GetClientByID(ctx context.Context, id string) (*domain.Client, error) {
	c, err := scanClient(r.db.QueryRowContext(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE id = ?`, id,
	))
	if err != nil {
		return nil, mapNotFound(err)
	}
	return c, nil
}

func (r *clientsRepo) ListClients(ctx context.Context) ([]*domain.Client, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+clientColumns+` FROM clients ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []*domain.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (r *clientsRepo) CreateClient(ctx context.Context, c *domain.Client) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO clients (`+clientColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Secret, strings.Join(c.RedirectURIs, " "), strings.Join(c.Scopes, " "), c.CreatedAt,
	)
	return mapConstraint(err)
}

// DeleteClient cascades to every token table (per schema).
func (r *clientsRepo) DeleteClient(ctx context.Context, id string) error {
	return requireAffected(r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = ?`, id))
}

func (r *clientsRepo) IsEmpty(ctx context.Context) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM clients)`).Scan(&exists)
	return !exists, err
}
