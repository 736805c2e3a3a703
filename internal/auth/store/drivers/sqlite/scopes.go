package sqlite

import (
	"context"

	"github.com/aussiebroadwan/grantd/internal/auth/domain"
)

type scopesRepo struct {
	db dbtx
}

func (r *scopesRepo) GetAll(ctx context.Context) ([]domain.Scope, error) {
	return r.list(ctx, `SELECT id, name, description, is_default FROM scopes ORDER BY name`)
}

func (r *scopesRepo) GetDefaultScopes(ctx context.Context) ([]domain.Scope, error) {
	return r.list(ctx, `SELECT id, name, description, is_default FROM scopes WHERE is_default = 1 ORDER BY name`)
}

func (r *scopesRepo) list(ctx context.Context, query string) ([]domain.Scope, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scopes []domain.Scope
	for rows.Next() {
		var (
			id int64
			s  domain.Scope
		)
		if err := rows.Scan(&id, &s.Name, &s.Description, &s.IsDefault); err != nil {
			return nil, err
		}
		s.ID = &id
		scopes = append(scopes, s)
	}
	return scopes, rows.Err()
}

func (r *scopesRepo) CreateScope(ctx context.Context, s domain.Scope) (domain.Scope, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO scopes (name, description, is_default) VALUES (?, ?, ?)`,
		s.Name, s.Description, s.IsDefault,
	)
	if err != nil {
		return domain.Scope{}, mapConstraint(err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return domain.Scope{}, err
	}
	s.ID = &id
	return s, nil
}
