package bolt

import (
	"context"
	"encoding/json"

	"github.com/aussiebroadwan/grantd/internal/auth/domain"
	"github.com/aussiebroadwan/grantd/internal/auth/store"
	"go.etcd.io/bbolt"
)

// scopesRepo keys scopes by name, so iteration is already name ordered.
type scopesRepo struct {
	r runner
}

func (r *scopesRepo) GetAll(ctx context.Context) ([]domain.Scope, error) {
	return r.list(ctx, func(domain.Scope) bool { return true })
}

func (r *scopesRepo) GetDefaultScopes(ctx context.Context) ([]domain.Scope, error) {
	return r.list(ctx, func(s domain.Scope) bool { return s.IsDefault })
}

func (r *scopesRepo) list(ctx context.Context, keep func(domain.Scope) bool) ([]domain.Scope, error) {
	var scopes []domain.Scope
	err := r.r.view(ctx, func(tx *bbolt.Tx) error {
		b, err := bucket(tx, scopesBucket)
		if err != nil {
			return err
		}
		return b.ForEach(func(_, v []byte) error {
			var rec scopeRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			if s := rec.toDomain(); keep(s) {
				scopes = append(scopes, s)
			}
			return nil
		})
	})
	return scopes, err
}

func (r *scopesRepo) CreateScope(ctx context.Context, s domain.Scope) (domain.Scope, error) {
	err := r.r.update(ctx, func(tx *bbolt.Tx) error {
		b, err := bucket(tx, scopesBucket)
		if err != nil {
			return err
		}
		key := []byte(s.Name)
		if b.Get(key) != nil {
			return store.ErrAlreadyExists
		}

		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		id := int64(seq) // #nosec G115 - bucket sequences start at 1
		s.ID = &id

		return putJSON(b, key, scopeRecord{
			ID:          id,
			Name:        s.Name,
			Description: s.Description,
			IsDefault:   s.IsDefault,
		})
	})
	if err != nil {
		return domain.Scope{}, err
	}
	return s, nil
}
