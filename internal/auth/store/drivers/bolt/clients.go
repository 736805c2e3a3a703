package bolt

import (
	"cmp"
	"context"
	"encoding/json"
	"slices"

	"github.com/aussiebroadwan/grantd/internal/auth/domain"
	"github.com/aussiebroadwan/grantd/internal/auth/store"
	"go.etcd.io/bbolt"
)

type clientsRepo struct {
	r runner
}

func (r *clientsRepo) GetClientByID(ctx context.Context, id string) (*domain.Client, error) {
	var c *domain.Client
	err := r.r.view(ctx, func(tx *bbolt.Tx) error {
		b, err := bucket(tx, clientsBucket)
		if err != nil {
			return err
		}
		v := b.Get([]byte(id))
		if v == nil {
			return store.ErrNotFound
		}
		var rec clientRecord
		if err := json.Unmarshal(v, &rec); err != nil {
			return err
		}
		c = rec.toDomain()
		return nil
	})
	return c, err
}

func (r *clientsRepo) ListClients(ctx context.Context) ([]*domain.Client, error) {
	var clients []*domain.Client
	err := r.r.view(ctx, func(tx *bbolt.Tx) error {
		b, err := bucket(tx, clientsBucket)
		if err != nil {
			return err
		}
		return b.ForEach(func(_, v []byte) error {
			var rec clientRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			clients = append(clients, rec.toDomain())
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	// Newest first, ids break ties
	slices.SortFunc(clients, func(a, b *domain.Client) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return clients, nil
}

func (r *clientsRepo) CreateClient(ctx context.Context, c *domain.Client) error {
	return r.r.update(ctx, func(tx *bbolt.Tx) error {
		b, err := bucket(tx, clientsBucket)
		if err != nil {
			return err
		}
		key := []byte(c.ID)
		if b.Get(key) != nil {
			return store.ErrAlreadyExists
		}
		return putJSON(b, key, toClientRecord(c))
	})
}

// DeleteClient removes the client and every token issued to it.
func (r *clientsRepo) DeleteClient(ctx context.Context, id string) error {
	return r.r.update(ctx, func(tx *bbolt.Tx) error {
		b, err := bucket(tx, clientsBucket)
		if err != nil {
			return err
		}
		if b.Get([]byte(id)) == nil {
			return store.ErrNotFound
		}
		if err := b.Delete([]byte(id)); err != nil {
			return err
		}

		for _, name := range tokenBuckets {
			tb, err := bucket(tx, name)
			if err != nil {
				return err
			}
			keys, err := matchingKeys(tb, func(rec tokenRecord) bool { return rec.ClientID == id })
			if err != nil {
				return err
			}
			for _, k := range keys {
				if err := tb.Delete(k); err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (r *clientsRepo) IsEmpty(ctx context.Context) (bool, error) {
	empty := true
	err := r.r.view(ctx, func(tx *bbolt.Tx) error {
		b, err := bucket(tx, clientsBucket)
		if err != nil {
			return err
		}
		k, _ := b.Cursor().First()
		empty = k == nil
		return nil
	})
	return empty, err
}
