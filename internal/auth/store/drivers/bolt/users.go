package bolt

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/aussiebroadwan/grantd/internal/auth/domain"
	"github.com/aussiebroadwan/grantd/internal/auth/store"
	"go.etcd.io/bbolt"
)

// usersRepo stores users by id plus a lowercased username index.
type usersRepo struct {
	r runner
}

func (r *usersRepo) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	var u *domain.User
	err := r.r.view(ctx, func(tx *bbolt.Tx) (err error) {
		u, err = getUser(tx, []byte(id))
		return err
	})
	return u, err
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var u *domain.User
	err := r.r.view(ctx, func(tx *bbolt.Tx) error {
		idx, err := bucket(tx, usernamesBucket)
		if err != nil {
			return err
		}
		id := idx.Get([]byte(strings.ToLower(username)))
		if id == nil {
			return store.ErrNotFound
		}
		u, err = getUser(tx, id)
		return err
	})
	return u, err
}

func getUser(tx *bbolt.Tx, id []byte) (*domain.User, error) {
	b, err := bucket(tx, usersBucket)
	if err != nil {
		return nil, err
	}
	v := b.Get(id)
	if v == nil {
		return nil, store.ErrNotFound
	}

	var rec userRecord
	if err := json.Unmarshal(v, &rec); err != nil {
		return nil, err
	}
	return &domain.User{
		ID:           rec.ID,
		Username:     rec.Username,
		PasswordHash: rec.PasswordHash,
		CreatedAt:    rec.CreatedAt,
	}, nil
}

func (r *usersRepo) CreateUser(ctx context.Context, u *domain.User) error {
	return r.r.update(ctx, func(tx *bbolt.Tx) error {
		b, err := bucket(tx, usersBucket)
		if err != nil {
			return err
		}
		idx, err := bucket(tx, usernamesBucket)
		if err != nil {
			return err
		}

		name := []byte(strings.ToLower(u.Username))
		if b.Get([]byte(u.ID)) != nil || idx.Get(name) != nil {
			return store.ErrAlreadyExists
		}

		if err := idx.Put(name, []byte(u.ID)); err != nil {
			return err
		}
		return putJSON(b, []byte(u.ID), userRecord{
			ID:           u.ID,
			Username:     u.Username,
			PasswordHash: u.PasswordHash,
			CreatedAt:    u.CreatedAt,
		})
	})
}
