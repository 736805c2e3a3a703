package bolt

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/aussiebroadwan/grantd/internal/auth/domain"
	"github.com/aussiebroadwan/grantd/internal/auth/store"
	"go.etcd.io/bbolt"
)

type tokensRepo struct {
	r      runner
	kind   domain.TokenKind
	bucket []byte
}

func newTokensRepo(r runner, kind domain.TokenKind) *tokensRepo {
	b, ok := tokenBuckets[kind]
	if !ok {
		panic("bolt: unknown token kind " + kind.String())
	}
	return &tokensRepo{r: r, kind: kind, bucket: b}
}

// tokenKey folds case so lookups behave like the sqlite NOCASE columns.
func tokenKey(value string) []byte {
	return []byte(strings.ToLower(value))
}

func (r *tokensRepo) FindByToken(ctx context.Context, value string) (*domain.Token, error) {
	var tok *domain.Token
	err := r.r.view(ctx, func(tx *bbolt.Tx) error {
		b, err := bucket(tx, r.bucket)
		if err != nil {
			return err
		}
		v := b.Get(tokenKey(value))
		if v == nil {
			return store.ErrNotFound
		}

		var rec tokenRecord
		if err := json.Unmarshal(v, &rec); err != nil {
			return err
		}
		tok, err = rec.toDomain(tx, r.kind)
		return err
	})
	return tok, err
}

func (r *tokensRepo) TokenExists(ctx context.Context, value string) (bool, error) {
	var exists bool
	err := r.r.view(ctx, func(tx *bbolt.Tx) error {
		b, err := bucket(tx, r.bucket)
		if err != nil {
			return err
		}
		exists = b.Get(tokenKey(value)) != nil
		return nil
	})
	return exists, err
}

// Save checks and inserts inside one write transaction. bbolt allows a
// single writer at a time, which makes the pair atomic.
func (r *tokensRepo) Save(ctx context.Context, t *domain.Token) error {
	return r.r.update(ctx, func(tx *bbolt.Tx) error {
		b, err := bucket(tx, r.bucket)
		if err != nil {
			return err
		}
		key := tokenKey(t.Value)
		if b.Get(key) != nil {
			return store.ErrAlreadyExists
		}
		return putJSON(b, key, toTokenRecord(t))
	})
}

func (r *tokensRepo) DeleteToken(ctx context.Context, t *domain.Token) error {
	return r.r.update(ctx, func(tx *bbolt.Tx) error {
		b, err := bucket(tx, r.bucket)
		if err != nil {
			return err
		}
		key := tokenKey(t.Value)
		if b.Get(key) == nil {
			return store.ErrNotFound
		}
		return b.Delete(key)
	})
}

func (r *tokensRepo) PurgeExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	var purged int64
	err := r.r.update(ctx, func(tx *bbolt.Tx) error {
		b, err := bucket(tx, r.bucket)
		if err != nil {
			return err
		}
		keys, err := matchingKeys(b, func(rec tokenRecord) bool { return rec.expiredAt(now) })
		if err != nil {
			return err
		}
		for _, k := range keys {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		purged = int64(len(keys))
		return nil
	})
	return purged, err
}

// matchingKeys collects keys first; deleting while a cursor walks the bucket
// skips entries.
func matchingKeys(b *bbolt.Bucket, match func(tokenRecord) bool) ([][]byte, error) {
	var keys [][]byte
	err := b.ForEach(func(k, v []byte) error {
		var rec tokenRecord
		if err := json.Unmarshal(v, &rec); err != nil {
			return err
		}
		if match(rec) {
			keys = append(keys, append([]byte(nil), k...))
		}
		return nil
	})
	return keys, err
}
