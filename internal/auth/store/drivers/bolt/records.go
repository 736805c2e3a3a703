package bolt

import (
	"encoding/json"
	"time"

	"github.com/aussiebroadwan/grantd/internal/auth/domain"
	"go.etcd.io/bbolt"
)

type clientRecord struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Secret       string    `json:"secret,omitempty"`
	RedirectURIs []string  `json:"redirect_uris,omitempty"`
	Scopes       []string  `json:"scopes,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func toClientRecord(c *domain.Client) clientRecord {
	return clientRecord{
		ID:           c.ID,
		Name:         c.Name,
		Secret:       c.Secret,
		RedirectURIs: c.RedirectURIs,
		Scopes:       c.Scopes,
		CreatedAt:    c.CreatedAt,
	}
}

func (r clientRecord) toDomain() *domain.Client {
	return domain.ReconstituteClient(r.ID, r.Name, r.Secret, r.RedirectURIs, r.Scopes, r.CreatedAt)
}

type userRecord struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

type scopeRecord struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	IsDefault   bool   `json:"is_default,omitempty"`
}

func (r scopeRecord) toDomain() domain.Scope {
	id := r.ID
	return domain.Scope{ID: &id, Name: r.Name, Description: r.Description, IsDefault: r.IsDefault}
}

// tokenRecord keeps expiry as unix nanoseconds so purges compare integers.
type tokenRecord struct {
	Token       string    `json:"token"`
	OwnerID     string    `json:"owner_id,omitempty"`
	ClientID    string    `json:"client_id,omitempty"`
	Scopes      []string  `json:"scopes,omitempty"`
	ExpiresAt   *int64    `json:"expires_at,omitempty"`
	RedirectURI string    `json:"redirect_uri,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toTokenRecord(t *domain.Token) tokenRecord {
	rec := tokenRecord{
		Token:       t.Value,
		OwnerID:     t.OwnerID(),
		ClientID:    t.ClientID(),
		Scopes:      t.Scopes,
		RedirectURI: t.RedirectURI,
		CreatedAt:   t.CreatedAt,
	}
	if t.ExpiresAt != nil {
		n := t.ExpiresAt.UnixNano()
		rec.ExpiresAt = &n
	}
	return rec
}

func (r tokenRecord) expiredAt(now time.Time) bool {
	return r.ExpiresAt != nil && *r.ExpiresAt < now.UnixNano()
}

// toDomain resolves the client reference inside the same transaction.
func (r tokenRecord) toDomain(tx *bbolt.Tx, kind domain.TokenKind) (*domain.Token, error) {
	var owner domain.TokenOwner
	if r.OwnerID != "" {
		owner = domain.OwnerID(r.OwnerID)
	}

	var client *domain.Client
	if r.ClientID != "" {
		b, err := bucket(tx, clientsBucket)
		if err != nil {
			return nil, err
		}
		if v := b.Get([]byte(r.ClientID)); v != nil {
			var rec clientRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return nil, err
			}
			client = rec.toDomain()
		}
	}

	var expiresAt *time.Time
	if r.ExpiresAt != nil {
		at := time.Unix(0, *r.ExpiresAt).UTC()
		expiresAt = &at
	}

	return domain.ReconstituteToken(kind, r.Token, owner, client, r.Scopes, expiresAt, r.RedirectURI, r.CreatedAt), nil
}

func putJSON(b *bbolt.Bucket, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.Put(key, data)
}
