package domain

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/aussiebroadwan/grantd/pkg/cryptox"
	"github.com/aussiebroadwan/grantd/pkg/idx"
)

// ErrSecretAlreadySet is returned when a secret is generated for a client
// that already has one.
var ErrSecretAlreadySet = errors.New("client secret already set")

// clientSecretBytes is the entropy of a generated client secret.
const clientSecretBytes = 32

// Client is a registered OAuth2 client application. A client without a
// secret is public and is never asked to authenticate.
type Client struct {
	ID           string
	Name         string
	Secret       string // argon2id hash, empty for public clients
	RedirectURIs []string
	Scopes       []string // allow-list, empty means any registered scope
	CreatedAt    time.Time
}

// NewClient creates a client with a fresh id. Each redirect URI is trimmed
// and blanks are dropped.
func NewClient(name string, redirectURIs ...string) *Client {
	uris := make([]string, 0, len(redirectURIs))
	for _, uri := range redirectURIs {
		if uri = strings.TrimSpace(uri); uri != "" {
			uris = append(uris, uri)
		}
	}

	return &Client{
		ID:           idx.New().String(),
		Name:         strings.TrimSpace(name),
		RedirectURIs: uris,
		CreatedAt:    time.Now().UTC(),
	}
}

// ReconstituteClient rebuilds a client loaded from storage.
func ReconstituteClient(id, name, secret string, redirectURIs, scopes []string, createdAt time.Time) *Client {
	return &Client{
		ID:           id,
		Name:         name,
		Secret:       secret,
		RedirectURIs: redirectURIs,
		Scopes:       scopes,
		CreatedAt:    createdAt,
	}
}

// SplitRedirectURIs splits a space-delimited redirect URI list.
func SplitRedirectURIs(s string) []string {
	return strings.Fields(s)
}

// IsPublic reports whether the client has no secret.
func (c *Client) IsPublic() bool {
	return c.Secret == ""
}

// GenerateSecret assigns a new random secret and returns its plaintext. Only
// the hash is kept on the client, so the caller must hand the plaintext to
// the client owner now or never.
func (c *Client) GenerateSecret() (string, error) {
	if c.Secret != "" {
		return "", ErrSecretAlreadySet
	}

	plain, err := cryptox.GenerateToken(clientSecretBytes)
	if err != nil {
		return "", err
	}
	hash, err := cryptox.HashPassword(plain)
	if err != nil {
		return "", err
	}

	c.Secret = hash
	return plain, nil
}

// Authenticate checks secret against the stored hash. Public clients always
// authenticate.
func (c *Client) Authenticate(secret string) bool {
	if c.IsPublic() {
		return true
	}
	return cryptox.VerifyPassword(secret, c.Secret) == nil
}

// HasRedirectURI reports whether uri is registered, compared exactly.
func (c *Client) HasRedirectURI(uri string) bool {
	return slices.Contains(c.RedirectURIs, uri)
}

// DefaultRedirectURI returns the first registered redirect URI, if any.
func (c *Client) DefaultRedirectURI() string {
	if len(c.RedirectURIs) == 0 {
		return ""
	}
	return c.RedirectURIs[0]
}

// IsRestricted reports whether the client has a scope allow-list.
func (c *Client) IsRestricted() bool {
	return len(c.Scopes) > 0
}

// AllowsScope reports whether the client may hold scope.
func (c *Client) AllowsScope(scope string) bool {
	return !c.IsRestricted() || slices.Contains(c.Scopes, scope)
}
