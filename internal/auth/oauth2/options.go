package oauth2

import (
	"time"

	"github.com/aussiebroadwan/grantd/internal/auth/domain"
)

// Options is the protocol configuration. It is built once at startup and
// passed by value; a TTL of zero disables expiry for that kind.
type Options struct {
	AuthorizationCodeTTL time.Duration `env:"AUTHORIZATION_CODE_TTL" envDefault:"2m"`
	AccessTokenTTL       time.Duration `env:"ACCESS_TOKEN_TTL" envDefault:"1h"`
	RefreshTokenTTL      time.Duration `env:"REFRESH_TOKEN_TTL" envDefault:"24h"`

	// RotateRefreshTokens issues a new refresh token on every refresh grant.
	RotateRefreshTokens bool `env:"ROTATE_REFRESH_TOKENS" envDefault:"false"`

	// RevokeRotatedRefreshTokens deletes the old refresh token once it has
	// been rotated. Without it both stay valid until they expire.
	RevokeRotatedRefreshTokens bool `env:"REVOKE_ROTATED_REFRESH_TOKENS" envDefault:"true"`
}

func DefaultOptions() Options {
	return Options{
		AuthorizationCodeTTL:       2 * time.Minute,
		AccessTokenTTL:             time.Hour,
		RefreshTokenTTL:            24 * time.Hour,
		RotateRefreshTokens:        false,
		RevokeRotatedRefreshTokens: true,
	}
}

// TTL returns the lifetime for kind, nil when tokens of that kind never
// expire.
func (o Options) TTL(kind domain.TokenKind) *time.Duration {
	var d time.Duration
	switch kind {
	case domain.KindAccessToken:
		d = o.AccessTokenTTL
	case domain.KindRefreshToken:
		d = o.RefreshTokenTTL
	case domain.KindAuthorizationCode:
		d = o.AuthorizationCodeTTL
	}
	if d == 0 {
		return nil
	}
	return &d
}
