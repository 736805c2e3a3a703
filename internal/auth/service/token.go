package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/aussiebroadwan/grantd/internal/auth/domain"
	"github.com/aussiebroadwan/grantd/internal/auth/metrics"
	"github.com/aussiebroadwan/grantd/internal/auth/store"
	"github.com/aussiebroadwan/grantd/pkg/cryptox"
	"github.com/aussiebroadwan/grantd/pkg/slogx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrTokenNotFound = errors.New("token not found")
	ErrInvalidScope  = errors.New("invalid_scope")
)

var tracer = otel.Tracer("github.com/aussiebroadwan/grantd/internal/auth/service")

// TokenService issues, resolves and removes tokens of a single kind.
type TokenService struct {
	Kind    domain.TokenKind
	Tokens  store.Tokens
	Scopes  store.Scopes
	TTL     *time.Duration // nil never expires
	Metrics *metrics.Metrics

	// Generate returns a fresh token value. Defaults to 20 random bytes as
	// lowercase hex.
	Generate func() (string, error)
}

// TokenOption adjusts a token before it is persisted.
type TokenOption func(*domain.Token)

// WithRedirectURI binds an authorization code to the redirect URI it was
// issued for.
func WithRedirectURI(uri string) TokenOption {
	return func(t *domain.Token) { t.RedirectURI = uri }
}

// GetToken looks a token up by value. The store may match case
// insensitively, so the stored value is compared again in constant time and
// anything but an exact match is reported as ErrTokenNotFound.
func (s *TokenService) GetToken(ctx context.Context, value string) (*domain.Token, error) {
	if value == "" {
		return nil, ErrTokenNotFound
	}

	tok, err := s.Tokens.FindByToken(ctx, value)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}

	if !cryptox.EqualTokens(tok.Value, value) {
		slogx.FromContext(ctx).Warn("token lookup matched a different value",
			"kind", s.Kind.String(),
		)
		return nil, ErrTokenNotFound
	}
	return tok, nil
}

// CreateToken issues a token for owner and client, both optional. Requested
// scopes must all be registered, and allowed by the client when it has an
// allow-list; ErrInvalidScope otherwise. With no scopes requested the
// registry defaults are used. Values are regenerated until one is free,
// which only ends early when ctx is done.
func (s *TokenService) CreateToken(
	ctx context.Context,
	owner domain.TokenOwner,
	client *domain.Client,
	scopes []string,
	opts ...TokenOption,
) (*domain.Token, error) {
	ctx, span := tracer.Start(ctx, "TokenService.CreateToken",
		trace.WithAttributes(attribute.String("token.kind", s.Kind.String())),
	)
	defer span.End()

	l := slogx.FromContext(ctx)

	resolved, err := s.resolveScopes(ctx, client, scopes)
	if err != nil {
		return nil, err
	}

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		value, err := s.generate()
		if err != nil {
			return nil, fmt.Errorf("generate %s: %w", s.Kind, err)
		}

		exists, err := s.Tokens.TokenExists(ctx, value)
		if err != nil {
			return nil, err
		}
		if exists {
			s.Metrics.TokenCollision(s.Kind.String())
			l.Warn("generated token value already taken, retrying", "kind", s.Kind.String())
			continue
		}

		tok := domain.NewToken(s.Kind, value, owner, client, resolved, s.TTL)
		for _, opt := range opts {
			opt(tok)
		}

		// The exists check above is only a fast path; the store decides
		if err := s.Tokens.Save(ctx, tok); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				s.Metrics.TokenCollision(s.Kind.String())
				l.Warn("token value taken during save, retrying", "kind", s.Kind.String())
				continue
			}
			return nil, err
		}

		s.Metrics.TokenIssued(s.Kind.String())
		return tok, nil
	}
}

// DeleteToken removes the token. Storage failures are returned as is.
func (s *TokenService) DeleteToken(ctx context.Context, tok *domain.Token) error {
	return s.Tokens.DeleteToken(ctx, tok)
}

// PurgeExpiredTokens deletes every token of this kind past its expiry.
func (s *TokenService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	n, err := s.Tokens.PurgeExpiredTokens(ctx, time.Now())
	if err != nil {
		return 0, err
	}
	s.Metrics.TokensPurged(s.Kind.String(), n)
	return n, nil
}

func (s *TokenService) generate() (string, error) {
	if s.Generate != nil {
		return s.Generate()
	}
	return cryptox.GenerateToken(cryptox.TokenBytes)
}

func (s *TokenService) resolveScopes(ctx context.Context, client *domain.Client, requested []string) ([]string, error) {
	if len(requested) == 0 {
		defaults, err := s.Scopes.GetDefaultScopes(ctx)
		if err != nil {
			return nil, err
		}
		names := domain.ScopeNames(defaults)
		if client != nil {
			names = slices.DeleteFunc(names, func(n string) bool { return !client.AllowsScope(n) })
		}
		return names, nil
	}

	registered, err := s.Scopes.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	known := make(map[string]struct{}, len(registered))
	for _, sc := range registered {
		known[sc.Name] = struct{}{}
	}

	var invalid []string
	for _, name := range requested {
		_, ok := known[name]
		if !ok || (client != nil && !client.AllowsScope(name)) {
			invalid = append(invalid, name)
		}
	}
	if len(invalid) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidScope, strings.Join(invalid, " "))
	}

	return dedupe(requested), nil
}

func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
