package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"slices"

	"github.com/aussiebroadwan/grantd/internal/auth/domain"
	"github.com/aussiebroadwan/grantd/internal/auth/store"
	"github.com/aussiebroadwan/grantd/pkg/slogx"
)

var (
	ErrBootstrapAlready      = errors.New("system already bootstrapped")
	ErrBootstrapUnauthorized = errors.New("unauthorized bootstrap attempt")
	ErrBootstrapDisabled     = errors.New("bootstrap token not configured")
	ErrBootstrapInvalid      = errors.New("bootstrap requires a client name")
)

type BootstrapService struct {
	Store store.Store
	Token string // Pre-configured bootstrap token
}

// BootstrapResult carries the credentials created at bootstrap. The secret
// is only ever returned here.
type BootstrapResult struct {
	ClientID     string
	ClientSecret string
	ClientScopes []string
	UserID       string
}

// IsBootstrapped reports whether any client is registered.
func (s *BootstrapService) IsBootstrapped(ctx context.Context) (bool, error) {
	empty, err := s.Store.Clients().IsEmpty(ctx)
	if err != nil {
		return false, err
	}
	return !empty, nil
}

// Bootstrap registers the scope registry, the first confidential client and
// optionally a first user, all in one transaction. The client always holds
// the client administration scopes.
func (s *BootstrapService) Bootstrap(ctx context.Context, token string, req domain.BootstrapData) (*BootstrapResult, error) {
	l := slogx.FromContext(ctx)

	if s.Token == "" {
		return nil, ErrBootstrapDisabled
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.Token)) != 1 {
		l.Warn("unauthorized bootstrap attempt")
		return nil, ErrBootstrapUnauthorized
	}
	if req.ClientName == "" {
		return nil, ErrBootstrapInvalid
	}

	bootstrapped, err := s.IsBootstrapped(ctx)
	if err != nil {
		return nil, err
	}
	if bootstrapped {
		l.Warn("attempted bootstrap on already-bootstrapped system")
		return nil, ErrBootstrapAlready
	}

	clientScopes := slices.Clone(req.ClientScopes)
	for _, def := range domain.AdminScopes {
		if !slices.Contains(clientScopes, def.Name) {
			clientScopes = append(clientScopes, def.Name)
		}
	}

	res := &BootstrapResult{}
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// Checked again inside the transaction so concurrent calls cannot
		// both succeed.
		empty, err := tx.Clients().IsEmpty(ctx)
		if err != nil {
			return err
		}
		if !empty {
			return ErrBootstrapAlready
		}

		if _, err := ensureScopes(ctx, tx.Scopes(), slices.Concat(req.Scopes, domain.AdminScopes)); err != nil {
			l.Error("failed to register scopes", slog.Any("error", err))
			return err
		}

		clients := ClientService{Clients: tx.Clients(), Scopes: tx.Scopes()}
		client, secret, err := clients.CreateClient(ctx, NewClientParams{
			Name:         req.ClientName,
			Confidential: true,
			Scopes:       clientScopes,
		})
		if err != nil {
			return err
		}
		res.ClientID = client.ID
		res.ClientSecret = secret
		res.ClientScopes = client.Scopes

		if req.AdminUsername != "" {
			users := UserService{Users: tx.Users()}
			u, _, err := users.CreateUser(ctx, req.AdminUsername, req.AdminPassword)
			if err != nil {
				return err
			}
			res.UserID = u.ID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.Info("successfully bootstrapped system",
		slog.String("client_id", res.ClientID),
		slog.String("user_id", res.UserID),
	)
	return res, nil
}
