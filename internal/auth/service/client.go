package service

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aussiebroadwan/grantd/internal/auth/domain"
	"github.com/aussiebroadwan/grantd/internal/auth/store"
	"github.com/aussiebroadwan/grantd/pkg/slogx"
)

var (
	ErrClientNotFound     = errors.New("client not found")
	ErrInvalidClientName  = errors.New("client name is required")
	ErrInvalidRedirectURI = errors.New("redirect URIs must be absolute and carry no fragment")
)

type ClientService struct {
	Clients store.Clients
	Scopes  store.Scopes
}

// NewClientParams describes a client to register.
type NewClientParams struct {
	Name         string
	Confidential bool
	RedirectURIs []string
	Scopes       []string // allow-list, empty for unrestricted
}

// CreateClient registers a client. For confidential clients a secret is
// generated and returned in plaintext; it is never retrievable again.
func (s *ClientService) CreateClient(ctx context.Context, p NewClientParams) (*domain.Client, string, error) {
	l := slogx.FromContext(ctx)

	client, err := s.newClient(ctx, p)
	if err != nil {
		return nil, "", err
	}

	var secret string
	if p.Confidential {
		secret, err = client.GenerateSecret()
		if err != nil {
			l.Error("failed to generate client secret", "error", err)
			return nil, "", err
		}
	}

	if err := s.Clients.CreateClient(ctx, client); err != nil {
		l.Error("failed to create client", "error", err)
		return nil, "", err
	}

	l.Info("client created",
		"client_id", client.ID,
		"name", client.Name,
		"confidential", p.Confidential,
		"scopes", strings.Join(client.Scopes, " "),
	)
	return client, secret, nil
}

func (s *ClientService) newClient(ctx context.Context, p NewClientParams) (*domain.Client, error) {
	client := domain.NewClient(p.Name, p.RedirectURIs...)
	if client.Name == "" {
		return nil, ErrInvalidClientName
	}
	for _, uri := range client.RedirectURIs {
		if err := validateRedirectURI(uri); err != nil {
			return nil, err
		}
	}

	if len(p.Scopes) > 0 {
		if err := s.checkRegistered(ctx, p.Scopes); err != nil {
			return nil, err
		}
		client.Scopes = dedupe(p.Scopes)
	}
	return client, nil
}

func (s *ClientService) checkRegistered(ctx context.Context, scopes []string) error {
	registered, err := s.Scopes.GetAll(ctx)
	if err != nil {
		return err
	}
	known := make(map[string]struct{}, len(registered))
	for _, sc := range registered {
		known[sc.Name] = struct{}{}
	}

	var unknown []string
	for _, name := range scopes {
		if _, ok := known[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidScope, strings.Join(unknown, " "))
	}
	return nil
}

// GetClient fetches a client by id.
func (s *ClientService) GetClient(ctx context.Context, id string) (*domain.Client, error) {
	c, err := s.Clients.GetClientByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrClientNotFound
	}
	return c, err
}

// ListClients returns all OAuth2 clients, newest first.
func (s *ClientService) ListClients(ctx context.Context) ([]*domain.Client, error) {
	return s.Clients.ListClients(ctx)
}

// DeleteClient removes a client together with every token issued to it.
func (s *ClientService) DeleteClient(ctx context.Context, id string) error {
	l := slogx.FromContext(ctx)

	err := s.Clients.DeleteClient(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrClientNotFound
	}
	if err != nil {
		l.Error("failed to delete client", "error", err, "client_id", id)
		return err
	}

	l.Info("client deleted", "client_id", id)
	return nil
}

func validateRedirectURI(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" || u.Fragment != "" {
		return fmt.Errorf("%w: %q", ErrInvalidRedirectURI, raw)
	}
	return nil
}
