package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aussiebroadwan/grantd/internal/auth/domain"
	"github.com/aussiebroadwan/grantd/internal/auth/store"
	"github.com/aussiebroadwan/grantd/pkg/slogx"
	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidScopeName = errors.New("scope names must be non-empty and contain no whitespace")
	ErrScopeExists      = errors.New("scope already exists")
)

// ScopeService manages the scope registry.
type ScopeService struct {
	Store store.Store
}

// SeedFile is the YAML layout accepted by Seed:
//
//	scopes:
//	  - name: read
//	    description: Read access
//	    default: true
type SeedFile struct {
	Scopes []domain.ScopeDefinition `yaml:"scopes"`
}

func (s *ScopeService) GetAll(ctx context.Context) ([]domain.Scope, error) {
	return s.Store.Scopes().GetAll(ctx)
}

func (s *ScopeService) GetDefaultScopes(ctx context.Context) ([]domain.Scope, error) {
	return s.Store.Scopes().GetDefaultScopes(ctx)
}

// CreateScope registers a new scope.
func (s *ScopeService) CreateScope(ctx context.Context, def domain.ScopeDefinition) (domain.Scope, error) {
	if err := validateScopeName(def.Name); err != nil {
		return domain.Scope{}, err
	}

	sc, err := s.Store.Scopes().CreateScope(ctx, domain.NewScope(def.Name, def.Description, def.Default))
	if errors.Is(err, store.ErrAlreadyExists) {
		return domain.Scope{}, ErrScopeExists
	}
	if err != nil {
		return domain.Scope{}, err
	}

	slogx.FromContext(ctx).Info("scope created", "scope", sc.Name, "default", sc.IsDefault)
	return sc, nil
}

// Seed registers every scope in a YAML seed document inside one
// transaction. Scopes that already exist are left alone. Returns how many
// were created.
func (s *ScopeService) Seed(ctx context.Context, r io.Reader) (int, error) {
	var file SeedFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return 0, fmt.Errorf("decode scope seed: %w", err)
	}

	var created int
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		created, err = ensureScopes(ctx, tx.Scopes(), file.Scopes)
		return err
	})
	if err != nil {
		return 0, err
	}

	slogx.FromContext(ctx).Info("scope seed applied", "created", created, "total", len(file.Scopes))
	return created, nil
}

// SeedFromFile opens path and seeds from it.
func (s *ScopeService) SeedFromFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path) // #nosec G304 - operator supplied path
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return s.Seed(ctx, f)
}

// ensureScopes creates the missing scopes among defs.
func ensureScopes(ctx context.Context, repo store.Scopes, defs []domain.ScopeDefinition) (int, error) {
	var created int
	for _, def := range defs {
		if err := validateScopeName(def.Name); err != nil {
			return created, fmt.Errorf("%w: %q", err, def.Name)
		}
		_, err := repo.CreateScope(ctx, domain.NewScope(def.Name, def.Description, def.Default))
		if errors.Is(err, store.ErrAlreadyExists) {
			continue
		}
		if err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

func validateScopeName(name string) error {
	if name == "" || strings.ContainsFunc(name, func(r rune) bool { return r == ' ' || r == '\t' || r == '\n' || r == '\r' }) {
		return ErrInvalidScopeName
	}
	return nil
}
