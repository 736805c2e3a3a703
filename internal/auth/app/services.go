package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/grantd/internal/auth/domain"
	"github.com/aussiebroadwan/grantd/internal/auth/metrics"
	"github.com/aussiebroadwan/grantd/internal/auth/oauth2"
	"github.com/aussiebroadwan/grantd/internal/auth/service"
	"github.com/aussiebroadwan/grantd/internal/auth/store"
	"github.com/aussiebroadwan/grantd/internal/auth/store/drivers/bolt"
	"github.com/aussiebroadwan/grantd/internal/auth/store/drivers/sqlite"
)

// OpenStore opens the configured driver and brings its schema up to date.
func OpenStore(cfg Config) (store.Store, error) {
	var (
		db  store.Store
		err error
	)
	switch cfg.StoreDriver {
	case DriverBolt:
		db, err = bolt.NewStore(cfg.DatabaseFile)
	case DriverSQLite, "":
		db, err = sqlite.NewStore(fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", cfg.DatabaseFile))
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.StoreDriver, err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}
	return db, nil
}

// Services bundles the business services built on one store. The CLI uses
// it without the HTTP layer.
type Services struct {
	Access  *service.TokenService
	Refresh *service.TokenService
	Codes   *service.TokenService

	Clients   *service.ClientService
	Users     *service.UserService
	Scopes    *service.ScopeService
	Bootstrap *service.BootstrapService
}

// NewServices wires one TokenService per kind with the TTLs from
// cfg.OAuth2. m may be nil.
func NewServices(db store.Store, cfg Config, m *metrics.Metrics) *Services {
	tokens := func(kind domain.TokenKind) *service.TokenService {
		return &service.TokenService{
			Kind:    kind,
			Tokens:  db.Tokens(kind),
			Scopes:  db.Scopes(),
			TTL:     cfg.OAuth2.TTL(kind),
			Metrics: m,
		}
	}

	return &Services{
		Access:  tokens(domain.KindAccessToken),
		Refresh: tokens(domain.KindRefreshToken),
		Codes:   tokens(domain.KindAuthorizationCode),

		Clients: &service.ClientService{Clients: db.Clients(), Scopes: db.Scopes()},
		Users:   &service.UserService{Users: db.Users()},
		Scopes:  &service.ScopeService{Store: db},
		Bootstrap: &service.BootstrapService{
			Store: db,
			Token: cfg.BootstrapToken,
		},
	}
}

// Housekeeping returns a purge worker covering every token kind.
func (s *Services) Housekeeping(logger *slog.Logger, interval time.Duration) *service.HousekeepingService {
	return service.NewHousekeepingService(logger, interval, s.Access, s.Refresh, s.Codes)
}

// NewGrantRegistry registers the four supported grants. The registry is
// sealed by oauth2.NewServer.
func NewGrantRegistry(s *Services, opts oauth2.Options) *oauth2.Registry {
	grants := oauth2.NewRegistry()
	grants.MustRegister(
		oauth2.NewAuthorizationCodeGrant(s.Codes, s.Access, s.Refresh, grants),
		oauth2.NewClientCredentialsGrant(s.Access),
		oauth2.NewPasswordGrant(s.Access, s.Refresh, s.Users.ValidateCredentials, grants),
		oauth2.NewRefreshTokenGrant(s.Access, s.Refresh, opts),
	)
	return grants
}
