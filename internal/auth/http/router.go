package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/grantd/internal/auth/domain"
	"github.com/aussiebroadwan/grantd/internal/auth/metrics"
	"github.com/aussiebroadwan/grantd/internal/auth/oauth2"
	"github.com/aussiebroadwan/grantd/internal/auth/service"
	"github.com/aussiebroadwan/grantd/internal/auth/store"
	"github.com/aussiebroadwan/grantd/pkg/httpx"
	"github.com/aussiebroadwan/grantd/pkg/slogx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	_ "github.com/aussiebroadwan/grantd/api/grantd" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

const httpSpanName = "grantd.http"

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware
	handler     http.Handler

	limits       httpx.RateLimits
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	OAuth2           *oauth2.Server
	Resource         *oauth2.ResourceServer
	ClientService    *service.ClientService
	ScopeService     *service.ScopeService
	BootstrapService *service.BootstrapService
	Metrics          *metrics.Metrics

	// Tracing wraps every request in an OpenTelemetry server span.
	Tracing bool
}

func NewRouter(
	buildVersion string,
	st store.Store,
	limits httpx.RateLimits,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		limits:       limits,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

// ApplyRoutes registers every endpoint and freezes the middleware chain.
func (r *Router) ApplyRoutes() {
	r.registerOAuth2()
	r.registerClients()
	r.registerScopes()
	r.registerSystem()
	r.registerBootstrap()

	r.Mux.Handle("GET /swagger/",
		httpx.Chain(httpSwagger.Handler(),
			httpx.RateLimitByIP(r.limits.Public),
		),
	)

	r.handler = httpx.Chain(r.Mux, r.middlewares...)
	if r.Tracing {
		r.handler = otelhttp.NewHandler(r.handler, httpSpanName)
	}
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			grantd OAuth2 Authorization Server API
//	@version		0.1.0
//	@description	OAuth2 authorization server issuing opaque bearer tokens (RFC 6749, RFC 6750, RFC 7009).
//	@description
//	@description				Supports the authorization_code, client_credentials, password and refresh_token grants.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/grantd
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Opaque access token. Format: "Bearer {token}".
//
//	@securityDefinitions.basic	ClientAuth
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if r.handler == nil {
		httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
		return
	}
	r.handler.ServeHTTP(w, req)
}

func (r *Router) registerOAuth2() {
	// GET /authorize - the resource owner is identified by their bearer
	// token, so limit by IP and client
	authorizeHandler := &AuthorizeHandler{Server: r.OAuth2}
	r.Mux.Handle("GET /v1/oauth2/authorize",
		httpx.Chain(authorizeHandler,
			httpx.RateLimitByIPAndClient(r.limits.Moderate),
			httpx.OptionalAuthnMiddleware(r.Resource),
		),
	)

	// POST /token - strict rate limit by IP and client (covers all grant types)
	tokenHandler := &TokenHandler{Server: r.OAuth2}
	r.Mux.Handle("POST /v1/oauth2/token",
		httpx.Chain(tokenHandler,
			httpx.RateLimitByIPAndClient(r.limits.Strict),
		),
	)

	// POST /revoke - moderate rate limit
	revokeHandler := &RevokeHandler{Server: r.OAuth2}
	r.Mux.Handle("POST /v1/oauth2/revoke",
		httpx.Chain(revokeHandler,
			httpx.RateLimitByIP(r.limits.Moderate),
		),
	)

	// GET /tokeninfo - cheap lookup, lenient
	tokenInfoHandler := &TokenInfoHandler{Resource: r.Resource}
	r.Mux.Handle("GET /v1/oauth2/tokeninfo",
		httpx.Chain(tokenInfoHandler,
			httpx.RateLimitByIP(r.limits.Lenient),
		),
	)
}

func (r *Router) registerClients() {
	h := &ClientsHandler{ClientService: r.ClientService}

	// POST /v1/clients - Create client (requires clients:write) - moderate rate limit
	securedCreate := httpx.Chain(http.HandlerFunc(h.HandleCreate),
		httpx.AuthnMiddleware(r.Resource),
		httpx.RequireAnyScope(domain.ScopeClientsWrite),
		httpx.RateLimitByPrincipal(r.limits.Moderate),
	)

	// GET /v1/clients - List clients (requires clients:read) - moderate rate limit
	securedList := httpx.Chain(http.HandlerFunc(h.HandleList),
		httpx.AuthnMiddleware(r.Resource),
		httpx.RequireAnyScope(domain.ScopeClientsRead, domain.ScopeClientsWrite),
		httpx.RateLimitByPrincipal(r.limits.Moderate),
	)

	// GET /v1/clients/{id} - Get client (requires clients:read) - moderate rate limit
	securedGet := httpx.Chain(http.HandlerFunc(h.HandleGet),
		httpx.AuthnMiddleware(r.Resource),
		httpx.RequireAnyScope(domain.ScopeClientsRead, domain.ScopeClientsWrite),
		httpx.RateLimitByPrincipal(r.limits.Moderate),
	)

	// DELETE /v1/clients/{id} - Delete client (requires clients:write) - moderate rate limit
	securedDelete := httpx.Chain(http.HandlerFunc(h.HandleDelete),
		httpx.AuthnMiddleware(r.Resource),
		httpx.RequireAnyScope(domain.ScopeClientsWrite),
		httpx.RateLimitByPrincipal(r.limits.Moderate),
	)

	r.Mux.Handle("POST /v1/clients", securedCreate)
	r.Mux.Handle("GET /v1/clients", securedList)
	r.Mux.Handle("GET /v1/clients/{id}", securedGet)
	r.Mux.Handle("DELETE /v1/clients/{id}", securedDelete)
}

func (r *Router) registerScopes() {
	h := &ScopesHandler{ScopeService: r.ScopeService}

	r.Mux.Handle("GET /v1/scopes",
		httpx.Chain(h,
			httpx.AuthnMiddleware(r.Resource),
			httpx.RequireAnyScope(domain.ScopeClientsRead, domain.ScopeClientsWrite),
			httpx.RateLimitByPrincipal(r.limits.Moderate),
		),
	)
}

func (r *Router) registerBootstrap() {
	// POST /bootstrap - very strict rate limit by IP (one-time setup endpoint)
	bootstrapHandler := &BootstrapHandler{BootstrapService: r.BootstrapService}
	r.Mux.Handle("POST /v1/bootstrap",
		httpx.Chain(bootstrapHandler,
			httpx.RateLimitByIP(r.limits.Strict),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.limits.Lenient),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(r.limits.Lenient),
		),
	)

	// Scraped from inside the deployment, not rate limited
	r.Mux.Handle("GET /metrics", r.Metrics.Handler())
}
