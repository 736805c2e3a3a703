package oauth2

import (
	"context"
	"errors"
	"net/http"

	"github.com/aussiebroadwan/grantd/internal/auth/domain"
	"github.com/aussiebroadwan/grantd/internal/auth/metrics"
	"github.com/aussiebroadwan/grantd/internal/auth/service"
	"github.com/aussiebroadwan/grantd/pkg/slogx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/aussiebroadwan/grantd/internal/auth/oauth2")

const (
	endpointAuthorize = "authorize"
	endpointToken     = "token"
	endpointRevoke    = "revoke"
)

// ClientFinder looks clients up by id, reporting service.ErrClientNotFound
// for unknown ids.
type ClientFinder interface {
	GetClient(ctx context.Context, id string) (*domain.Client, error)
}

// Server dispatches authorization, token and revocation requests to the
// registered grants. Protocol failures come back as error responses; any
// other error is returned for the transport to handle.
type Server struct {
	clients ClientFinder
	access  TokenService
	refresh TokenService
	grants  *Registry
	metrics *metrics.Metrics
}

// NewServer seals grants; nothing can be registered afterwards.
func NewServer(clients ClientFinder, access, refresh TokenService, grants *Registry, m *metrics.Metrics) *Server {
	grants.seal()
	return &Server{
		clients: clients,
		access:  access,
		refresh: refresh,
		grants:  grants,
		metrics: m,
	}
}

// Grants exposes the sealed registry.
func (s *Server) Grants() *Registry { return s.grants }

// HandleAuthorizationRequest serves the authorization endpoint. owner is
// the already authenticated resource owner, if any.
func (s *Server) HandleAuthorizationRequest(ctx context.Context, req *Request, owner domain.TokenOwner) (*Response, error) {
	ctx, span := tracer.Start(ctx, "oauth2.authorize")
	defer span.End()

	resp, err := s.authorize(ctx, span, req, owner)
	resp, err = s.finish(ctx, span, endpointAuthorize, resp, err)
	if resp != nil {
		resp.Header.Set("Content-Type", "application/json")
	}
	return resp, err
}

func (s *Server) authorize(ctx context.Context, span trace.Span, req *Request, owner domain.TokenOwner) (*Response, error) {
	responseType := req.QueryValue("response_type")
	if responseType == "" {
		return nil, InvalidRequest("no response type was found in the request")
	}
	span.SetAttributes(attribute.String("oauth2.response_type", responseType))

	grant, err := s.grants.ResponseType(responseType)
	if err != nil {
		return nil, err
	}

	// Browsers cannot carry client secrets, so grants open to public
	// clients only identify the client here.
	var client *domain.Client
	if grant.AllowsPublicClients() {
		client, err = s.identify(ctx, req)
	} else {
		client, err = s.Client(ctx, req, false)
	}
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, InvalidClient("no client could be authenticated")
	}

	return grant.CreateAuthorizationResponse(ctx, req, client, owner)
}

// identify resolves the client named by the request without checking its
// secret.
func (s *Server) identify(ctx context.Context, req *Request) (*domain.Client, error) {
	id, _ := req.clientCredentials()
	if id == "" {
		return nil, nil
	}

	client, err := s.clients.GetClient(ctx, id)
	if errors.Is(err, service.ErrClientNotFound) {
		return nil, InvalidClient("client authentication failed")
	}
	return client, err
}

// HandleTokenRequest serves the token endpoint. owner is an externally
// authenticated owner to attach to client-only grants, and may be nil.
func (s *Server) HandleTokenRequest(ctx context.Context, req *Request, owner domain.TokenOwner) (*Response, error) {
	ctx, span := tracer.Start(ctx, "oauth2.token")
	defer span.End()

	resp, err := s.token(ctx, span, req, owner)
	resp, err = s.finish(ctx, span, endpointToken, resp, err)
	if resp != nil {
		resp.Header.Set("Content-Type", "application/json")
		resp.Header.Set("Cache-Control", "no-store")
		resp.Header.Set("Pragma", "no-cache")
	}
	return resp, err
}

func (s *Server) token(ctx context.Context, span trace.Span, req *Request, owner domain.TokenOwner) (*Response, error) {
	grantType := req.BodyValue("grant_type")
	if grantType == "" {
		return nil, InvalidRequest("no grant type was found in the request")
	}
	span.SetAttributes(attribute.String("oauth2.grant_type", grantType))

	grant, err := s.grants.Grant(grantType)
	if err != nil {
		return nil, err
	}

	client, err := s.Client(ctx, req, grant.AllowsPublicClients())
	if err != nil {
		return nil, err
	}
	if client != nil {
		span.SetAttributes(attribute.String("oauth2.client_id", client.ID))
	}

	return grant.CreateTokenResponse(ctx, req, client, owner)
}

// HandleRevocationRequest serves RFC 7009 revocation. Unknown tokens are
// reported as revoked, and a failed delete answers 503.
func (s *Server) HandleRevocationRequest(ctx context.Context, req *Request) (*Response, error) {
	ctx, span := tracer.Start(ctx, "oauth2.revoke")
	defer span.End()

	resp, err := s.revoke(ctx, span, req)
	return s.finish(ctx, span, endpointRevoke, resp, err)
}

func (s *Server) revoke(ctx context.Context, span trace.Span, req *Request) (*Response, error) {
	value := req.BodyValue("token")
	hint := req.BodyValue("token_type_hint")
	if value == "" || hint == "" {
		return nil, InvalidRequest(`cannot revoke a token as the "token" and/or "token_type_hint" parameters are missing`)
	}
	span.SetAttributes(attribute.String("oauth2.token_type_hint", hint))

	var tokens TokenService
	switch domain.TokenKind(hint) {
	case domain.KindAccessToken:
		tokens = s.access
	case domain.KindRefreshToken:
		tokens = s.refresh
	default:
		return nil, UnsupportedTokenType("authorization server does not support revocation of token of type %q", hint)
	}

	tok, err := tokens.GetToken(ctx, value)
	if errors.Is(err, service.ErrTokenNotFound) {
		return newResponse(http.StatusOK), nil
	}
	if err != nil {
		return nil, err
	}

	if tok.Client != nil && !tok.Client.IsPublic() {
		requester, err := s.Client(ctx, req, false)
		if err != nil {
			return nil, err
		}
		if !sameClient(requester, tok.Client) {
			return nil, InvalidClient("token was issued for another client and cannot be revoked")
		}
	}

	if err := tokens.DeleteToken(ctx, tok); err != nil {
		slogx.FromContext(ctx).Error("failed to revoke token", "kind", hint, "error", err)
		span.RecordError(err)
		return newResponse(http.StatusServiceUnavailable), nil
	}
	return newResponse(http.StatusOK), nil
}

// Client resolves and authenticates the requesting client. With
// allowPublic, a request naming no client yields nil and public clients
// pass without a secret. Confidential clients always have their secret
// checked.
func (s *Server) Client(ctx context.Context, req *Request, allowPublic bool) (*domain.Client, error) {
	id, secret := req.clientCredentials()

	if !allowPublic && secret == "" {
		return nil, InvalidClient("client secret is missing")
	}
	if allowPublic && id == "" {
		return nil, nil
	}

	client, err := s.clients.GetClient(ctx, id)
	if errors.Is(err, service.ErrClientNotFound) {
		return nil, InvalidClient("client authentication failed")
	}
	if err != nil {
		return nil, err
	}

	if client.IsPublic() {
		if !allowPublic {
			return nil, InvalidClient("client authentication failed")
		}
		return client, nil
	}
	if !client.Authenticate(secret) {
		return nil, InvalidClient("client authentication failed")
	}
	return client, nil
}

// finish renders protocol errors and records the outcome.
func (s *Server) finish(ctx context.Context, span trace.Span, endpoint string, resp *Response, err error) (*Response, error) {
	log := slogx.FromContext(ctx)

	var oerr *Error
	switch {
	case errors.As(err, &oerr):
		span.SetAttributes(attribute.String("oauth2.error", oerr.Code))
		s.metrics.ObserveRequest(endpoint, oerr.Code)
		log.Info("oauth2 request rejected",
			"endpoint", endpoint,
			"error", oerr.Code,
			"description", oerr.Description,
		)
		return oerr.Response(), nil

	case err != nil:
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.metrics.ObserveRequest(endpoint, CodeServerError)
		return nil, err
	}

	outcome := "ok"
	if resp.StatusCode >= http.StatusInternalServerError {
		outcome = "unavailable"
		span.SetStatus(codes.Error, http.StatusText(resp.StatusCode))
	}
	s.metrics.ObserveRequest(endpoint, outcome)
	return resp, nil
}
