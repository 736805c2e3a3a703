package authsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// Admin operations - require clients:read or clients:write scopes

const (
	scopeClientsRead  = "clients:read"
	scopeClientsWrite = "clients:write"
)

// ============================================================================
// Client Operations
// ============================================================================

// CreateClient creates a new OAuth2 client. Its scopes must be a subset of
// the session's own.
// Requires: clients:write scope
func (s *Session) CreateClient(ctx context.Context, req CreateClientRequest) (*CreateClientResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	headers := map[string]string{
		"Content-Type": "application/json",
	}

	resp, err := s.doAuthRequest(
		ctx,
		http.MethodPost,
		"/v1/clients",
		bytes.NewReader(body),
		headers,
		scopeClientsWrite,
	)
	if err != nil {
		return nil, err
	}

	var createResp CreateClientResponse
	if err := decodeJSON(resp, &createResp, http.StatusCreated); err != nil {
		return nil, err
	}

	return &createResp, nil
}

// ListClients returns all OAuth2 clients.
// Requires: clients:read or clients:write scope
func (s *Session) ListClients(ctx context.Context) (*ListClientsResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/clients", nil, nil, scopeClientsRead, scopeClientsWrite)
	if err != nil {
		return nil, err
	}

	var listResp ListClientsResponse
	if err := decodeJSON(resp, &listResp, http.StatusOK); err != nil {
		return nil, err
	}

	return &listResp, nil
}

// GetClient returns one OAuth2 client.
// Requires: clients:read or clients:write scope
func (s *Session) GetClient(ctx context.Context, clientID string) (*ClientInfo, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/clients/"+clientID, nil, nil, scopeClientsRead, scopeClientsWrite)
	if err != nil {
		return nil, err
	}

	var info ClientInfo
	if err := decodeJSON(resp, &info, http.StatusOK); err != nil {
		return nil, err
	}

	return &info, nil
}

// DeleteClient deletes an OAuth2 client by ID along with its tokens.
// Requires: clients:write scope
func (s *Session) DeleteClient(ctx context.Context, clientID string) error {
	resp, err := s.doAuthRequest(
		ctx,
		http.MethodDelete,
		"/v1/clients/"+clientID,
		nil,
		nil,
		scopeClientsWrite,
	)
	if err != nil {
		return err
	}

	return checkStatus(resp, http.StatusNoContent)
}

// ============================================================================
// Scope Operations
// ============================================================================

// ListScopes returns the registered scopes.
// Requires: clients:read or clients:write scope
func (s *Session) ListScopes(ctx context.Context) (*ListScopesResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/v1/scopes", nil, nil, scopeClientsRead, scopeClientsWrite)
	if err != nil {
		return nil, err
	}

	var listResp ListScopesResponse
	if err := decodeJSON(resp, &listResp, http.StatusOK); err != nil {
		return nil, err
	}

	return &listResp, nil
}
