package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/aussiebroadwan/grantd/internal/auth/domain"
	"github.com/aussiebroadwan/grantd/internal/auth/service"
	"github.com/aussiebroadwan/grantd/pkg/authsdk"
	"github.com/aussiebroadwan/grantd/pkg/httpx"
	"github.com/aussiebroadwan/grantd/pkg/slogx"
)

// ClientsHandler handles all client management endpoints.
type ClientsHandler struct {
	ClientService *service.ClientService
}

// HandleCreate handles POST /v1/clients
//
//	@Summary		Create OAuth2 Client
//	@Description	Registers a new OAuth2 client. If confidential=true, a secret is generated and returned once.
//	@Description	The client's scopes must be a subset of the caller's. When omitted, the caller's scopes without the client administration scopes are used.
//	@Tags			Clients
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		authsdk.CreateClientRequest		true	"Client creation request"
//	@Success		201		{object}	authsdk.CreateClientResponse	"client_id and client_secret (if confidential)"
//	@Failure		400		{object}	authsdk.ErrorResponse			"error, error_description"
//	@Failure		401		{object}	authsdk.ErrorResponse			"error, error_description"
//	@Failure		403		{object}	authsdk.ErrorResponse			"error, error_description"
//	@Failure		500		{object}	authsdk.ErrorResponse			"error, error_description"
//	@Router			/v1/clients [post].
func (h *ClientsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	var req authsdk.CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteJSON(w, http.StatusBadRequest, authsdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "Invalid JSON in request body",
		})
		return
	}

	caller, _ := httpx.PrincipalFromContext(ctx)
	scopes, ok := delegatedScopes(caller.Scopes, req.Scopes)
	if !ok {
		httpx.WriteJSON(w, http.StatusForbidden, authsdk.ErrorResponse{
			Error:            "insufficient_scope",
			ErrorDescription: "A client cannot be granted scopes the caller does not hold",
		})
		return
	}
	if len(scopes) == 0 {
		httpx.WriteJSON(w, http.StatusBadRequest, authsdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "At least one scope is required",
		})
		return
	}

	client, secret, err := h.ClientService.CreateClient(ctx, service.NewClientParams{
		Name:         req.Name,
		Confidential: req.Confidential,
		RedirectURIs: req.RedirectURIs,
		Scopes:       scopes,
	})
	switch {
	case errors.Is(err, service.ErrInvalidClientName),
		errors.Is(err, service.ErrInvalidRedirectURI):
		httpx.WriteJSON(w, http.StatusBadRequest, authsdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: err.Error(),
		})
		return
	case errors.Is(err, service.ErrInvalidScope):
		httpx.WriteJSON(w, http.StatusBadRequest, authsdk.ErrorResponse{
			Error:            "invalid_scope",
			ErrorDescription: err.Error(),
		})
		return
	case err != nil:
		log.Error("failed to create client", "error", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, authsdk.ErrorResponse{
			Error:            "server_error",
			ErrorDescription: "Failed to create client",
		})
		return
	}

	// Secret is only returned once at creation time
	httpx.WriteJSON(w, http.StatusCreated, authsdk.CreateClientResponse{
		ClientID:     client.ID,
		ClientSecret: secret,
	})
}

// delegatedScopes resolves the allow-list of a client created by a caller
// holding held. An empty request takes held minus the administration
// scopes. ok is false when requested asks for more than held.
func delegatedScopes(held, requested []string) (scopes []string, ok bool) {
	if len(requested) == 0 {
		for _, s := range held {
			if s != domain.ScopeClientsRead && s != domain.ScopeClientsWrite {
				scopes = append(scopes, s)
			}
		}
		return scopes, true
	}

	for _, s := range requested {
		if !slices.Contains(held, s) {
			return nil, false
		}
	}
	return requested, true
}

// HandleList handles GET /v1/clients
//
//	@Summary		List OAuth2 Clients
//	@Description	Returns all registered OAuth2 clients, newest first.
//	@Tags			Clients
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	authsdk.ListClientsResponse	"List of clients"
//	@Failure		401	{object}	authsdk.ErrorResponse		"error, error_description"
//	@Failure		403	{object}	authsdk.ErrorResponse		"error, error_description"
//	@Failure		500	{object}	authsdk.ErrorResponse		"error, error_description"
//	@Router			/v1/clients [get].
func (h *ClientsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	clients, err := h.ClientService.ListClients(ctx)
	if err != nil {
		log.Error("failed to list clients", "error", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, authsdk.ErrorResponse{
			Error:            "server_error",
			ErrorDescription: "Failed to list clients",
		})
		return
	}

	response := authsdk.ListClientsResponse{
		Clients: make([]authsdk.ClientInfo, len(clients)),
	}
	for i, client := range clients {
		response.Clients[i] = clientInfo(client)
	}

	httpx.WriteJSON(w, http.StatusOK, response)
}

// HandleGet handles GET /v1/clients/{id}
//
//	@Summary		Get OAuth2 Client
//	@Tags			Clients
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path		string					true	"Client ID"
//	@Success		200	{object}	authsdk.ClientInfo		"The client"
//	@Failure		401	{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		403	{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	authsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/clients/{id} [get].
func (h *ClientsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	client, err := h.ClientService.GetClient(ctx, r.PathValue("id"))
	if errors.Is(err, service.ErrClientNotFound) {
		httpx.WriteJSON(w, http.StatusNotFound, authsdk.ErrorResponse{
			Error:            "not_found",
			ErrorDescription: "Client not found",
		})
		return
	}
	if err != nil {
		slogx.FromContext(ctx).Error("failed to get client", "error", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, authsdk.ErrorResponse{
			Error:            "server_error",
			ErrorDescription: "Failed to get client",
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, clientInfo(client))
}

// HandleDelete handles DELETE /v1/clients/{id}
//
//	@Summary		Delete OAuth2 Client
//	@Description	Deletes a client and every token issued to it. A client cannot delete itself.
//	@Tags			Clients
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Client ID"
//	@Success		204	"Client deleted successfully"
//	@Failure		400	{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		401	{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		403	{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		404	{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		500	{object}	authsdk.ErrorResponse	"error, error_description"
//	@Router			/v1/clients/{id} [delete].
func (h *ClientsHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	clientID := strings.TrimSpace(r.PathValue("id"))
	if clientID == "" {
		httpx.WriteJSON(w, http.StatusBadRequest, authsdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "Client ID is required",
		})
		return
	}

	if caller, ok := httpx.PrincipalFromContext(ctx); ok && caller.ClientID == clientID {
		httpx.WriteJSON(w, http.StatusBadRequest, authsdk.ErrorResponse{
			Error:            "invalid_request",
			ErrorDescription: "A client cannot delete itself",
		})
		return
	}

	err := h.ClientService.DeleteClient(ctx, clientID)
	if errors.Is(err, service.ErrClientNotFound) {
		httpx.WriteJSON(w, http.StatusNotFound, authsdk.ErrorResponse{
			Error:            "not_found",
			ErrorDescription: "Client not found",
		})
		return
	}
	if err != nil {
		log.Error("failed to delete client", "error", err, "client_id", clientID)
		httpx.WriteJSON(w, http.StatusInternalServerError, authsdk.ErrorResponse{
			Error:            "server_error",
			ErrorDescription: "Failed to delete client",
		})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func clientInfo(c *domain.Client) authsdk.ClientInfo {
	info := authsdk.ClientInfo{
		ID:           c.ID,
		Name:         c.Name,
		RedirectURIs: c.RedirectURIs,
		Scopes:       c.Scopes,
		HasSecret:    !c.IsPublic(),
		CreatedAt:    c.CreatedAt.Format(time.RFC3339),
	}
	if info.RedirectURIs == nil {
		info.RedirectURIs = []string{}
	}
	if info.Scopes == nil {
		info.Scopes = []string{}
	}
	return info
}
