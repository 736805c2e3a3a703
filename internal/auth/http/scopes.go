package http

import (
	"net/http"

	"github.com/aussiebroadwan/grantd/internal/auth/service"
	"github.com/aussiebroadwan/grantd/pkg/authsdk"
	"github.com/aussiebroadwan/grantd/pkg/httpx"
	"github.com/aussiebroadwan/grantd/pkg/slogx"
)

type ScopesHandler struct {
	ScopeService *service.ScopeService
}

// ServeHTTP handles the list scopes endpoint
//
//	@Summary		List all scopes
//	@Description	Returns every registered scope. Default scopes are granted when a client requests none.
//	@Tags			Scopes
//	@Produce		json
//	@Success		200	{object}	authsdk.ListScopesResponse	"List of scopes"
//	@Failure		401	{object}	authsdk.ErrorResponse		"Unauthorized - missing or invalid token"
//	@Failure		403	{object}	authsdk.ErrorResponse		"Forbidden - missing required scope"
//	@Failure		500	{object}	authsdk.ErrorResponse		"Internal server error"
//	@Security		BearerAuth
//	@Router			/v1/scopes [get].
func (h *ScopesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	scopes, err := h.ScopeService.GetAll(ctx)
	if err != nil {
		log.Error("failed to list scopes", "error", err)
		httpx.WriteJSON(w, http.StatusInternalServerError, authsdk.ErrorResponse{
			Error:            "server_error",
			ErrorDescription: "Failed to retrieve scopes",
		})
		return
	}

	response := authsdk.ListScopesResponse{
		Scopes: make([]authsdk.ScopeDefinition, len(scopes)),
	}
	for i, s := range scopes {
		response.Scopes[i] = authsdk.ScopeDefinition{
			Name:        s.Name,
			Description: s.Description,
			Default:     s.IsDefault,
		}
	}

	httpx.WriteJSON(w, http.StatusOK, response)
}
