package authsdk

// ============================================================================
// Internal Response Types (used for JSON unmarshaling)
// ============================================================================

// ErrorResponse represents a standard OAuth2 error response per RFC 6749.
// Client code should use the OAuth2Error type from errors.go instead.
type ErrorResponse struct {
	// Error is the OAuth2 error code (e.g., "invalid_request", "invalid_grant")
	Error string `json:"error"`

	// ErrorDescription is a human-readable description of the error
	ErrorDescription string `json:"error_description"`
}

// ValidationErrorResponse is returned when request validation fails,
// typically from the bootstrap and client endpoints.
type ValidationErrorResponse struct {
	// Code is the error code (e.g., "validation_error")
	Code string `json:"code"`

	// Message is a human-readable error message
	Message string `json:"message"`

	// Details contains field-specific validation errors (field name: error message)
	Details map[string]string `json:"details,omitempty"`
}

// ============================================================================
// Token Types
// ============================================================================

// TokenResponse is the token endpoint response per RFC 6749 section 5.1.
type TokenResponse struct {
	// AccessToken is the opaque bearer token used to call protected APIs
	AccessToken string `json:"access_token"`

	// RefreshToken is only present for grants that issue one
	RefreshToken string `json:"refresh_token,omitempty"`

	// TokenType is always "Bearer"
	TokenType string `json:"token_type"`

	// ExpiresIn is the lifetime in seconds of the access token, omitted
	// for tokens that never expire
	ExpiresIn int `json:"expires_in,omitempty"`

	// Scope is the space-delimited list of scopes granted to this token
	Scope string `json:"scope,omitempty"`
}

// TokenInfoResponse describes the access token presented to GET
// /v1/oauth2/tokeninfo.
type TokenInfoResponse struct {
	ClientID  string `json:"client_id"`
	UserID    string `json:"user_id,omitempty"`
	Scope     string `json:"scope"`
	ExpiresIn int64  `json:"expires_in,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"` // RFC3339
}

// ============================================================================
// Bootstrap Types
// ============================================================================

// BootstrapRequest registers the scope registry and the first confidential
// client of an empty server. The client always receives clients:read and
// clients:write on top of ClientScopes.
type BootstrapRequest struct {
	// ClientName is the name for the initial OAuth2 client (max 100 chars, alphanumeric with _ or -)
	ClientName string `json:"client_name"`

	// ClientScopes is the allow-list of the initial client
	ClientScopes []string `json:"client_scopes,omitempty"`

	// Scopes are registered before the client is created
	Scopes []ScopeDefinition `json:"scopes,omitempty"`

	// AdminUsername optionally creates a first user (3-32 chars, alphanumeric with _ or -)
	AdminUsername string `json:"admin_username,omitempty"`

	// AdminPassword is required with AdminUsername (8-128 chars)
	AdminPassword string `json:"admin_password,omitempty"`
}

// ScopeDefinition is a scope to register.
type ScopeDefinition struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Default     bool   `json:"default,omitempty"`
}

// BootstrapResponse contains the credentials of the created client.
type BootstrapResponse struct {
	ClientID string `json:"client_id"`

	// ClientSecret is the plaintext secret, only returned once
	ClientSecret string `json:"client_secret"`

	ClientScopes []string `json:"client_scopes"`

	// UserID is set when a first user was requested
	UserID string `json:"user_id,omitempty"`
}

// ============================================================================
// Client Types
// ============================================================================

// CreateClientRequest represents the request to create a new OAuth2 client.
type CreateClientRequest struct {
	// Name is the human-readable name for the client
	Name string `json:"name"`

	// Confidential creates a client with a generated secret, returned once.
	// Public clients cannot use the client_credentials grant.
	Confidential bool `json:"confidential"`

	// RedirectURIs are the absolute URIs the authorization endpoint may
	// redirect to. The first one is the default.
	RedirectURIs []string `json:"redirect_uris,omitempty"`

	// Scopes is the client's allow-list. When empty, the caller's own
	// scopes are used.
	Scopes []string `json:"scopes,omitempty"`
}

// CreateClientResponse contains the created client's ID and secret.
type CreateClientResponse struct {
	ClientID string `json:"client_id"`

	// ClientSecret is the plaintext secret (only returned once at creation).
	// Empty for public clients.
	ClientSecret string `json:"client_secret,omitempty"`
}

// ClientInfo represents information about an OAuth2 client.
type ClientInfo struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	RedirectURIs []string `json:"redirect_uris"`
	Scopes       []string `json:"scopes"`

	// HasSecret indicates whether this client has a secret (confidential client)
	HasSecret bool `json:"has_secret"`

	// CreatedAt is the timestamp when the client was created (RFC3339 format)
	CreatedAt string `json:"created_at"`
}

// ListClientsResponse contains a list of OAuth2 clients.
type ListClientsResponse struct {
	Clients []ClientInfo `json:"clients"`
}

// ============================================================================
// Scope Types
// ============================================================================

// ListScopesResponse contains the registered scopes.
type ListScopesResponse struct {
	Scopes []ScopeDefinition `json:"scopes"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse represents the response structure for health check endpoints.
// Used by both /livez and /readyz endpoints (readyz includes additional Checks field).
type HealthResponse struct {
	// Status indicates the overall health status (e.g., "ok")
	Status string `json:"status"`

	// Uptime is the service uptime duration as a string (e.g., "1h23m45s")
	Uptime string `json:"uptime,omitempty"`

	// Version is the service version string
	Version string `json:"version,omitempty"`

	// Checks contains readiness check results for critical dependencies (only for /readyz)
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks represents the status of critical service dependencies.
type HealthChecks struct {
	// Database indicates the token store status
	Database string `json:"database"`
}
