/*
Package authsdk provides a client SDK for the grantd OAuth2 authorization server.

# SDKClient vs Session

The package is organized around two main types:

  - SDKClient: Provides unauthenticated operations and creates authenticated sessions
  - Session: Provides authenticated operations with automatic token refresh

Create an SDKClient to interact with public endpoints and initiate authentication flows:

	client := authsdk.NewSDKClient("https://auth.example.com")

	// Check service health
	health, err := client.GetLiveness(ctx)

	// Bootstrap the service (one-time setup)
	bootstrap, err := client.Bootstrap(ctx, token, req)

	// Authenticate to create a session
	creds := authsdk.ClientCredentials{ID: bootstrap.ClientID, Secret: bootstrap.ClientSecret}
	session, err := client.AuthenticateWithClientCredentials(ctx, creds, nil)

Use a Session for authenticated operations:

	// Register a client (requires clients:write)
	created, err := session.CreateClient(ctx, authsdk.CreateClientRequest{Name: "web", Confidential: true})

	// List clients (requires clients:read)
	clients, err := session.ListClients(ctx)

# Client Authentication

ClientCredentials with a Secret are sent with HTTP Basic authentication.
Without a secret only client_id is sent, which is how public clients
identify themselves.

# Grants

	client.ClientCredentialsGrant(ctx, creds, scopes)
	client.PasswordGrant(ctx, creds, username, password, scopes)
	client.RefreshGrant(ctx, creds, refreshToken)
	client.ExchangeAuthorizationCode(ctx, creds, code, redirectURI)

The authorization code is obtained on behalf of a user holding an access
token:

	code, err := client.AuthorizationCode(ctx, userAccessToken, authsdk.AuthorizeRequest{
		ClientID: "web",
		State:    state,
	})

# Automatic Token Refresh

Sessions renew the access token 30 seconds before it expires: with the
refresh token when there is one, otherwise by repeating the client
credentials grant. Tokens without an expires_in never expire.

# Error Handling

Every error answered by the server is an *OAuth2Error carrying the HTTP
status and the RFC 6749 error code:

	_, err := client.RefreshGrant(ctx, creds, rt)
	if authsdk.IsOAuth2Error(err, authsdk.ErrorCodeInvalidGrant) {
		// log in again
	}

# Thread Safety

Sessions are safe for concurrent use. Multiple goroutines can share a single
Session and make authenticated requests concurrently.
*/
package authsdk
