// Package provider defines the identity-provider collaborator this core
// consumes: interactive login, callback handling, and federated token
// exchange. Protocol details belong to the provider, not to this core.
package provider

import (
	"context"
	"time"

	"github.com/jrsteele09/go-assistant-auth/sessions"
)

// LoginParams parameterizes an interactive login or linking redirect.
type LoginParams struct {
	// Connection forces authentication against one provider connection.
	Connection string
	// RequestedConnection asks the provider to link the named connection to
	// the already-authenticated account instead of starting a fresh login.
	RequestedConnection string
	// IDTokenHint binds a linking flow to the existing primary identity so
	// the provider does not mint a disjoint account.
	IDTokenHint string
	// Scope overrides the configured default scope when non-empty.
	Scope string
	// State is the opaque round-trip value echoed back on the callback.
	State string
	// ReturnTo is where the provider sends the browser after completion.
	ReturnTo string
}

// CallbackResult is the outcome of exchanging a callback code.
type CallbackResult struct {
	Subject    string
	RawIDToken string
	TokenSet   sessions.TokenSet
}

// ConnectionToken is a bearer credential scoped to one external API.
type ConnectionToken struct {
	Token     string
	ExpiresIn time.Duration
}

// IdentityProvider is the external identity provider. Implementations map
// provider-specific errors onto this core's taxonomy: an unlinked connection
// surfaces as internal/errors.ErrNotLinked from GetAccessTokenForConnection.
type IdentityProvider interface {
	// StartInteractiveLogin builds the redirect URL for a login or linking
	// round trip.
	StartInteractiveLogin(params LoginParams) (string, error)

	// HandleCallback exchanges the authorization code from a provider
	// redirect and verifies the issued identity token.
	HandleCallback(ctx context.Context, code string) (*CallbackResult, error)

	// GetAccessTokenForConnection performs the federated token exchange for
	// one connection id.
	GetAccessTokenForConnection(ctx context.Context, connectionID string) (ConnectionToken, error)

	// RefreshIdentityToken mints a freshly issued identity token from a
	// refresh token, so reconciliation can observe claims updated since
	// login (a linking flow completed in another tab, re-consent, ...).
	RefreshIdentityToken(ctx context.Context, refreshToken string) (string, error)
}
