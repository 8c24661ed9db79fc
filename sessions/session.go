// Package sessions holds the authenticated user's working state and the
// operations that mutate it. A session is replaced wholesale on every
// reconciliation — there is no field-level patching, so concurrent writers
// resolve last-write-wins at the granularity of the full session.
package sessions

import (
	"context"
	"time"

	"github.com/jrsteele09/go-assistant-auth/identity"
)

// TokenSet is the raw identity-provider token material carried in a session.
// Opaque to this core beyond expiry and refresh semantics.
type TokenSet struct {
	IDToken      string    `json:"id_token,omitempty"`
	AccessToken  string    `json:"access_token,omitempty"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at,omitempty"`
}

// Session is one browser session's authenticated state. Exactly one session
// is authoritative per browser context; the store is the source of truth and
// callers must re-fetch after any reconciliation rather than trusting a
// locally held copy.
type Session struct {
	ID         string              `json:"id"`
	UserID     string              `json:"user_id"` // primary identifier, e.g. "auth0|abc123"
	Identities []identity.Identity `json:"identities"`
	TokenSet   TokenSet            `json:"token_set"`
	Profile    map[string]any      `json:"profile,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// Store is the durable keyed session storage, external to this core.
// Implementations return ErrSessionNotFound from internal/errors when the id
// is absent.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Set(ctx context.Context, id string, session *Session) error
	Delete(ctx context.Context, id string) error
}
