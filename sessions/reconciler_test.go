package sessions_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-assistant-auth/identity"
	apperrors "github.com/jrsteele09/go-assistant-auth/internal/errors"
	"github.com/jrsteele09/go-assistant-auth/services"
	"github.com/jrsteele09/go-assistant-auth/sessions"
	"github.com/jrsteele09/go-assistant-auth/sessions/repofakes"
)

func buildIDToken(t *testing.T, claims map[string]any) string {
	t.Helper()

	header, err := json.Marshal(map[string]string{"alg": "none", "typ": "JWT"})
	require.NoError(t, err)
	payload, err := json.Marshal(claims)
	require.NoError(t, err)

	encode := base64.RawURLEncoding.EncodeToString
	return encode(header) + "." + encode(payload) + "."
}

func newReconcilerForTest(t *testing.T, store sessions.Store, now time.Time) *sessions.Reconciler {
	t.Helper()
	reconciler, err := sessions.NewReconciler(store, zerolog.Nop(), sessions.WithNowTime(func() time.Time { return now }))
	require.NoError(t, err)
	return reconciler
}

func TestReconcileAfterCallback(t *testing.T) {
	store := repofakes.NewFakeSessionStore()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	reconciler := newReconcilerForTest(t, store, now)

	err := store.Set(context.Background(), "sess-1", &sessions.Session{
		UserID:   "auth0|abc123",
		Profile:  map[string]any{"name": "Ada Lovelace", "locale": "en"},
		TokenSet: sessions.TokenSet{RefreshToken: "refresh-1"},
	})
	require.NoError(t, err)

	token := buildIDToken(t, map[string]any{
		"sub":  "auth0|abc123",
		"name": "Ada L.",
		"connected_services": []any{
			map[string]any{"connection": "auth0", "provider": "auth0", "user_id": "abc123"},
			map[string]any{"connection": "windowslive", "provider": "windowslive", "user_id": "ms-9", "isSocial": true},
		},
	})

	updated, err := reconciler.ReconcileAfterCallback(context.Background(), "sess-1", token)
	require.NoError(t, err)

	// Identity list replaced, profile overlaid, refresh token untouched.
	require.Len(t, updated.Identities, 2)
	require.Equal(t, "Ada L.", updated.Profile["name"])
	require.Equal(t, "en", updated.Profile["locale"])
	require.Equal(t, "refresh-1", updated.TokenSet.RefreshToken)
	require.Equal(t, token, updated.TokenSet.IDToken)
	require.Equal(t, now, updated.UpdatedAt)

	connected := sessions.ResolveConnectedServices(updated, services.DefaultRegistry())
	require.Contains(t, connected, services.Microsoft)

	// The store holds the replacement, not just the returned copy.
	stored, err := store.Get(context.Background(), "sess-1")
	require.NoError(t, err)
	require.Len(t, stored.Identities, 2)
}

func TestReconcileAfterCallbackMissingSession(t *testing.T) {
	store := repofakes.NewFakeSessionStore()
	reconciler := newReconcilerForTest(t, store, time.Now())

	_, err := reconciler.ReconcileAfterCallback(context.Background(), "missing", buildIDToken(t, map[string]any{"sub": "x"}))
	require.ErrorIs(t, err, apperrors.ErrNoActiveSession)
}

func TestReconcileAfterCallbackMalformedTokenDegrades(t *testing.T) {
	store := repofakes.NewFakeSessionStore()
	reconciler := newReconcilerForTest(t, store, time.Now())

	err := store.Set(context.Background(), "sess-1", &sessions.Session{
		UserID: "auth0|abc123",
		Identities: []identity.Identity{
			{Connection: "windowslive", Provider: "windowslive", UserID: "ms-9"},
		},
	})
	require.NoError(t, err)

	updated, err := reconciler.ReconcileAfterCallback(context.Background(), "sess-1", "not-a-token")
	require.NoError(t, err)
	require.Empty(t, updated.Identities)
}

func TestReconcileAfterCallbackWholeSessionReplacement(t *testing.T) {
	store := repofakes.NewFakeSessionStore()
	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	reconciler := newReconcilerForTest(t, store, now)

	created := now.Add(-time.Hour)
	err := store.Set(context.Background(), "sess-1", &sessions.Session{
		UserID:    "auth0|abc123",
		CreatedAt: created,
		UpdatedAt: created,
	})
	require.NoError(t, err)

	token := buildIDToken(t, map[string]any{"sub": "auth0|abc123"})
	updated, err := reconciler.ReconcileAfterCallback(context.Background(), "sess-1", token)
	require.NoError(t, err)

	require.Equal(t, "auth0|abc123", updated.UserID)
	require.Equal(t, created, updated.CreatedAt)
	require.Equal(t, now, updated.UpdatedAt)
}
