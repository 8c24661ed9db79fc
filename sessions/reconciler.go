package sessions

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-assistant-auth/identity"
	apperrors "github.com/jrsteele09/go-assistant-auth/internal/errors"
)

// Reconciler merges freshly issued identity-provider claims into the
// persisted session after every provider round trip: initial login, a
// linking-popup callback, or an explicit session refresh.
type Reconciler struct {
	store   Store
	log     zerolog.Logger
	nowTime func() time.Time // nowTime function (injectable for testing)
}

// ReconcilerOption defines a function type to modify the Reconciler instance.
type ReconcilerOption func(*Reconciler)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ReconcilerOption {
	return func(r *Reconciler) {
		r.nowTime = nowFunc
	}
}

// NewReconciler initializes a Reconciler over the given session store.
func NewReconciler(store Store, log zerolog.Logger, options ...ReconcilerOption) (*Reconciler, error) {
	if store == nil {
		return nil, errors.New("[NewReconciler] session store is required")
	}

	reconciler := &Reconciler{
		store:   store,
		log:     log,
		nowTime: time.Now,
	}
	for _, opt := range options {
		opt(reconciler)
	}
	return reconciler, nil
}

// ReconcileAfterCallback replaces the stored session's identity list with the
// claims decoded from rawIDToken, overlaying the fresh profile fields onto the
// existing ones. The replacement is a single whole-session write: readers see
// either the old session or the new one, never a mix.
//
// Reconciliation only updates — a missing session is ErrNoActiveSession. A
// token whose claims cannot be decoded degrades to an empty identity list
// with a logged warning; login must still succeed when enrichment fails.
func (r *Reconciler) ReconcileAfterCallback(ctx context.Context, sessionID, rawIDToken string) (*Session, error) {
	existing, err := r.store.Get(ctx, sessionID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrSessionNotFound) {
			return nil, apperrors.ErrNoActiveSession
		}
		return nil, errors.Wrap(err, "[ReconcileAfterCallback] store.Get")
	}

	claims, err := identity.DecodeIdentityClaims(rawIDToken)
	if err != nil {
		r.log.Warn().Err(err).Str("session_id", sessionID).Msg("identity claims decode failed, continuing with empty identity list")
	}

	next := r.merge(existing, claims, rawIDToken)
	if err := r.store.Set(ctx, sessionID, next); err != nil {
		return nil, errors.Wrap(err, "[ReconcileAfterCallback] store.Set")
	}

	return next, nil
}

// merge builds the replacement session: existing profile fields overlaid with
// the freshly decoded ones, identity list replaced outright.
func (r *Reconciler) merge(existing *Session, claims identity.Claims, rawIDToken string) *Session {
	profile := make(map[string]any, len(existing.Profile)+len(claims.Profile))
	for k, v := range existing.Profile {
		profile[k] = v
	}
	for k, v := range claims.Profile {
		profile[k] = v
	}

	identities := make([]identity.Identity, len(claims.Identities))
	copy(identities, claims.Identities)

	tokenSet := existing.TokenSet
	tokenSet.IDToken = rawIDToken

	return &Session{
		ID:         existing.ID,
		UserID:     existing.UserID,
		Identities: identities,
		TokenSet:   tokenSet,
		Profile:    profile,
		CreatedAt:  existing.CreatedAt,
		UpdatedAt:  r.nowTime(),
	}
}
