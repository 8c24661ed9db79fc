package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/jrsteele09/go-assistant-auth/provider"
	"github.com/jrsteele09/go-assistant-auth/server/linkstate"
	"github.com/jrsteele09/go-assistant-auth/sessions"
)

// IdentityView is one linked credential as reported to the frontend.
type IdentityView struct {
	Connection string `json:"connection"`
	Provider   string `json:"provider"`
	UserID     string `json:"user_id"`
	Service    string `json:"service"`
	Social     bool   `json:"isSocial"`
}

// MeResponse describes the authenticated user.
type MeResponse struct {
	UserID            string         `json:"user_id"`
	Profile           map[string]any `json:"profile,omitempty"`
	Identities        []IdentityView `json:"identities"`
	ConnectedServices []string       `json:"connectedServices"`
}

// LoginHandler starts an interactive login round trip with the identity
// provider. The returnTo query parameter, if present, is remembered and the
// browser is sent there once the callback completes.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state := uuid.NewString()

		returnURL := r.URL.Query().Get("returnTo")
		if returnURL == "" {
			returnURL = "/"
		}

		if err := s.flowStates.Upsert(state, &linkstate.FlowState{
			ReturnURL: returnURL,
			CreatedAt: time.Now(),
		}); err != nil {
			s.log.Error().Err(err).Msg("[LoginHandler] failed to record flow state")
			writeJSONError(w, http.StatusInternalServerError, "failed to start login")
			return
		}

		redirectURL, err := s.idp.StartInteractiveLogin(provider.LoginParams{
			Scope: s.config.ProviderScope,
			State: state,
		})
		if err != nil {
			s.log.Error().Err(err).Msg("[LoginHandler] failed to build login redirect")
			writeJSONError(w, http.StatusInternalServerError, "failed to start login")
			return
		}

		http.Redirect(w, r, redirectURL, http.StatusFound)
	}
}

// CallbackHandler completes a login round trip: it exchanges the callback
// code, creates the session, and reconciles the session's identity list from
// the freshly issued identity token.
func (s *Server) CallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		state := query.Get("state")
		flowState, err := s.flowStates.Get(state)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "unknown or expired state")
			return
		}
		_ = s.flowStates.Delete(state)

		code := query.Get("code")
		if code == "" {
			writeJSONError(w, http.StatusBadRequest, "missing authorization code")
			return
		}

		result, err := s.idp.HandleCallback(r.Context(), code)
		if err != nil {
			s.log.Error().Err(err).Msg("[CallbackHandler] code exchange failed")
			writeJSONError(w, http.StatusBadGateway, "authentication failed")
			return
		}

		now := time.Now()
		sess := &sessions.Session{
			ID:        uuid.NewString(),
			UserID:    result.Subject,
			TokenSet:  result.TokenSet,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.store.Set(r.Context(), sess.ID, sess); err != nil {
			s.log.Error().Err(err).Msg("[CallbackHandler] failed to persist session")
			writeJSONError(w, http.StatusInternalServerError, "failed to create session")
			return
		}

		if _, err := s.reconciler.ReconcileAfterCallback(r.Context(), sess.ID, result.RawIDToken); err != nil {
			s.log.Error().Err(err).Str("session_id", sess.ID).Msg("[CallbackHandler] session reconciliation failed")
			writeJSONError(w, http.StatusInternalServerError, "failed to establish session")
			return
		}

		s.setSessionCookie(w, sess.ID)
		http.Redirect(w, r, flowState.ReturnURL, http.StatusFound)
	}
}

// LogoutHandler deletes the session and clears the cookie. Logging out while
// already logged out is a no-op.
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
			if err := s.store.Delete(r.Context(), cookie.Value); err != nil {
				s.log.Warn().Err(err).Msg("[LogoutHandler] failed to delete session")
			}
		}
		s.clearSessionCookie(w)
		http.Redirect(w, r, "/", http.StatusFound)
	}
}

// MeHandler describes the authenticated user: profile, linked identities, and
// the derived set of connected services.
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.sessionFromRequest(r)
		if err != nil {
			s.log.Error().Err(err).Msg("[MeHandler] session lookup failed")
			writeJSONError(w, http.StatusInternalServerError, "failed to load session")
			return
		}
		if sess == nil {
			writeJSONError(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		identities := make([]IdentityView, 0, len(sess.Identities))
		for _, id := range sess.Identities {
			serviceName := "service not implemented"
			if svc, ok := s.registry.Lookup(id.Connection); ok {
				serviceName = svc.DisplayName
			}
			identities = append(identities, IdentityView{
				Connection: id.Connection,
				Provider:   id.Provider,
				UserID:     id.UserID,
				Service:    serviceName,
				Social:     id.Social,
			})
		}

		connected := sessions.ResolveConnectedServices(sess, s.registry)
		connectedServices := make([]string, 0, len(connected))
		for _, svc := range s.registry.All() {
			if _, ok := connected[svc.Key]; ok {
				connectedServices = append(connectedServices, string(svc.Key))
			}
		}

		writeJSON(w, http.StatusOK, MeResponse{
			UserID:            sess.UserID,
			Profile:           sess.Profile,
			Identities:        identities,
			ConnectedServices: connectedServices,
		})
	}
}

// LinkSessionRefreshHandler re-reads the user's identity claims from the
// provider and reconciles them into the session. The frontend calls it after
// a linking popup signals completion, so the next status read reflects the
// newly linked service.
func (s *Server) LinkSessionRefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.sessionFromRequest(r)
		if err != nil {
			s.log.Error().Err(err).Msg("[LinkSessionRefreshHandler] session lookup failed")
			writeJSONError(w, http.StatusInternalServerError, "failed to load session")
			return
		}
		if sess == nil {
			writeJSONError(w, http.StatusUnauthorized, "no active session")
			return
		}

		rawIDToken, err := s.idp.RefreshIdentityToken(r.Context(), sess.TokenSet.RefreshToken)
		if err != nil {
			s.log.Error().Err(err).Str("session_id", sess.ID).Msg("[LinkSessionRefreshHandler] identity token refresh failed")
			writeJSONError(w, http.StatusBadGateway, "failed to refresh session")
			return
		}

		updated, err := s.reconciler.ReconcileAfterCallback(r.Context(), sess.ID, rawIDToken)
		if err != nil {
			s.log.Error().Err(err).Str("session_id", sess.ID).Msg("[LinkSessionRefreshHandler] session reconciliation failed")
			writeJSONError(w, http.StatusInternalServerError, "failed to refresh session")
			return
		}

		connected := sessions.ResolveConnectedServices(updated, s.registry)
		active := make([]string, 0, len(connected))
		for _, svc := range s.registry.All() {
			if _, ok := connected[svc.Key]; ok {
				active = append(active, string(svc.Key))
			}
		}

		writeJSON(w, http.StatusOK, ServicesStatusResponse{ActiveServices: active})
	}
}
