package server

import (
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/jrsteele09/go-assistant-auth/provider"
	"github.com/jrsteele09/go-assistant-auth/server/linkstate"
	"github.com/jrsteele09/go-assistant-auth/services"
)

// LinkHandler starts a linking round trip for one service. The browser opens
// this route in a popup; the provider authenticates the target connection and
// redirects the popup to the link callback. The id_token_hint binds the flow
// to the already-authenticated primary identity so the provider attaches the
// new credential to the same account.
func (s *Server) LinkHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.sessionFromRequest(r)
		if err != nil {
			s.log.Error().Err(err).Msg("[LinkHandler] session lookup failed")
			writeJSONError(w, http.StatusInternalServerError, "failed to load session")
			return
		}
		if sess == nil {
			writeJSONError(w, http.StatusUnauthorized, "no active session")
			return
		}

		svc, ok := s.lookupService(r.URL.Query().Get("connection"))
		if !ok {
			writeJSONError(w, http.StatusBadRequest, "unknown connection")
			return
		}

		state := uuid.NewString()
		if err := s.flowStates.Upsert(state, &linkstate.FlowState{
			SessionID: sess.ID,
			Service:   svc.Key,
			CreatedAt: time.Now(),
		}); err != nil {
			s.log.Error().Err(err).Msg("[LinkHandler] failed to record flow state")
			writeJSONError(w, http.StatusInternalServerError, "failed to start linking")
			return
		}

		redirectURL, err := s.idp.StartInteractiveLogin(provider.LoginParams{
			RequestedConnection: svc.ConnectionID,
			IDTokenHint:         sess.TokenSet.IDToken,
			Scope:               s.config.ProviderScope + " link_account",
			State:               state,
			ReturnTo:            s.config.BaseURL + RouteAuthLinkCallback,
		})
		if err != nil {
			s.log.Error().Err(err).Str("connection", svc.ConnectionID).Msg("[LinkHandler] failed to build linking redirect")
			writeJSONError(w, http.StatusInternalServerError, "failed to start linking")
			return
		}

		http.Redirect(w, r, redirectURL, http.StatusFound)
	}
}

// LinkCallbackHandler completes a linking round trip inside the popup. Every
// outcome, success or failure, ends with a redirect to the completion page so
// the popup can signal the opener and close itself.
func (s *Server) LinkCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()

		if providerError := query.Get("error"); providerError != "" {
			message := query.Get("error_description")
			if message == "" {
				message = providerError
			}
			s.redirectToCompletion(w, r, completionParams{status: "error", message: message})
			return
		}

		state := query.Get("state")
		flowState, err := s.flowStates.Get(state)
		if err != nil {
			s.redirectToCompletion(w, r, completionParams{status: "error", message: "unknown or expired linking state"})
			return
		}
		_ = s.flowStates.Delete(state)

		code := query.Get("code")
		if code == "" {
			s.redirectToCompletion(w, r, completionParams{status: "error", message: "missing authorization code"})
			return
		}

		result, err := s.idp.HandleCallback(r.Context(), code)
		if err != nil {
			s.log.Error().Err(err).Msg("[LinkCallbackHandler] code exchange failed")
			s.redirectToCompletion(w, r, completionParams{status: "error", message: "authentication failed"})
			return
		}

		if _, err := s.reconciler.ReconcileAfterCallback(r.Context(), flowState.SessionID, result.RawIDToken); err != nil {
			s.log.Error().Err(err).Str("session_id", flowState.SessionID).Msg("[LinkCallbackHandler] session reconciliation failed")
			s.redirectToCompletion(w, r, completionParams{status: "error", message: "failed to update session"})
			return
		}

		s.redirectToCompletion(w, r, completionParams{status: "success", service: flowState.Service})
	}
}

type completionParams struct {
	status  string
	service services.Key
	message string
}

func (s *Server) redirectToCompletion(w http.ResponseWriter, r *http.Request, params completionParams) {
	values := url.Values{}
	values.Set("status", params.status)
	if params.service != "" {
		values.Set("service", string(params.service))
	}
	if params.message != "" {
		values.Set("message", params.message)
	}
	http.Redirect(w, r, RouteAuthComplete+"?"+values.Encode(), http.StatusFound)
}

// lookupService accepts either a provider connection id ("windowslive") or a
// service key ("microsoft").
func (s *Server) lookupService(name string) (services.Service, bool) {
	if svc, ok := s.registry.Lookup(name); ok {
		return svc, true
	}
	return s.registry.Describe(services.Key(name))
}
