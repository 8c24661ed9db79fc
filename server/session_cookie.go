package server

import (
	"net/http"

	apperrors "github.com/jrsteele09/go-assistant-auth/internal/errors"
	"github.com/jrsteele09/go-assistant-auth/sessions"
)

const sessionCookieName = "assistant_session"

func (s *Server) setSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   !s.config.IsDev(),
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   !s.config.IsDev(),
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionFromRequest resolves the current session from the request cookie.
// A missing cookie or a session that has been deleted resolves to (nil, nil).
func (s *Server) sessionFromRequest(r *http.Request) (*sessions.Session, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, nil
	}

	sess, err := s.store.Get(r.Context(), cookie.Value)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrSessionNotFound) {
			return nil, nil
		}
		return nil, apperrors.Wrapf(err, "[Server sessionFromRequest] failed to load session")
	}
	return sess, nil
}
