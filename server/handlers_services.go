package server

import (
	"net/http"

	"github.com/jrsteele09/go-assistant-auth/sessions"
)

// ServicesStatusResponse lists the services the current session has linked,
// in registry order.
type ServicesStatusResponse struct {
	ActiveServices []string `json:"activeServices"`
}

// ServicesStatusHandler reports which services the current session covers.
// It always answers 200: an anonymous visitor simply has no active services.
func (s *Server) ServicesStatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.sessionFromRequest(r)
		if err != nil {
			s.log.Error().Err(err).Msg("[ServicesStatusHandler] session lookup failed")
			writeJSONError(w, http.StatusInternalServerError, "failed to load session")
			return
		}

		connected := sessions.ResolveConnectedServices(sess, s.registry)

		active := make([]string, 0, len(connected))
		for _, svc := range s.registry.All() {
			if _, ok := connected[svc.Key]; ok {
				active = append(active, string(svc.Key))
			}
		}

		writeJSON(w, http.StatusOK, ServicesStatusResponse{ActiveServices: active})
	}
}
