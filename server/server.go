package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-assistant-auth/internal/config"
	"github.com/jrsteele09/go-assistant-auth/provider"
	"github.com/jrsteele09/go-assistant-auth/server/linkstate"
	"github.com/jrsteele09/go-assistant-auth/services"
	"github.com/jrsteele09/go-assistant-auth/sessions"
)

type Server struct {
	env    string // Environment (e.g., "DEV", "production")
	mux    *http.ServeMux
	routes []string
	config config.Config
	log    zerolog.Logger

	registry   *services.Registry
	store      sessions.Store
	idp        provider.IdentityProvider
	reconciler *sessions.Reconciler
	flowStates linkstate.Repo
}

func New(cfg config.Config, registry *services.Registry, store sessions.Store, idp provider.IdentityProvider, flowStates linkstate.Repo, log zerolog.Logger) (*Server, error) {
	reconciler, err := sessions.NewReconciler(store, log)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create session reconciler: %w", err)
	}

	s := &Server{
		env:        cfg.Env,
		mux:        http.NewServeMux(),
		config:     cfg,
		log:        log,
		registry:   registry,
		store:      store,
		idp:        idp,
		reconciler: reconciler,
		flowStates: flowStates,
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			s.logRoute(parts[0], parts[1])
		} else {
			s.logRoute("", parts[0])
		}
	}
}

func (s *Server) logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	s.log.Debug().Msgf("[%-19s] %s", displayMethod, path)
}
