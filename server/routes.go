package server

func (s *Server) initRoutes() {
	// LOGIN
	s.RegisterRouteFunc("GET "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteAuthCallback, ChainMiddleware(s.CallbackHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteAuthMe, ChainMiddleware(s.MeHandler(), s.APIMiddleware()...))

	// SERVICE LINKING
	s.RegisterRouteFunc("GET "+RouteAuthLink, ChainMiddleware(s.LinkHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteAuthLinkCallback, ChainMiddleware(s.LinkCallbackHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("POST "+RouteAuthLinkSessionRefresh, ChainMiddleware(s.LinkSessionRefreshHandler(), s.APIMiddleware()...))
	s.RegisterRouteFunc("GET "+RouteAuthComplete, s.AuthCompleteHandler())

	// SERVICE STATUS
	s.RegisterRouteFunc("GET "+RouteServicesStatus, ChainMiddleware(s.ServicesStatusHandler(), s.APIMiddleware()...))
}
