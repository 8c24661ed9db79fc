package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes - Login & Logout
	RouteAuthLogin    = "/auth/login"
	RouteAuthCallback = "/auth/callback"
	RouteAuthLogout   = "/auth/logout"
	RouteAuthMe       = "/auth/me"

	// Auth Routes - Service Linking
	RouteAuthLink               = "/auth/link"
	RouteAuthLinkCallback       = "/auth/link-callback"
	RouteAuthLinkSessionRefresh = "/auth/link-session-refresh"
	RouteAuthComplete           = "/auth-complete.html"

	// Service Status
	RouteServicesStatus = "/services/status"
)
