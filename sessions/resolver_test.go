package sessions_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-assistant-auth/identity"
	"github.com/jrsteele09/go-assistant-auth/services"
	"github.com/jrsteele09/go-assistant-auth/sessions"
)

func TestResolveConnectedServicesNilSession(t *testing.T) {
	connected := sessions.ResolveConnectedServices(nil, services.DefaultRegistry())
	require.Empty(t, connected)
}

func TestResolveConnectedServices(t *testing.T) {
	sess := &sessions.Session{
		UserID: "auth0|abc123",
		Identities: []identity.Identity{
			{Connection: "auth0", Provider: "auth0", UserID: "abc123"},
			{Connection: "windowslive", Provider: "windowslive", UserID: "ms-9"},
			{Connection: "salesforce-dev", Provider: "salesforce", UserID: "sf-1"},
		},
	}

	connected := sessions.ResolveConnectedServices(sess, services.DefaultRegistry())

	require.Len(t, connected, 2)
	require.Contains(t, connected, services.Microsoft)
	require.Contains(t, connected, services.Salesforce)
	require.NotContains(t, connected, services.Google)
}

func TestResolveConnectedServicesExcludesPrimaryIdentity(t *testing.T) {
	// The login credential itself shares the user id suffix; it must not count
	// as a connected service even if its connection happens to be registered.
	registry := services.NewRegistry(
		services.Service{Key: services.Google, ConnectionID: "google-oauth2"},
	)
	sess := &sessions.Session{
		UserID: "google-oauth2|g-1",
		Identities: []identity.Identity{
			{Connection: "google-oauth2", Provider: "google-oauth2", UserID: "g-1"},
		},
	}

	connected := sessions.ResolveConnectedServices(sess, registry)
	require.Empty(t, connected)
}

func TestResolveConnectedServicesDropsUnregisteredConnections(t *testing.T) {
	sess := &sessions.Session{
		UserID: "auth0|abc123",
		Identities: []identity.Identity{
			{Connection: "github", Provider: "github", UserID: "gh-1"},
		},
	}

	connected := sessions.ResolveConnectedServices(sess, services.DefaultRegistry())
	require.Empty(t, connected)
}
