package agenttools_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-assistant-auth/agenttools"
	"github.com/jrsteele09/go-assistant-auth/services"
)

func TestAvailableEmptyConnectedSet(t *testing.T) {
	available := agenttools.Available(map[services.Key]struct{}{}, agenttools.Catalog())

	// Only the service-independent tools survive.
	require.Len(t, available, 2)
	for _, tool := range available {
		require.False(t, tool.RequiresService())
	}
}

func TestAvailableFiltersByService(t *testing.T) {
	connected := map[services.Key]struct{}{
		services.Microsoft: {},
	}

	available := agenttools.Available(connected, agenttools.Catalog())

	for _, tool := range available {
		if tool.RequiresService() {
			require.Equal(t, services.Microsoft, tool.Service)
		}
	}

	names := make([]string, 0, len(available))
	for _, tool := range available {
		names = append(names, tool.Name)
	}
	require.Contains(t, names, "microsoft-mail-read")
	require.Contains(t, names, "service-status")
	require.NotContains(t, names, "google-mail-read")
	require.NotContains(t, names, "salesforce-query")
}

func TestAvailableAllConnected(t *testing.T) {
	connected := map[services.Key]struct{}{
		services.Microsoft:  {},
		services.Google:     {},
		services.Salesforce: {},
	}

	available := agenttools.Available(connected, agenttools.Catalog())
	require.Len(t, available, len(agenttools.Catalog()))
}
