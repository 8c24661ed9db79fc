package linkstate_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-assistant-auth/server/linkstate"
	"github.com/jrsteele09/go-assistant-auth/services"
)

func TestInMemoryRepoRoundTrip(t *testing.T) {
	repo := linkstate.NewInMemoryRepo()

	original := &linkstate.FlowState{
		SessionID: "sess-1",
		Service:   services.Microsoft,
		ReturnURL: "/chat",
		CreatedAt: time.Now(),
	}
	require.NoError(t, repo.Upsert("state-1", original))

	got, err := repo.Get("state-1")
	require.NoError(t, err)
	require.Equal(t, original.SessionID, got.SessionID)
	require.Equal(t, original.Service, got.Service)

	// Mutating the returned copy must not affect the stored state.
	got.SessionID = "tampered"
	again, err := repo.Get("state-1")
	require.NoError(t, err)
	require.Equal(t, "sess-1", again.SessionID)
}

func TestInMemoryRepoDelete(t *testing.T) {
	repo := linkstate.NewInMemoryRepo()
	require.NoError(t, repo.Upsert("state-1", &linkstate.FlowState{SessionID: "sess-1"}))

	require.NoError(t, repo.Delete("state-1"))

	_, err := repo.Get("state-1")
	require.Error(t, err)
}

func TestInMemoryRepoValidation(t *testing.T) {
	repo := linkstate.NewInMemoryRepo()

	require.Error(t, repo.Upsert("", &linkstate.FlowState{}))
	require.Error(t, repo.Upsert("state-1", nil))

	_, err := repo.Get("")
	require.Error(t, err)
}
