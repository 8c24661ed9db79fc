package linking_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jrsteele09/go-assistant-auth/internal/errors"
	"github.com/jrsteele09/go-assistant-auth/linking"
	"github.com/jrsteele09/go-assistant-auth/provider/providerfakes"
	"github.com/jrsteele09/go-assistant-auth/services"
)

type fakePopup struct {
	mu       sync.Mutex
	closed   bool
	messages chan linking.CompletionMessage
}

func newFakePopup() *fakePopup {
	return &fakePopup{messages: make(chan linking.CompletionMessage, 1)}
}

func (p *fakePopup) Closed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *fakePopup) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

func (p *fakePopup) Messages() <-chan linking.CompletionMessage {
	return p.messages
}

func (p *fakePopup) post(msg linking.CompletionMessage) {
	p.messages <- msg
}

type fakeLauncher struct {
	popup   *fakePopup
	openErr error
	lastURL string
}

func (l *fakeLauncher) Open(url string) (linking.Popup, error) {
	l.lastURL = url
	if l.openErr != nil {
		return nil, l.openErr
	}
	return l.popup, nil
}

type fakeRefresher struct {
	err   error
	calls int
}

func (r *fakeRefresher) RefreshSession(_ context.Context) error {
	r.calls++
	return r.err
}

func newOrchestratorForTest(t *testing.T, launcher *fakeLauncher, refresher *fakeRefresher, options ...linking.OrchestratorOption) *linking.Orchestrator {
	t.Helper()
	orchestrator, err := linking.NewOrchestrator(
		services.DefaultRegistry(),
		providerfakes.NewFakeIdentityProvider(),
		launcher,
		refresher,
		zerolog.Nop(),
		options...,
	)
	require.NoError(t, err)
	return orchestrator
}

func TestLinkSucceeds(t *testing.T) {
	popup := newFakePopup()
	launcher := &fakeLauncher{popup: popup}
	refresher := &fakeRefresher{}
	orchestrator := newOrchestratorForTest(t, launcher, refresher)

	popup.post(linking.CompletionMessage{Type: linking.MessageAuthComplete, Service: services.Microsoft})

	result := orchestrator.Link(context.Background(), services.Microsoft, "id-token-hint")

	require.Equal(t, linking.StateSucceeded, result.State)
	require.NoError(t, result.Err)
	require.Equal(t, 1, refresher.calls)
	require.True(t, popup.Closed())
	require.Contains(t, launcher.lastURL, "requested_connection=windowslive")
	require.Contains(t, launcher.lastURL, "link_account")
}

func TestLinkUnknownService(t *testing.T) {
	orchestrator := newOrchestratorForTest(t, &fakeLauncher{popup: newFakePopup()}, &fakeRefresher{})

	result := orchestrator.Link(context.Background(), "github", "hint")

	require.Equal(t, linking.StateFailed, result.State)
	require.ErrorIs(t, result.Err, apperrors.ErrUnknownService)
}

func TestLinkPopupBlocked(t *testing.T) {
	launcher := &fakeLauncher{openErr: errors.New("blocked")}
	refresher := &fakeRefresher{}
	orchestrator := newOrchestratorForTest(t, launcher, refresher)

	result := orchestrator.Link(context.Background(), services.Google, "hint")

	require.Equal(t, linking.StateFailed, result.State)
	require.ErrorIs(t, result.Err, apperrors.ErrPopupBlocked)
	require.Zero(t, refresher.calls)
}

func TestLinkProviderError(t *testing.T) {
	popup := newFakePopup()
	refresher := &fakeRefresher{}
	orchestrator := newOrchestratorForTest(t, &fakeLauncher{popup: popup}, refresher)

	popup.post(linking.CompletionMessage{Type: linking.MessageAuthError, Error: "access_denied"})

	result := orchestrator.Link(context.Background(), services.Salesforce, "hint")

	require.Equal(t, linking.StateFailed, result.State)
	require.ErrorContains(t, result.Err, "access_denied")
	require.Zero(t, refresher.calls)
	require.True(t, popup.Closed())
}

func TestLinkAbandonedWhenPopupClosed(t *testing.T) {
	popup := newFakePopup()
	refresher := &fakeRefresher{}
	orchestrator := newOrchestratorForTest(t, &fakeLauncher{popup: popup}, refresher, linking.WithPollInterval(time.Millisecond))

	popup.Close()

	result := orchestrator.Link(context.Background(), services.Microsoft, "hint")

	require.Equal(t, linking.StateAbandoned, result.State)
	require.ErrorIs(t, result.Err, apperrors.ErrLinkingAbandoned)
	require.Zero(t, refresher.calls)
}

func TestLinkContextCancelled(t *testing.T) {
	popup := newFakePopup()
	orchestrator := newOrchestratorForTest(t, &fakeLauncher{popup: popup}, &fakeRefresher{}, linking.WithPollInterval(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := orchestrator.Link(ctx, services.Microsoft, "hint")

	require.Equal(t, linking.StateAbandoned, result.State)
	require.ErrorIs(t, result.Err, context.Canceled)
	require.True(t, popup.Closed())
}

func TestLinkServiceMismatch(t *testing.T) {
	popup := newFakePopup()
	refresher := &fakeRefresher{}
	orchestrator := newOrchestratorForTest(t, &fakeLauncher{popup: popup}, refresher)

	popup.post(linking.CompletionMessage{Type: linking.MessageAuthComplete, Service: services.Google})

	result := orchestrator.Link(context.Background(), services.Microsoft, "hint")

	require.Equal(t, linking.StateFailed, result.State)
	require.Zero(t, refresher.calls)
}

func TestLinkSessionRefreshFailure(t *testing.T) {
	popup := newFakePopup()
	refresher := &fakeRefresher{err: errors.New("store unavailable")}
	orchestrator := newOrchestratorForTest(t, &fakeLauncher{popup: popup}, refresher)

	popup.post(linking.CompletionMessage{Type: linking.MessageAuthComplete, Service: services.Microsoft})

	result := orchestrator.Link(context.Background(), services.Microsoft, "hint")

	require.Equal(t, linking.StateFailed, result.State)
	require.ErrorContains(t, result.Err, "session refresh")
}
