// Package linking drives the popup-based "connect a new service" flow as an
// explicit state machine. Every entry point that links a service goes through
// this one implementation.
package linking

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	apperrors "github.com/jrsteele09/go-assistant-auth/internal/errors"
	"github.com/jrsteele09/go-assistant-auth/provider"
	"github.com/jrsteele09/go-assistant-auth/services"
)

// State is one client-observable phase of a linking attempt.
type State string

const (
	StateIdle                     State = "idle"
	StateAwaitingPopup            State = "awaiting_popup"
	StateAwaitingProviderRedirect State = "awaiting_provider_redirect"
	StateAwaitingCompletionSignal State = "awaiting_completion_signal"
	StateSucceeded                State = "succeeded"
	StateFailed                   State = "failed"
	StateAbandoned                State = "abandoned"
)

// MessageType classifies a cross-window completion message.
type MessageType string

const (
	MessageAuthComplete MessageType = "AUTH_COMPLETE"
	MessageAuthError    MessageType = "AUTH_ERROR"
)

// CompletionMessage is what the popup's callback page posts to its opener.
type CompletionMessage struct {
	Type    MessageType  `json:"type"`
	Service services.Key `json:"service,omitempty"`
	Error   string       `json:"error,omitempty"`
}

// Popup is one opened top-level browsing context. Messages delivers the
// cross-window completion messages posted to the opener; the orchestrator
// listens exactly once per attempt.
type Popup interface {
	Closed() bool
	Close()
	Messages() <-chan CompletionMessage
}

// PopupLauncher opens a popup against the given URL. A browser-blocked popup
// returns ErrPopupBlocked.
type PopupLauncher interface {
	Open(url string) (Popup, error)
}

// SessionRefresher reconciles the session after a successful link.
type SessionRefresher interface {
	RefreshSession(ctx context.Context) error
}

// Result is the terminal outcome of one linking attempt. Abandoned is kept
// distinct from Failed for telemetry; externally both mean no service was
// connected.
type Result struct {
	State   State
	Service services.Key
	Err     error
}

const defaultPollInterval = 500 * time.Millisecond

// Orchestrator runs linking attempts. One attempt runs at a time per
// orchestrator; a retry is a fresh call to Link.
type Orchestrator struct {
	registry  *services.Registry
	idp       provider.IdentityProvider
	launcher  PopupLauncher
	refresher SessionRefresher
	log       zerolog.Logger

	baseScope    string // provider scope requested alongside link_account
	pollInterval time.Duration

	mu    sync.Mutex
	state State
}

// OrchestratorOption defines a function type to modify the Orchestrator instance.
type OrchestratorOption func(*Orchestrator)

// WithPollInterval sets how often the popup's closed flag is polled.
func WithPollInterval(interval time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		o.pollInterval = interval
	}
}

// WithBaseScope sets the provider scope requested on linking redirects.
func WithBaseScope(scope string) OrchestratorOption {
	return func(o *Orchestrator) {
		o.baseScope = scope
	}
}

// NewOrchestrator initializes a linking orchestrator.
func NewOrchestrator(registry *services.Registry, idp provider.IdentityProvider, launcher PopupLauncher, refresher SessionRefresher, log zerolog.Logger, options ...OrchestratorOption) (*Orchestrator, error) {
	if registry == nil {
		return nil, errors.New("[NewOrchestrator] registry is required")
	}
	if idp == nil {
		return nil, errors.New("[NewOrchestrator] identity provider is required")
	}
	if launcher == nil {
		return nil, errors.New("[NewOrchestrator] popup launcher is required")
	}
	if refresher == nil {
		return nil, errors.New("[NewOrchestrator] session refresher is required")
	}

	orchestrator := &Orchestrator{
		registry:     registry,
		idp:          idp,
		launcher:     launcher,
		refresher:    refresher,
		log:          log,
		baseScope:    "openid profile email offline_access",
		pollInterval: defaultPollInterval,
		state:        StateIdle,
	}
	for _, opt := range options {
		opt(orchestrator)
	}
	return orchestrator, nil
}

// State reports the current phase of the running attempt.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

func (o *Orchestrator) transition(next State) {
	o.mu.Lock()
	o.state = next
	o.mu.Unlock()
	o.log.Debug().Str("state", string(next)).Msg("linking state")
}

// Link runs one linking attempt for the given service and blocks until a
// terminal state. idTokenHint binds the new identity to the already
// authenticated primary identity. Re-linking an already-connected service is
// treated as re-authentication, not rejected.
func (o *Orchestrator) Link(ctx context.Context, key services.Key, idTokenHint string) Result {
	o.transition(StateAwaitingPopup)

	svc, ok := o.registry.Describe(key)
	if !ok {
		o.transition(StateFailed)
		return Result{State: StateFailed, Service: key, Err: apperrors.Wrapf(apperrors.ErrUnknownService, "link %s", key)}
	}

	linkURL, err := o.idp.StartInteractiveLogin(provider.LoginParams{
		RequestedConnection: svc.ConnectionID,
		IDTokenHint:         idTokenHint,
		Scope:               strings.TrimSpace(o.baseScope + " link_account"),
	})
	if err != nil {
		o.transition(StateFailed)
		return Result{State: StateFailed, Service: key, Err: errors.Wrap(err, "[Link] build linking URL")}
	}

	popup, err := o.launcher.Open(linkURL)
	if err != nil {
		// No automatic retry; the user must allow popups and start again.
		o.transition(StateFailed)
		return Result{State: StateFailed, Service: key, Err: apperrors.Wrapf(apperrors.ErrPopupBlocked, "link %s", key)}
	}

	o.transition(StateAwaitingProviderRedirect)
	return o.awaitCompletion(ctx, key, popup)
}

// awaitCompletion listens for the popup's completion message while polling
// its closed flag. Resolution is atomic: either the message was processed and
// the session reconciled, or nothing was registered.
func (o *Orchestrator) awaitCompletion(ctx context.Context, key services.Key, popup Popup) Result {
	o.transition(StateAwaitingCompletionSignal)

	ticker := time.NewTicker(o.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			popup.Close()
			o.transition(StateAbandoned)
			return Result{State: StateAbandoned, Service: key, Err: ctx.Err()}

		case msg, ok := <-popup.Messages():
			if !ok {
				continue
			}
			return o.resolveMessage(ctx, key, popup, msg)

		case <-ticker.C:
			if popup.Closed() {
				o.transition(StateAbandoned)
				o.log.Info().Str("service", string(key)).Msg("linking popup closed before completion")
				return Result{State: StateAbandoned, Service: key, Err: apperrors.ErrLinkingAbandoned}
			}
		}
	}
}

func (o *Orchestrator) resolveMessage(ctx context.Context, key services.Key, popup Popup, msg CompletionMessage) Result {
	switch msg.Type {
	case MessageAuthComplete:
		if msg.Service != "" && msg.Service != key {
			popup.Close()
			o.transition(StateFailed)
			return Result{State: StateFailed, Service: key, Err: errors.Errorf("[Link] completion for %s during %s attempt", msg.Service, key)}
		}
		if err := o.refresher.RefreshSession(ctx); err != nil {
			popup.Close()
			o.transition(StateFailed)
			return Result{State: StateFailed, Service: key, Err: errors.Wrap(err, "[Link] session refresh")}
		}
		popup.Close()
		o.transition(StateSucceeded)
		o.log.Info().Str("service", string(key)).Msg("service linked")
		return Result{State: StateSucceeded, Service: key}

	case MessageAuthError:
		popup.Close()
		o.transition(StateFailed)
		return Result{State: StateFailed, Service: key, Err: errors.Errorf("[Link] provider error: %s", msg.Error)}

	default:
		popup.Close()
		o.transition(StateFailed)
		return Result{State: StateFailed, Service: key, Err: errors.Errorf("[Link] unexpected completion message type %q", msg.Type)}
	}
}
