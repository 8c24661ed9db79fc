package providerfakes

import (
	"context"
	"net/url"
	"sync"
	"time"

	apperrors "github.com/jrsteele09/go-assistant-auth/internal/errors"
	"github.com/jrsteele09/go-assistant-auth/provider"
	"github.com/jrsteele09/go-assistant-auth/sessions"
)

var _ provider.IdentityProvider = (*FakeIdentityProvider)(nil)

// FakeIdentityProvider is a scripted in-memory identity provider for tests.
// Connections present in Tokens exchange successfully; everything else
// reports not linked.
type FakeIdentityProvider struct {
	mu sync.Mutex

	// Tokens maps connection id to the token handed out on exchange.
	Tokens map[string]provider.ConnectionToken
	// ExchangeErr, when set, fails every token exchange.
	ExchangeErr error
	// CallbackResults maps authorization codes to their results.
	CallbackResults map[string]*provider.CallbackResult
	// RefreshedIDToken is returned from RefreshIdentityToken.
	RefreshedIDToken string
	// RefreshErr, when set, fails RefreshIdentityToken.
	RefreshErr error

	exchangeCalls map[string]int
}

func NewFakeIdentityProvider() *FakeIdentityProvider {
	return &FakeIdentityProvider{
		Tokens:          make(map[string]provider.ConnectionToken),
		CallbackResults: make(map[string]*provider.CallbackResult),
		exchangeCalls:   make(map[string]int),
	}
}

// GrantConnection scripts a successful exchange for connectionID.
func (f *FakeIdentityProvider) GrantConnection(connectionID, token string, expiresIn time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Tokens[connectionID] = provider.ConnectionToken{Token: token, ExpiresIn: expiresIn}
}

// ExchangeCalls reports how many exchanges ran for connectionID.
func (f *FakeIdentityProvider) ExchangeCalls(connectionID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.exchangeCalls[connectionID]
}

func (f *FakeIdentityProvider) StartInteractiveLogin(params provider.LoginParams) (string, error) {
	q := url.Values{}
	if params.Connection != "" {
		q.Set("connection", params.Connection)
	}
	if params.RequestedConnection != "" {
		q.Set("requested_connection", params.RequestedConnection)
	}
	if params.IDTokenHint != "" {
		q.Set("id_token_hint", params.IDTokenHint)
	}
	if params.Scope != "" {
		q.Set("scope", params.Scope)
	}
	if params.State != "" {
		q.Set("state", params.State)
	}
	return "https://idp.example.com/authorize?" + q.Encode(), nil
}

func (f *FakeIdentityProvider) HandleCallback(_ context.Context, code string) (*provider.CallbackResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	result, ok := f.CallbackResults[code]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return result, nil
}

func (f *FakeIdentityProvider) GetAccessTokenForConnection(_ context.Context, connectionID string) (provider.ConnectionToken, error) {
	f.mu.Lock()
	f.exchangeCalls[connectionID]++
	err := f.ExchangeErr
	token, linked := f.Tokens[connectionID]
	f.mu.Unlock()

	if err != nil {
		return provider.ConnectionToken{}, err
	}
	if !linked {
		return provider.ConnectionToken{}, apperrors.ErrNotLinked
	}
	return token, nil
}

func (f *FakeIdentityProvider) RefreshIdentityToken(_ context.Context, _ string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.RefreshErr != nil {
		return "", f.RefreshErr
	}
	return f.RefreshedIDToken, nil
}

// SessionResult builds a minimal callback result for scripting tests.
func SessionResult(subject, rawIDToken string) *provider.CallbackResult {
	return &provider.CallbackResult{
		Subject:    subject,
		RawIDToken: rawIDToken,
		TokenSet:   sessions.TokenSet{IDToken: rawIDToken},
	}
}
