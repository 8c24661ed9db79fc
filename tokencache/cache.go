// Package tokencache memoizes per-service access tokens so that tool
// invocations do not pay a provider round trip on every call.
package tokencache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	apperrors "github.com/jrsteele09/go-assistant-auth/internal/errors"
	"github.com/jrsteele09/go-assistant-auth/provider"
	"github.com/jrsteele09/go-assistant-auth/services"
)

// DefaultSafetyMargin is subtracted from the provider expiry so a token is
// never served when it could expire mid-flight.
const DefaultSafetyMargin = 5 * time.Minute

// TokenAcquisitionError reports a failed provider token exchange for reasons
// other than "not linked".
type TokenAcquisitionError struct {
	Service services.Key
	Cause   error
}

func (e *TokenAcquisitionError) Error() string {
	return fmt.Sprintf("token acquisition failed for %s: %v", e.Service, e.Cause)
}

func (e *TokenAcquisitionError) Unwrap() error { return e.Cause }

type cachedToken struct {
	token     string
	expiresAt time.Time
}

// Cache holds process-wide token state keyed by service. Concurrent misses
// for the same key join a single in-flight exchange; token endpoints are not
// free of per-identity rate limits.
type Cache struct {
	registry     *services.Registry
	idp          provider.IdentityProvider
	safetyMargin time.Duration
	nowTime      func() time.Time

	mu     sync.RWMutex
	tokens map[services.Key]cachedToken
	group  singleflight.Group
}

// CacheOption defines a function type to modify the Cache instance.
type CacheOption func(*Cache)

// WithSafetyMargin overrides the default expiry safety margin.
func WithSafetyMargin(margin time.Duration) CacheOption {
	return func(c *Cache) {
		c.safetyMargin = margin
	}
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) CacheOption {
	return func(c *Cache) {
		c.nowTime = nowFunc
	}
}

// New creates a token cache over the given registry and provider.
func New(registry *services.Registry, idp provider.IdentityProvider, options ...CacheOption) *Cache {
	cache := &Cache{
		registry:     registry,
		idp:          idp,
		safetyMargin: DefaultSafetyMargin,
		nowTime:      time.Now,
		tokens:       make(map[services.Key]cachedToken),
	}
	for _, opt := range options {
		opt(cache)
	}
	return cache
}

// GetAccessToken returns a bearer token for the service. A valid cached token
// is returned without a network call; otherwise one exchange runs against the
// provider and its result is shared with every concurrent caller for the same
// key. An unlinked service returns the empty string with no error — gate
// probes for unconnected services are routine, not exceptional.
func (c *Cache) GetAccessToken(ctx context.Context, key services.Key) (string, error) {
	if token, ok := c.cached(key); ok {
		return token, nil
	}

	svc, ok := c.registry.Describe(key)
	if !ok {
		return "", apperrors.Wrapf(apperrors.ErrUnknownService, "token cache: %s", key)
	}

	result, err, _ := c.group.Do(string(key), func() (any, error) {
		// Re-check under the flight: a racing caller may have populated the
		// entry between the miss and the singleflight admission.
		if token, ok := c.cached(key); ok {
			return token, nil
		}
		return c.exchange(ctx, key, svc.ConnectionID)
	})
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotLinked) {
			return "", nil
		}
		return "", &TokenAcquisitionError{Service: key, Cause: err}
	}
	return result.(string), nil
}

// Invalidate drops the cached token for one service.
func (c *Cache) Invalidate(key services.Key) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.tokens, key)
}

func (c *Cache) cached(key services.Key) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.tokens[key]
	if !ok || !c.nowTime().Before(entry.expiresAt) {
		return "", false
	}
	return entry.token, true
}

func (c *Cache) exchange(ctx context.Context, key services.Key, connectionID string) (string, error) {
	connToken, err := c.idp.GetAccessTokenForConnection(ctx, connectionID)
	if err != nil {
		return "", err
	}

	expiresAt := c.nowTime().Add(connToken.ExpiresIn - c.safetyMargin)
	c.mu.Lock()
	c.tokens[key] = cachedToken{token: connToken.Token, expiresAt: expiresAt}
	c.mu.Unlock()

	return connToken.Token, nil
}
