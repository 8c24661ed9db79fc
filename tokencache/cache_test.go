package tokencache_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/jrsteele09/go-assistant-auth/internal/errors"
	"github.com/jrsteele09/go-assistant-auth/provider/providerfakes"
	"github.com/jrsteele09/go-assistant-auth/services"
	"github.com/jrsteele09/go-assistant-auth/tokencache"
)

func TestGetAccessTokenCachesUntilExpiry(t *testing.T) {
	idp := providerfakes.NewFakeIdentityProvider()
	idp.GrantConnection("windowslive", "ms-token", time.Hour)

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	cache := tokencache.New(services.DefaultRegistry(), idp, tokencache.WithNowTime(func() time.Time { return now }))

	token, err := cache.GetAccessToken(context.Background(), services.Microsoft)
	require.NoError(t, err)
	require.Equal(t, "ms-token", token)

	// Second read is served from cache.
	token, err = cache.GetAccessToken(context.Background(), services.Microsoft)
	require.NoError(t, err)
	require.Equal(t, "ms-token", token)
	require.Equal(t, 1, idp.ExchangeCalls("windowslive"))

	// Past the safety margin the entry is stale and a fresh exchange runs.
	now = now.Add(time.Hour)
	token, err = cache.GetAccessToken(context.Background(), services.Microsoft)
	require.NoError(t, err)
	require.Equal(t, "ms-token", token)
	require.Equal(t, 2, idp.ExchangeCalls("windowslive"))
}

func TestGetAccessTokenSafetyMargin(t *testing.T) {
	idp := providerfakes.NewFakeIdentityProvider()
	idp.GrantConnection("windowslive", "ms-token", 10*time.Minute)

	now := time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	cache := tokencache.New(services.DefaultRegistry(), idp, tokencache.WithNowTime(func() time.Time { return now }))

	_, err := cache.GetAccessToken(context.Background(), services.Microsoft)
	require.NoError(t, err)

	// Six minutes in, the token has four minutes of provider lifetime left but
	// sits inside the five-minute margin, so it must be re-acquired.
	now = now.Add(6 * time.Minute)
	_, err = cache.GetAccessToken(context.Background(), services.Microsoft)
	require.NoError(t, err)
	require.Equal(t, 2, idp.ExchangeCalls("windowslive"))
}

func TestGetAccessTokenNotLinked(t *testing.T) {
	idp := providerfakes.NewFakeIdentityProvider()
	cache := tokencache.New(services.DefaultRegistry(), idp)

	token, err := cache.GetAccessToken(context.Background(), services.Salesforce)
	require.NoError(t, err)
	require.Empty(t, token)
}

func TestGetAccessTokenUnknownService(t *testing.T) {
	cache := tokencache.New(services.DefaultRegistry(), providerfakes.NewFakeIdentityProvider())

	_, err := cache.GetAccessToken(context.Background(), "github")
	require.ErrorIs(t, err, apperrors.ErrUnknownService)
}

func TestGetAccessTokenExchangeFailure(t *testing.T) {
	idp := providerfakes.NewFakeIdentityProvider()
	idp.ExchangeErr = errors.New("token endpoint unavailable")
	cache := tokencache.New(services.DefaultRegistry(), idp)

	_, err := cache.GetAccessToken(context.Background(), services.Google)
	require.Error(t, err)

	var acquisitionErr *tokencache.TokenAcquisitionError
	require.ErrorAs(t, err, &acquisitionErr)
	require.Equal(t, services.Google, acquisitionErr.Service)
}

func TestGetAccessTokenConcurrentCallersShareOneExchange(t *testing.T) {
	idp := providerfakes.NewFakeIdentityProvider()
	idp.GrantConnection("google-oauth2", "g-token", time.Hour)
	cache := tokencache.New(services.DefaultRegistry(), idp)

	const callers = 32
	var wg sync.WaitGroup
	tokens := make([]string, callers)
	errs := make([]error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i], errs[i] = cache.GetAccessToken(context.Background(), services.Google)
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, "g-token", tokens[i])
	}
	// Concurrent misses join one flight; a handful of flights may still run if
	// callers arrive after a flight completes, but never one per caller.
	require.LessOrEqual(t, idp.ExchangeCalls("google-oauth2"), 2)
}

func TestInvalidate(t *testing.T) {
	idp := providerfakes.NewFakeIdentityProvider()
	idp.GrantConnection("windowslive", "ms-token", time.Hour)
	cache := tokencache.New(services.DefaultRegistry(), idp)

	_, err := cache.GetAccessToken(context.Background(), services.Microsoft)
	require.NoError(t, err)

	cache.Invalidate(services.Microsoft)

	_, err = cache.GetAccessToken(context.Background(), services.Microsoft)
	require.NoError(t, err)
	require.Equal(t, 2, idp.ExchangeCalls("windowslive"))
}
