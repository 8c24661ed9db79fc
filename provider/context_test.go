package provider_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-assistant-auth/provider"
)

func TestSubjectTokenFromContext(t *testing.T) {
	ctx := provider.ContextWithSubjectToken(context.Background(), "refresh-1")

	token, err := provider.SubjectTokenFromContext(ctx)
	require.NoError(t, err)
	require.Equal(t, "refresh-1", token)
}

func TestSubjectTokenFromContextMissing(t *testing.T) {
	_, err := provider.SubjectTokenFromContext(context.Background())
	require.Error(t, err)

	_, err = provider.SubjectTokenFromContext(provider.ContextWithSubjectToken(context.Background(), ""))
	require.Error(t, err)
}
