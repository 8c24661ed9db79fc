package provider

import (
	"context"

	"github.com/pkg/errors"
)

type contextKey int

const subjectTokenKey contextKey = iota

// ContextWithSubjectToken carries the primary identity's refresh token on the
// context so a federated token exchange can run on the caller's behalf.
func ContextWithSubjectToken(ctx context.Context, refreshToken string) context.Context {
	return context.WithValue(ctx, subjectTokenKey, refreshToken)
}

// SubjectTokenFromContext satisfies SubjectTokenFunc for callers that carry
// the refresh token on the request context.
func SubjectTokenFromContext(ctx context.Context) (string, error) {
	token, ok := ctx.Value(subjectTokenKey).(string)
	if !ok || token == "" {
		return "", errors.New("[SubjectTokenFromContext] no subject token on context")
	}
	return token, nil
}
