package agenttools

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-assistant-auth/services"
)

// TokenSource supplies a bearer token for a service. An unlinked service
// yields an empty token with no error.
type TokenSource interface {
	GetAccessToken(ctx context.Context, key services.Key) (string, error)
}

// Executor is the per-service API wrapper collaborator that actually performs
// the tool's work.
type Executor interface {
	Execute(ctx context.Context, tool Descriptor, bearerToken, input string) (string, error)
}

// Runner invokes gated tools, binding a provider token first when the tool
// requires one. Token failures are scoped to the single tool call: the agent
// receives a relayable message, never a raw error chain.
type Runner struct {
	tokens TokenSource
	exec   Executor
	log    zerolog.Logger
}

// NewRunner initializes a tool runner.
func NewRunner(tokens TokenSource, exec Executor, log zerolog.Logger) (*Runner, error) {
	if tokens == nil {
		return nil, errors.New("[NewRunner] token source is required")
	}
	if exec == nil {
		return nil, errors.New("[NewRunner] executor is required")
	}
	return &Runner{tokens: tokens, exec: exec, log: log}, nil
}

// Invoke runs one tool. Output is always something the agent can relay to the
// user; a failed token acquisition degrades to a message naming the service.
func (r *Runner) Invoke(ctx context.Context, tool Descriptor, input string) (string, error) {
	var bearer string
	if tool.RequiresService() {
		token, err := r.tokens.GetAccessToken(ctx, tool.Service)
		if err != nil {
			r.log.Warn().Err(err).Str("tool", tool.Name).Str("service", string(tool.Service)).Msg("token acquisition failed")
			return fmt.Sprintf("The %s service needs to be re-authenticated before %s can run.", tool.Service, tool.Name), nil
		}
		if token == "" {
			return fmt.Sprintf("The %s service is not connected. Link it first, then try again.", tool.Service), nil
		}
		bearer = token
	}

	output, err := r.exec.Execute(ctx, tool, bearer, input)
	if err != nil {
		return "", errors.Wrapf(err, "[Invoke] tool %s", tool.Name)
	}
	return output, nil
}
