// Package linkstate tracks the state parameter of in-flight login and
// linking round trips so callbacks can be tied back to the session that
// started them.
package linkstate

import (
	"time"

	"github.com/jrsteele09/go-assistant-auth/services"
)

// FlowState is one outstanding provider round trip.
type FlowState struct {
	SessionID string       // session that initiated the flow; empty for fresh logins
	Service   services.Key // service being linked; empty for plain logins
	ReturnURL string
	CreatedAt time.Time
}

type Repo interface {
	Upsert(state string, flowState *FlowState) error
	Get(state string) (*FlowState, error)
	Delete(state string) error
}
