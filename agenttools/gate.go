// Package agenttools decides which agent tools are exposed for a given
// connected-service set and supplies them bearer tokens on demand. The agent
// reasoning loop and the per-service API wrappers live elsewhere.
package agenttools

import (
	"github.com/jrsteele09/go-assistant-auth/services"
)

// Descriptor declares one agent tool and the service it requires. A zero
// Service marks a service-independent tool.
type Descriptor struct {
	Name        string
	Description string
	Service     services.Key
}

// RequiresService reports whether the tool needs a connected service.
func (d Descriptor) RequiresService() bool {
	return d.Service != ""
}

// Available filters descriptors down to those whose required service is in
// the connected set. Service-independent tools always pass. Pure function —
// callers must recompute per agent invocation, since connection state can
// change between user turns.
func Available(connected map[services.Key]struct{}, descriptors []Descriptor) []Descriptor {
	available := make([]Descriptor, 0, len(descriptors))
	for _, d := range descriptors {
		if d.RequiresService() {
			if _, ok := connected[d.Service]; !ok {
				continue
			}
		}
		available = append(available, d)
	}
	return available
}
