// Package services defines the logical external services the assistant can
// act on and the static mapping between service keys and identity-provider
// connection identifiers. The registry is the single source of truth for that
// mapping; no other package carries connection-id string literals.
package services

// Key identifies one supported service.
type Key string

const (
	Microsoft  Key = "microsoft"
	Salesforce Key = "salesforce"
	Google     Key = "google"
)

// Service describes one configured external service.
type Service struct {
	Key          Key
	ConnectionID string // provider connection identifier, e.g. "windowslive"
	Scope        string // default OAuth scope string requested at link time
	DisplayName  string
	Social       bool // social vs. enterprise connection at the provider
}

// Registry is an immutable lookup table over the configured services. It is
// built once at startup and passed explicitly to the components that need it.
type Registry struct {
	byKey        map[Key]Service
	byConnection map[string]Service
	order        []Key
}

// NewRegistry builds a registry from the given services. Later entries with a
// duplicate key or connection id replace earlier ones.
func NewRegistry(svcs ...Service) *Registry {
	r := &Registry{
		byKey:        make(map[Key]Service, len(svcs)),
		byConnection: make(map[string]Service, len(svcs)),
	}
	for _, svc := range svcs {
		if _, exists := r.byKey[svc.Key]; !exists {
			r.order = append(r.order, svc.Key)
		}
		r.byKey[svc.Key] = svc
		r.byConnection[svc.ConnectionID] = svc
	}
	return r
}

// DefaultRegistry returns the registry for the supported services.
func DefaultRegistry() *Registry {
	return NewRegistry(
		Service{
			Key:          Microsoft,
			ConnectionID: "windowslive",
			Scope:        "offline_access files.readwrite.all mail.readwrite calendars.readwrite",
			DisplayName:  "Microsoft",
			Social:       true,
		},
		Service{
			Key:          Salesforce,
			ConnectionID: "salesforce-dev",
			Scope:        "api refresh_token",
			DisplayName:  "Salesforce",
			Social:       false,
		},
		Service{
			Key:          Google,
			ConnectionID: "google-oauth2",
			Scope:        "https://www.googleapis.com/auth/drive https://www.googleapis.com/auth/gmail.modify https://www.googleapis.com/auth/calendar",
			DisplayName:  "Google",
			Social:       true,
		},
	)
}

// Describe returns the service configured under key. Unknown keys return
// ok=false, never an error.
func (r *Registry) Describe(key Key) (Service, bool) {
	svc, ok := r.byKey[key]
	return svc, ok
}

// Lookup resolves a provider connection identifier back to its service.
// Unknown connection ids return ok=false.
func (r *Registry) Lookup(connectionID string) (Service, bool) {
	svc, ok := r.byConnection[connectionID]
	return svc, ok
}

// All returns the configured services in registration order.
func (r *Registry) All() []Service {
	out := make([]Service, 0, len(r.order))
	for _, key := range r.order {
		out = append(out, r.byKey[key])
	}
	return out
}
