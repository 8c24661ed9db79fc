package sessions

import (
	"strings"

	"github.com/jrsteele09/go-assistant-auth/services"
)

// ResolveConnectedServices derives the set of services the session's
// identities cover. A nil session resolves to the empty set — anonymous
// visitors are a normal state, not an error. Identities with no registered
// connection are dropped, as is the identity backing the primary login
// credential itself.
//
// The result is derived on demand and must not be cached beyond the current
// request; stale sets gate tools incorrectly.
func ResolveConnectedServices(sess *Session, registry *services.Registry) map[services.Key]struct{} {
	connected := make(map[services.Key]struct{})
	if sess == nil {
		return connected
	}

	primaryID := primaryUserSuffix(sess.UserID)
	for _, id := range sess.Identities {
		if primaryID != "" && id.UserID == primaryID {
			continue
		}
		svc, ok := registry.Lookup(id.Connection)
		if !ok {
			continue
		}
		connected[svc.Key] = struct{}{}
	}
	return connected
}

// primaryUserSuffix strips the provider prefix from a primary user id:
// "auth0|abc123" -> "abc123". Ids without a prefix are returned unchanged.
func primaryUserSuffix(userID string) string {
	if _, suffix, found := strings.Cut(userID, "|"); found {
		return suffix
	}
	return userID
}
