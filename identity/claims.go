// Package identity mirrors the federated identity claims issued by the
// identity provider into application types.
package identity

import (
	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/jrsteele09/go-assistant-auth/internal/errors"
)

// Identity is one linked credential a user has granted, as reported by the
// identity provider. It is owned by the provider and mirrored read-only here.
type Identity struct {
	Connection string `json:"connection"`
	Provider   string `json:"provider"`
	UserID     string `json:"user_id"`
	Social     bool   `json:"isSocial"`
}

// Claims is the decoded payload of an identity token, reduced to the parts
// this core consumes.
type Claims struct {
	Subject    string
	Identities []Identity
	Profile    map[string]any // remaining non-identity claims (name, email, picture, ...)
}

// claims that never belong in the profile overlay
var reservedClaims = map[string]struct{}{
	"connected_services": {},
	"identities":         {},
	"iss":                {},
	"aud":                {},
	"iat":                {},
	"exp":                {},
	"nonce":              {},
	"sid":                {},
}

// DecodeIdentityClaims decodes the middle segment of a three-part identity
// token and extracts the federated identity list. Malformed input yields an
// empty Claims value together with ErrClaimsDecode — it never panics and
// never returns a partially decoded result. Signature verification is the
// provider's job; the token arrives here over an already-authenticated
// channel.
func DecodeIdentityClaims(rawIDToken string) (Claims, error) {
	if rawIDToken == "" {
		return Claims{}, apperrors.ErrClaimsDecode
	}

	mapClaims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(rawIDToken, mapClaims); err != nil {
		return Claims{}, apperrors.Wrapf(apperrors.ErrClaimsDecode, "parse identity token")
	}

	claims := Claims{Profile: make(map[string]any)}
	if sub, ok := mapClaims["sub"].(string); ok {
		claims.Subject = sub
	}

	// The provider publishes the identity list under connected_services;
	// older tokens used identities. Accept either.
	rawIdentities, ok := mapClaims["connected_services"]
	if !ok {
		rawIdentities = mapClaims["identities"]
	}
	claims.Identities = decodeIdentityList(rawIdentities)

	for name, value := range mapClaims {
		if _, reserved := reservedClaims[name]; reserved {
			continue
		}
		claims.Profile[name] = value
	}

	return claims, nil
}

func decodeIdentityList(raw any) []Identity {
	entries, ok := raw.([]any)
	if !ok {
		return nil
	}

	identities := make([]Identity, 0, len(entries))
	for _, entry := range entries {
		fields, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		id := Identity{}
		if v, ok := fields["connection"].(string); ok {
			id.Connection = v
		}
		if v, ok := fields["provider"].(string); ok {
			id.Provider = v
		}
		if v, ok := fields["user_id"].(string); ok {
			id.UserID = v
		}
		if v, ok := fields["isSocial"].(bool); ok {
			id.Social = v
		}
		if id.Connection == "" {
			continue
		}
		identities = append(identities, id)
	}
	return identities
}
