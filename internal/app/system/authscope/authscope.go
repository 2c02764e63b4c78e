// Package authscope is the single authorization primitive: it turns the
// composite principal ("<provider>|<userId>") and the space-delimited scope
// string carried by a request into an Identity, and answers set-membership
// and ownership questions about it. There is no role hierarchy.
package authscope

import (
	"context"
	"net/http"
	"strings"
)

// Default well-known scope tokens.
const (
	DefaultManageProject = "manage:project"
	DefaultManageEntry   = "manage:entry"
)

// Scopes names the two tokens that gate mutations.
type Scopes struct {
	ManageProject string // business-side mutation rights
	ManageEntry   string // student-side mutation rights
}

// DefaultScopes returns the built-in token names.
func DefaultScopes() Scopes {
	return Scopes{ManageProject: DefaultManageProject, ManageEntry: DefaultManageEntry}
}

// Identity is the authenticated caller.
type Identity struct {
	PrincipalID string
	UserID      string
	Scopes      []string
}

// Has reports whether scope was granted.
func (id Identity) Has(scope string) bool {
	if scope == "" {
		return false
	}
	for _, s := range id.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// ParsePrincipal extracts the user id from "<provider>|<userId>". It fails
// when the principal is absent or does not split into exactly two parts.
func ParsePrincipal(principal string) (string, bool) {
	parts := strings.Split(strings.TrimSpace(principal), "|")
	if len(parts) != 2 || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// ParseScopes splits a space-delimited scope string. An empty string
// yields an empty, non-nil slice.
func ParseScopes(scope string) []string {
	fields := strings.Fields(scope)
	if fields == nil {
		return []string{}
	}
	return fields
}

// NewIdentity builds an Identity from raw principal and scope strings.
func NewIdentity(principal, scope string) (Identity, bool) {
	userID, ok := ParsePrincipal(principal)
	if !ok {
		return Identity{}, false
	}
	return Identity{
		PrincipalID: strings.TrimSpace(principal),
		UserID:      userID,
		Scopes:      ParseScopes(scope),
	}, true
}

// Owns is the ownership guard: the authenticated id must equal the
// resource owner's id.
func Owns(authID, ownerID string) bool {
	return authID != "" && authID == ownerID
}

type ctxKey string

const identityKey ctxKey = "identity"

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext returns the identity stored in ctx, if any.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok
}

// FromRequest returns the identity attached to r, if any.
func FromRequest(r *http.Request) (Identity, bool) {
	return FromContext(r.Context())
}
