// Package auth carries the authenticated admin identity from the HTTP layer
// to the operations that require it.
package auth

import (
	"context"
	"strings"
)

const RoleAdmin = "admin"

// Caller is who is performing an admin operation. The zero Caller is
// anonymous.
type Caller struct {
	Username string
	Roles    []string
}

// NewCaller builds a caller from a token credential and its comma separated
// roles claim.
func NewCaller(username, roles string) Caller {
	c := Caller{Username: username}
	for _, role := range strings.Split(roles, ",") {
		if role = strings.TrimSpace(role); role != "" {
			c.Roles = append(c.Roles, role)
		}
	}
	return c
}

func (c Caller) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Authenticated reports whether c may use the admin operations.
func (c Caller) Authenticated() bool {
	return c.Username != "" && c.HasRole(RoleAdmin)
}

type contextKey struct{}

func NewContext(ctx context.Context, c Caller) context.Context {
	return context.WithValue(ctx, contextKey{}, c)
}

// FromContext returns the caller stored in ctx, or the anonymous caller.
func FromContext(ctx context.Context) Caller {
	c, _ := ctx.Value(contextKey{}).(Caller)
	return c
}
