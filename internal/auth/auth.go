// Package auth resolves the acting principal and gates every engine operation on its role.
package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/upkeep/internal/apperr"
)

// Role is the privilege tier of a principal.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleClient  Role = "client"
)

// ErrUnauthorized is deliberately uninformative: it never says which check failed.
var ErrUnauthorized = apperr.ErrUnauthorized

var ErrInvalidRole = apperr.Invalid("role: must be one of [admin manager client]")

func Roles() []Role {
	return []Role{RoleAdmin, RoleManager, RoleClient}
}

func ParseRole(s string) (Role, error) {
	for _, r := range Roles() {
		if strings.EqualFold(s, string(r)) {
			return r, nil
		}
	}

	return "", fmt.Errorf("%q: %w", s, ErrInvalidRole)
}

// Principal is the authenticated actor behind a request.
type Principal struct {
	UserID uuid.UUID
	Name   string
	Role   Role
}

// Elevated reports whether the principal is staff (admin or manager).
func (p Principal) Elevated() bool {
	return p.Role == RoleAdmin || p.Role == RoleManager
}

type ctxKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// FromContext returns the principal attached to ctx; ok is false for anonymous callers.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(ctxKey{}).(Principal)
	return p, ok
}

// Operator is the principal used by the local CLI and TUI, which already hold database credentials.
func Operator(name string) Principal {
	if name == "" {
		name = "operator"
	}

	return Principal{Name: name, Role: RoleAdmin}
}
