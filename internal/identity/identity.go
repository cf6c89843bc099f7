// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package identity carries the authenticated caller through a request.
// A nil *Identity means the caller is anonymous.
package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/vue-rookie/blog-platform/internal/models"
)

// Identity is the request-scoped view of the signed-in user.
type Identity struct {
	UserID   uuid.UUID
	Username string
	Email    string
	Role     models.Role
}

// IsAdmin reports whether id belongs to an administrator. Safe on nil.
func (id *Identity) IsAdmin() bool {
	return id != nil && id.Role == models.RoleAdmin
}

// IsStaff reports whether id may enter the administrative area. Safe on nil.
func (id *Identity) IsStaff() bool {
	return id != nil && id.Role.IsStaff()
}

type contextKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the identity stored in ctx, or nil.
func FromContext(ctx context.Context) *Identity {
	id, _ := ctx.Value(contextKey{}).(*Identity)
	return id
}
