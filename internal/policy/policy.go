// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package policy decides whether a caller may use a class of routes.
// It is a pure function of the route class and the caller's role.
package policy

import (
	"github.com/vue-rookie/blog-platform/internal/apperr"
	"github.com/vue-rookie/blog-platform/internal/identity"
	"github.com/vue-rookie/blog-platform/internal/models"
)

// RouteClass groups routes that share an access rule.
type RouteClass int

const (
	// PublicRead covers read-only listing and detail routes.
	PublicRead RouteClass = iota
	// Authenticated covers profile and user-detail routes.
	Authenticated
	// AdminArea covers the administrative area.
	AdminArea
	// ContentWrite covers creating and editing posts and categories.
	ContentWrite
	// Destructive covers deletes, user moderation and maintenance.
	Destructive
)

func (c RouteClass) String() string {
	switch c {
	case PublicRead:
		return "public_read"
	case Authenticated:
		return "authenticated"
	case AdminArea:
		return "admin_area"
	case ContentWrite:
		return "content_write"
	case Destructive:
		return "destructive"
	default:
		return "unknown"
	}
}

// Allow reports whether id may access routes of the given class.
// A nil id is an anonymous caller. Unknown classes are denied.
func Allow(class RouteClass, id *identity.Identity) bool {
	switch class {
	case PublicRead:
		return true
	case Authenticated:
		return id != nil
	case AdminArea, ContentWrite:
		return id != nil && (id.Role == models.RoleAdmin || id.Role == models.RoleAuthor)
	case Destructive:
		return id != nil && id.Role == models.RoleAdmin
	default:
		return false
	}
}

// Check is Allow expressed as an error: Authentication when a signed-in
// caller is required but missing, Authorization when the role is wrong.
func Check(class RouteClass, id *identity.Identity) error {
	if Allow(class, id) {
		return nil
	}
	if id == nil {
		return apperr.Authentication("Authentication required")
	}
	return apperr.Authorization("Insufficient permissions")
}
