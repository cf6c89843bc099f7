// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/vue-rookie/blog-platform/internal/identity"
	"github.com/vue-rookie/blog-platform/internal/models"
	"github.com/vue-rookie/blog-platform/internal/policy"
	"github.com/vue-rookie/blog-platform/internal/session"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey string

const (
	// SessionKey is the context key for the raw session data, including
	// sessions still waiting on a second factor.
	SessionKey contextKey = "session"

	authSourceKey contextKey = "auth_source"
)

// AuthSource records how the caller was identified.
type AuthSource int

const (
	AuthNone AuthSource = iota
	AuthBearer
	AuthCookie
)

// SessionLoader reads the session named by the request cookie.
type SessionLoader interface {
	Get(ctx context.Context, r *http.Request) (*session.Data, error)
}

// TokenParser validates a bearer token.
type TokenParser interface {
	Parse(raw string) (*identity.Identity, error)
}

// UserLookup resolves the current state of an account.
type UserLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// LoadIdentity resolves the caller and stores the identity in the request
// context. A bearer token takes precedence over the session cookie. Missing
// or invalid credentials, deactivated accounts and sessions pending 2FA all
// leave the request anonymous; enforcement is left to Require.
func LoadIdentity(sessions SessionLoader, tokens TokenParser, users UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			var id *identity.Identity
			source := AuthNone

			if raw, ok := bearerToken(r); ok {
				parsed, err := tokens.Parse(raw)
				if err != nil {
					slog.Debug("bearer token rejected", "error", err)
				} else {
					id, source = parsed, AuthBearer
				}
			} else if sessions != nil {
				data, err := sessions.Get(ctx, r)
				if err != nil {
					slog.Warn("session load failed", "error", err)
				}
				if data != nil {
					ctx = context.WithValue(ctx, SessionKey, data)
					if sid := data.Identity(); sid != nil {
						id, source = sid, AuthCookie
					}
				}
			}

			if id != nil {
				id = refresh(ctx, users, id)
				if id == nil {
					source = AuthNone
				}
			}

			ctx = identity.WithIdentity(ctx, id)
			ctx = context.WithValue(ctx, authSourceKey, source)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// refresh re-reads the account so deactivation and role changes take effect
// without waiting for the credential to expire.
func refresh(ctx context.Context, users UserLookup, id *identity.Identity) *identity.Identity {
	user, err := users.FindByID(ctx, id.UserID)
	if err != nil {
		slog.Warn("identity lookup failed", "user_id", id.UserID, "error", err)
		return nil
	}
	if user == nil || !user.IsActive {
		return nil
	}
	return &identity.Identity{
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	}
}

// Require rejects the request unless the caller may access the route class.
// Must be applied after LoadIdentity.
func Require(class policy.RouteClass) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := policy.Check(class, identity.FromContext(r.Context())); err != nil {
				slog.Debug("access denied", "class", class.String(), "path", r.URL.Path)
				writeError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SessionFromCtx returns the raw session data, or nil when the request
// carries no session cookie.
func SessionFromCtx(ctx context.Context) *session.Data {
	data, _ := ctx.Value(SessionKey).(*session.Data)
	return data
}

// AuthSourceFromCtx reports how the caller was identified.
func AuthSourceFromCtx(ctx context.Context) AuthSource {
	src, _ := ctx.Value(authSourceKey).(AuthSource)
	return src
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	return strings.TrimSpace(h[len(prefix):]), true
}
