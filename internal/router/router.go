// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up the HTTP routes and middleware chains of the blog
// API. Every route is tagged with a policy.RouteClass; the handlers never
// check roles themselves.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/vue-rookie/blog-platform/internal/handlers"
	"github.com/vue-rookie/blog-platform/internal/middleware"
	"github.com/vue-rookie/blog-platform/internal/policy"
)

// Deps holds everything the router wires together.
type Deps struct {
	Sessions middleware.SessionLoader
	Tokens   middleware.TokenParser
	Users    middleware.UserLookup

	Posts       *handlers.Posts
	Categories  *handlers.Categories
	Comments    *handlers.Comments
	Accounts    *handlers.Users
	Auth        *handlers.Auth
	Maintenance *handlers.Maintenance

	// Per-IP limits for credential endpoints and comment creation.
	AuthLimiter    *middleware.RateLimiter
	CommentLimiter *middleware.RateLimiter

	SecureCookies bool
}

// New creates the chi router with all middleware and routes wired up.
func New(d Deps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)

	r.Get("/health", healthHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.LoadIdentity(d.Sessions, d.Tokens, d.Users))
		r.Use(middleware.NewCSRF(d.SecureCookies))

		r.Get("/tags", d.Posts.Tags)

		r.Route("/posts", func(r chi.Router) {
			r.Get("/", d.Posts.List)
			r.Get("/{id}", d.Posts.Get)
			r.Get("/slug/{slug}", d.Posts.GetBySlug)

			r.With(middleware.Require(policy.ContentWrite)).Post("/", d.Posts.Create)
			r.With(middleware.Require(policy.ContentWrite)).Put("/{id}", d.Posts.Update)
			r.With(middleware.Require(policy.Destructive)).Delete("/{id}", d.Posts.Delete)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", d.Categories.List)
			r.Get("/{slug}", d.Categories.GetBySlug)
			// Same handler as /admin/categories/{id}, kept at the public path.
			r.With(middleware.Require(policy.Destructive)).Delete("/{id}", d.Categories.Delete)
		})

		r.Route("/comments", func(r chi.Router) {
			r.Get("/", d.Comments.ListByPost)
			r.With(d.CommentLimiter.Middleware).Post("/", d.Comments.Create)
			r.With(middleware.Require(policy.Destructive)).Delete("/{id}", d.Comments.Delete)
		})

		r.Route("/auth", func(r chi.Router) {
			r.With(d.AuthLimiter.Middleware).Post("/register", d.Auth.Register)
			r.With(d.AuthLimiter.Middleware).Post("/login", d.Auth.Login)
			r.With(d.AuthLimiter.Middleware).Post("/2fa/verify", d.Auth.VerifyTwoFA)
			r.Post("/logout", d.Auth.Logout)

			r.Group(func(r chi.Router) {
				r.Use(middleware.Require(policy.Authenticated))
				r.Post("/2fa/setup", d.Auth.SetupTwoFA)
				r.Post("/2fa/enable", d.Auth.EnableTwoFA)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Require(policy.Authenticated))
			r.Get("/profile", d.Accounts.Profile)
			r.Put("/profile", d.Accounts.UpdateProfile)
			r.Get("/users/{username}", d.Accounts.PublicProfile)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.Require(policy.AdminArea))

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", d.Categories.AdminList)
				r.With(middleware.Require(policy.ContentWrite)).Post("/", d.Categories.Create)
				r.With(middleware.Require(policy.ContentWrite)).Put("/{id}", d.Categories.Update)
				r.With(middleware.Require(policy.Destructive)).Delete("/{id}", d.Categories.Delete)
			})

			r.Route("/comments", func(r chi.Router) {
				r.Get("/", d.Comments.AdminList)
				r.Put("/{id}", d.Comments.UpdateStatus)
				r.With(middleware.Require(policy.Destructive)).Delete("/{id}", d.Comments.Delete)
			})

			// Admin only from here on.
			r.Group(func(r chi.Router) {
				r.Use(middleware.Require(policy.Destructive))

				r.Get("/users", d.Accounts.AdminList)
				r.Put("/users/{id}", d.Accounts.AdminUpdate)
				r.Post("/users/{id}/reset-2fa", d.Accounts.AdminResetTwoFA)

				r.Post("/maintenance/recount", d.Maintenance.Recount)
				r.Get("/audit", d.Maintenance.Audit)
			})
		})
	})

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
