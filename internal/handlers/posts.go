// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vue-rookie/blog-platform/internal/apperr"
	"github.com/vue-rookie/blog-platform/internal/identity"
	"github.com/vue-rookie/blog-platform/internal/models"
	"github.com/vue-rookie/blog-platform/internal/store"
)

// viewCountTimeout bounds the detached view-count update.
const viewCountTimeout = 5 * time.Second

// PostRepository is the post persistence used by Posts.
type PostRepository interface {
	Create(ctx context.Context, author *identity.Identity, in store.CreatePostInput) (*models.Post, error)
	Update(ctx context.Context, id uuid.UUID, patch store.PostPatch) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	FindBySlug(ctx context.Context, slug string) (*models.Post, error)
	List(ctx context.Context, filter store.PostFilter) (*store.PostPage, error)
	IncrementViewCount(ctx context.Context, id uuid.UUID) error
	TagCounts(ctx context.Context) ([]models.TagCount, error)
}

// CategoryCounter resolves categories and adjusts their post counts.
type CategoryCounter interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	UpdatePostCount(ctx context.Context, id uuid.UUID, delta int64) (bool, error)
}

// CacheInvalidator drops cached category responses.
type CacheInvalidator interface {
	InvalidateCategories(ctx context.Context)
}

// AuditLogger records administrative mutations.
type AuditLogger interface {
	Log(ctx context.Context, actor *identity.Identity, entityType string, entityID uuid.UUID, action string)
}

// Posts groups the post endpoints.
type Posts struct {
	posts      PostRepository
	categories CategoryCounter
	cache      CacheInvalidator
	audit      AuditLogger
}

// NewPosts creates the Posts handler group.
func NewPosts(posts PostRepository, categories CategoryCounter, cache CacheInvalidator, audit AuditLogger) *Posts {
	return &Posts{posts: posts, categories: categories, cache: cache, audit: audit}
}

// List handles GET /posts. Callers outside the staff roles only ever see
// published posts, whatever status they ask for.
func (h *Posts) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	caller := identity.FromContext(r.Context())

	filter := store.PostFilter{
		Page:   queryInt(r, "page", 1),
		Limit:  queryInt(r, "limit", store.DefaultPageLimit),
		Search: store.ParseSearch(q.Get("search")),
		SortBy: store.ParseSortBy(q.Get("sortBy")),
	}

	if caller.IsStaff() {
		if raw := q.Get("status"); raw != "" {
			status := models.PostStatus(raw)
			if !status.Valid() {
				writeError(w, r, apperr.Validation("Invalid status %q", raw))
				return
			}
			filter.Status = status
		}
	} else {
		filter.Status = models.PostStatusPublished
	}

	var err error
	if filter.AuthorID, err = queryUUID(r, "authorId"); err != nil {
		writeError(w, r, err)
		return
	}
	if filter.CategoryID, err = queryUUID(r, "categoryId"); err != nil {
		writeError(w, r, err)
		return
	}

	page, err := h.posts.List(r.Context(), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, page, "")
}

// Get handles GET /posts/{id}.
func (h *Posts) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "Post")
	if err != nil {
		writeError(w, r, err)
		return
	}
	post, err := h.posts.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !visible(post, identity.FromContext(r.Context())) {
		writeError(w, r, apperr.NotFound("Post not found"))
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// GetBySlug handles GET /posts/slug/{slug} and counts the view without
// making the reader wait for it.
func (h *Posts) GetBySlug(w http.ResponseWriter, r *http.Request) {
	post, err := h.posts.FindBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !visible(post, identity.FromContext(r.Context())) {
		writeError(w, r, apperr.NotFound("Post not found"))
		return
	}

	go h.countView(context.WithoutCancel(r.Context()), post.ID)

	writeJSON(w, http.StatusOK, post)
}

func (h *Posts) countView(ctx context.Context, id uuid.UUID) {
	ctx, cancel := context.WithTimeout(ctx, viewCountTimeout)
	defer cancel()
	if err := h.posts.IncrementViewCount(ctx, id); err != nil {
		slog.Warn("increment view count failed", "post_id", id, "error", err)
	}
}

// Create handles POST /posts.
func (h *Posts) Create(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validationError(req.Validate()); err != nil {
		writeError(w, r, err)
		return
	}

	in := req.input()
	if err := h.requireCategory(r.Context(), in.CategoryID); err != nil {
		writeError(w, r, err)
		return
	}

	caller := identity.FromContext(r.Context())
	post, err := h.posts.Create(r.Context(), caller, in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.adjustCategory(r.Context(), post.CategoryID, 1)
	h.audit.Log(r.Context(), caller, "post", post.ID, "create")
	slog.Info("post created", "post_id", post.ID, "slug", post.Slug, "status", post.Status)

	writeSuccess(w, http.StatusCreated,
		map[string]any{"postId": post.ID, "slug": post.Slug},
		"Post created successfully")
}

// Update handles PUT /posts/{id}. Unknown posts and empty patches are
// reported as 400, like any other update that changed nothing.
func (h *Posts) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "Post")
	if err != nil {
		writeError(w, r, apperr.Validation("Post not found or no changes made"))
		return
	}

	var req updatePostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validationError(req.Validate()); err != nil {
		writeError(w, r, err)
		return
	}
	if req.empty() {
		writeError(w, r, apperr.Validation("Post not found or no changes made"))
		return
	}

	existing, err := h.posts.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if existing == nil {
		writeError(w, r, apperr.Validation("Post not found or no changes made"))
		return
	}

	patch := req.patch()
	if err := h.requireCategory(r.Context(), patch.CategoryID); err != nil {
		writeError(w, r, err)
		return
	}

	ok, err := h.posts.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		writeError(w, r, apperr.Validation("Post not found or no changes made"))
		return
	}

	next := existing.CategoryID
	switch {
	case patch.ClearCategory:
		next = nil
	case patch.CategoryID != nil:
		next = patch.CategoryID
	}
	if !sameUUID(existing.CategoryID, next) {
		h.adjustCategory(r.Context(), existing.CategoryID, -1)
		h.adjustCategory(r.Context(), next, 1)
	}

	h.audit.Log(r.Context(), identity.FromContext(r.Context()), "post", id, "update")
	writeMessage(w, http.StatusOK, "Post updated successfully")
}

// Delete handles DELETE /posts/{id}. Comments on the post are kept.
func (h *Posts) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "Post")
	if err != nil {
		writeError(w, r, apperr.Validation("Post not found"))
		return
	}

	existing, err := h.posts.FindByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if existing == nil {
		writeError(w, r, apperr.Validation("Post not found"))
		return
	}

	ok, err := h.posts.Delete(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		writeError(w, r, apperr.Validation("Post not found"))
		return
	}

	h.adjustCategory(r.Context(), existing.CategoryID, -1)
	h.audit.Log(r.Context(), identity.FromContext(r.Context()), "post", id, "delete")
	writeMessage(w, http.StatusOK, "Post deleted successfully")
}

// Tags handles GET /tags.
func (h *Posts) Tags(w http.ResponseWriter, r *http.Request) {
	tags, err := h.posts.TagCounts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"tags": tags})
}

func (h *Posts) requireCategory(ctx context.Context, id *uuid.UUID) error {
	if id == nil {
		return nil
	}
	c, err := h.categories.FindByID(ctx, *id)
	if err != nil {
		return err
	}
	if c == nil {
		return apperr.Validation("Category not found")
	}
	return nil
}

// adjustCategory moves a category's post count. It is best-effort: the
// reconciler repairs any delta lost here.
func (h *Posts) adjustCategory(ctx context.Context, id *uuid.UUID, delta int64) {
	if id == nil {
		return
	}
	if _, err := h.categories.UpdatePostCount(ctx, *id, delta); err != nil {
		slog.Warn("update category post count failed", "category_id", *id, "delta", delta, "error", err)
		return
	}
	h.cache.InvalidateCategories(ctx)
}

// visible reports whether caller may read post.
func visible(post *models.Post, caller *identity.Identity) bool {
	return post != nil && (post.IsPublished() || caller.IsStaff())
}

func sameUUID(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
