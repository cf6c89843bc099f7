// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/vue-rookie/blog-platform/internal/apperr"
	"github.com/vue-rookie/blog-platform/internal/cache"
	"github.com/vue-rookie/blog-platform/internal/identity"
	"github.com/vue-rookie/blog-platform/internal/models"
	"github.com/vue-rookie/blog-platform/internal/store"
)

// CategoryRepository is the category persistence used by Categories.
type CategoryRepository interface {
	Create(ctx context.Context, in store.CreateCategoryInput) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	FindBySlug(ctx context.Context, slug string) (*models.Category, error)
	Update(ctx context.Context, id uuid.UUID, patch store.CategoryPatch) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// ResponseCache stores encoded public responses.
type ResponseCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, body []byte)
	CacheInvalidator
}

// Categories groups the category endpoints.
type Categories struct {
	categories CategoryRepository
	cache      ResponseCache
	audit      AuditLogger
}

// NewCategories creates the Categories handler group.
func NewCategories(categories CategoryRepository, cache ResponseCache, audit AuditLogger) *Categories {
	return &Categories{categories: categories, cache: cache, audit: audit}
}

// List handles GET /categories (cached).
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	h.cached(w, r, cache.CategoryListKey(), func() (any, error) {
		list, err := h.categories.List(r.Context())
		if err != nil {
			return nil, err
		}
		return map[string]any{"categories": list}, nil
	})
}

// GetBySlug handles GET /categories/{slug} (cached).
func (h *Categories) GetBySlug(w http.ResponseWriter, r *http.Request) {
	catSlug := chi.URLParam(r, "slug")
	h.cached(w, r, cache.CategorySlugKey(catSlug), func() (any, error) {
		c, err := h.categories.FindBySlug(r.Context(), catSlug)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, apperr.NotFound("Category not found")
		}
		return map[string]any{"category": c}, nil
	})
}

// cached serves key from the response cache, or builds, stores and serves
// it. Errors are never cached.
func (h *Categories) cached(w http.ResponseWriter, r *http.Request, key string, build func() (any, error)) {
	if body, ok := h.cache.Get(r.Context(), key); ok {
		w.Header().Set("X-Cache", "HIT")
		writeRawJSON(w, http.StatusOK, body)
		return
	}

	v, err := build()
	if err != nil {
		writeError(w, r, err)
		return
	}
	body, err := json.Marshal(v)
	if err != nil {
		writeError(w, r, apperr.Internal("encode categories", err))
		return
	}
	h.cache.Set(r.Context(), key, body)

	w.Header().Set("X-Cache", "MISS")
	writeRawJSON(w, http.StatusOK, body)
}

// AdminList handles GET /admin/categories, bypassing the cache.
func (h *Categories) AdminList(w http.ResponseWriter, r *http.Request) {
	list, err := h.categories.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": list})
}

// Create handles POST /admin/categories. A duplicate slug is rejected.
func (h *Categories) Create(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validationError(req.Validate()); err != nil {
		writeError(w, r, err)
		return
	}

	c, err := h.categories.Create(r.Context(), store.CreateCategoryInput{
		Name:        plainText(req.Name),
		Slug:        req.Slug,
		Description: plainText(req.Description),
		Color:       req.Color,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.cache.InvalidateCategories(r.Context())
	h.audit.Log(r.Context(), identity.FromContext(r.Context()), "category", c.ID, "create")
	writeJSON(w, http.StatusCreated, map[string]any{
		"message":    "Category created successfully",
		"categoryId": c.ID,
	})
}

// Update handles PUT /admin/categories/{id}.
func (h *Categories) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "Category")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req updateCategoryRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validationError(req.Validate()); err != nil {
		writeError(w, r, err)
		return
	}

	ok, err := h.categories.Update(r.Context(), id, store.CategoryPatch{
		Name:        sanitizePtr(req.Name),
		Slug:        req.Slug,
		Description: sanitizePtr(req.Description),
		Color:       req.Color,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		writeError(w, r, apperr.NotFound("Category not found"))
		return
	}

	h.cache.InvalidateCategories(r.Context())
	h.audit.Log(r.Context(), identity.FromContext(r.Context()), "category", id, "update")
	writeMessage(w, http.StatusOK, "Category updated successfully")
}

// Delete handles DELETE /admin/categories/{id}. Posts in the category keep
// their categoryId.
func (h *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "Category")
	if err != nil {
		writeError(w, r, err)
		return
	}

	ok, err := h.categories.Delete(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		writeError(w, r, apperr.NotFound("Category not found"))
		return
	}

	h.cache.InvalidateCategories(r.Context())
	h.audit.Log(r.Context(), identity.FromContext(r.Context()), "category", id, "delete")
	writeMessage(w, http.StatusOK, "Category deleted successfully")
}
