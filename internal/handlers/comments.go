// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/vue-rookie/blog-platform/internal/apperr"
	"github.com/vue-rookie/blog-platform/internal/identity"
	"github.com/vue-rookie/blog-platform/internal/models"
	"github.com/vue-rookie/blog-platform/internal/store"
)

// CommentRepository is the comment persistence used by Comments.
type CommentRepository interface {
	Create(ctx context.Context, author *identity.Identity, in store.CreateCommentInput) (*models.Comment, error)
	ListByPost(ctx context.Context, postID uuid.UUID) ([]models.Comment, error)
	List(ctx context.Context, f store.CommentFilter) (*store.CommentPage, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.CommentStatus) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
}

// Comments groups the comment endpoints.
type Comments struct {
	comments CommentRepository
	audit    AuditLogger
}

// NewComments creates the Comments handler group.
func NewComments(comments CommentRepository, audit AuditLogger) *Comments {
	return &Comments{comments: comments, audit: audit}
}

// ListByPost handles GET /comments?postId=...
func (h *Comments) ListByPost(w http.ResponseWriter, r *http.Request) {
	postID, err := queryUUID(r, "postId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if postID == nil {
		writeError(w, r, apperr.Validation("postId is required"))
		return
	}

	comments, err := h.comments.ListByPost(r.Context(), *postID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"comments": comments})
}

// Create handles POST /comments. Anonymous callers must supply a name and
// an email; signed-in callers comment under their username.
func (h *Comments) Create(w http.ResponseWriter, r *http.Request) {
	var req createCommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	caller := identity.FromContext(r.Context())
	req = req.forCaller(caller)
	if err := validationError(req.Validate()); err != nil {
		writeError(w, r, err)
		return
	}

	c, err := h.comments.Create(r.Context(), caller, req.input())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":   "Comment created successfully",
		"commentId": c.ID,
	})
}

// AdminList handles GET /admin/comments.
func (h *Comments) AdminList(w http.ResponseWriter, r *http.Request) {
	f := store.CommentFilter{
		Page:  queryInt(r, "page", 1),
		Limit: queryInt(r, "limit", store.DefaultCommentLimit),
	}
	if raw := r.URL.Query().Get("status"); raw != "" {
		f.Status = models.CommentStatus(raw)
		if !f.Status.Valid() {
			writeError(w, r, apperr.Validation("Invalid status %q", raw))
			return
		}
	}

	page, err := h.comments.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// UpdateStatus handles PUT /admin/comments/{id}. Any status may follow any
// other.
func (h *Comments) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "Comment")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req commentStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := validationError(req.Validate()); err != nil {
		writeError(w, r, err)
		return
	}

	ok, err := h.comments.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		writeError(w, r, apperr.NotFound("Comment not found"))
		return
	}

	h.audit.Log(r.Context(), identity.FromContext(r.Context()), "comment", id, "status:"+string(req.Status))
	writeMessage(w, http.StatusOK, "Comment status updated successfully")
}

// Delete handles DELETE /comments/{id} and DELETE /admin/comments/{id}.
func (h *Comments) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "Comment")
	if err != nil {
		writeError(w, r, err)
		return
	}

	ok, err := h.comments.Delete(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !ok {
		writeError(w, r, apperr.NotFound("Comment not found"))
		return
	}

	h.audit.Log(r.Context(), identity.FromContext(r.Context()), "comment", id, "delete")
	writeMessage(w, http.StatusOK, "Comment deleted successfully")
}
