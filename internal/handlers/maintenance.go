// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/vue-rookie/blog-platform/internal/models"
	"github.com/vue-rookie/blog-platform/internal/store"
)

// Recounter recomputes denormalised counters.
type Recounter interface {
	Recount(ctx context.Context) (store.RecountResult, error)
}

// AuditReader lists recent audit entries.
type AuditReader interface {
	Recent(ctx context.Context, limit int) ([]models.AuditEntry, error)
}

// Maintenance groups admin-only operational endpoints.
type Maintenance struct {
	recounter Recounter
	audit     AuditReader
	cache     CacheInvalidator
}

// NewMaintenance creates the Maintenance handler group.
func NewMaintenance(recounter Recounter, audit AuditReader, cache CacheInvalidator) *Maintenance {
	return &Maintenance{recounter: recounter, audit: audit, cache: cache}
}

// Recount handles POST /admin/maintenance/recount.
func (h *Maintenance) Recount(w http.ResponseWriter, r *http.Request) {
	result, err := h.recounter.Recount(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if result.CategoriesCorrected > 0 {
		h.cache.InvalidateCategories(r.Context())
	}
	slog.Info("manual recount finished",
		"posts_corrected", result.PostsCorrected,
		"categories_corrected", result.CategoriesCorrected,
	)
	writeSuccess(w, http.StatusOK, result, "Counters recomputed")
}

// Audit handles GET /admin/audit?limit.
func (h *Maintenance) Audit(w http.ResponseWriter, r *http.Request) {
	entries, err := h.audit.Recent(r.Context(), queryInt(r, "limit", 50))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
