// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/vue-rookie/blog-platform/internal/apperr"
)

// writeError renders the {"error": "..."} envelope for requests rejected
// before they reach a handler.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	writeErrorStatus(w, r, apperr.HTTPStatus(err), apperr.PublicMessage(err))
}

func writeErrorStatus(w http.ResponseWriter, r *http.Request, status int, msg string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": msg}); err != nil {
		slog.Warn("write error response failed", "path", r.URL.Path, "error", err)
	}
}
