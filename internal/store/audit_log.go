// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// audit_log.go records administrative mutations for later review. Each
// entry captures who changed which entity, and how (create/update/delete).
package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/vue-rookie/blog-platform/internal/identity"
	"github.com/vue-rookie/blog-platform/internal/models"
)

// AuditLogStore handles audit log operations.
type AuditLogStore struct {
	db *sql.DB
}

// NewAuditLogStore creates a new AuditLogStore.
func NewAuditLogStore(db *sql.DB) *AuditLogStore {
	return &AuditLogStore{db: db}
}

// Log records a mutation. It is best-effort: failures are logged and
// never returned.
func (s *AuditLogStore) Log(ctx context.Context, actor *identity.Identity, entityType string, entityID uuid.UUID, action string) {
	var actorID *uuid.UUID
	if actor != nil {
		actorID = &actor.UserID
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audit_log (actor_id, entity_type, entity_id, action)
		VALUES ($1, $2, $3, $4)
	`, actorID, entityType, entityID, action)
	if err != nil {
		slog.Warn("failed to write audit log",
			"entity_type", entityType,
			"entity_id", entityID,
			"action", action,
			"error", err,
		)
		return
	}
	slog.Debug("audit log written",
		"entity_type", entityType,
		"entity_id", entityID,
		"action", action,
	)
}

// Recent returns the most recent entries, newest first.
func (s *AuditLogStore) Recent(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	if limit < 1 || limit > MaxPageLimit {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, actor_id, entity_type, entity_id, action, created_at
		FROM audit_log
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	entries := []models.AuditEntry{}
	for rows.Next() {
		var e models.AuditEntry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.EntityType, &e.EntityID, &e.Action, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
