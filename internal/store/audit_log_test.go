// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/vue-rookie/blog-platform/internal/models"
)

func TestAuditLogStoreLog(t *testing.T) {
	db := testDB(t)
	s := NewAuditLogStore(db)
	actor := testAuthor(t, db, models.RoleAdmin)
	ctx := context.Background()

	entityID := uuid.New()
	t.Cleanup(func() { db.Exec("DELETE FROM audit_log WHERE entity_id = $1", entityID) })

	// Log should not error (best-effort).
	s.Log(ctx, actor, "post", entityID, "delete")
	s.Log(ctx, nil, "comment", entityID, "create")

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM audit_log WHERE entity_id = $1", entityID).Scan(&count); err != nil {
		t.Fatalf("query: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 log entries, got %d", count)
	}
}

func TestAuditLogStoreRecent(t *testing.T) {
	db := testDB(t)
	s := NewAuditLogStore(db)
	ctx := context.Background()

	id1, id2 := uuid.New(), uuid.New()
	s.Log(ctx, nil, "category", id1, "create")
	s.Log(ctx, nil, "category", id2, "delete")
	t.Cleanup(func() {
		db.Exec("DELETE FROM audit_log WHERE entity_id IN ($1, $2)", id1, id2)
	})

	entries, err := s.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(entries) < 2 {
		t.Fatalf("expected at least 2 entries, got %d", len(entries))
	}
	if entries[0].CreatedAt.Before(entries[1].CreatedAt) {
		t.Error("expected entries ordered by created_at DESC")
	}
}
