// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditEntry records one administrative mutation.
type AuditEntry struct {
	ID         int64      `json:"id"`
	ActorID    *uuid.UUID `json:"actorId,omitempty"`
	EntityType string     `json:"entityType"`
	EntityID   uuid.UUID  `json:"entityId"`
	Action     string     `json:"action"`
	CreatedAt  time.Time  `json:"createdAt"`
}
