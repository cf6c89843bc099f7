// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// CommentStatus is the moderation state of a comment.
type CommentStatus string

const (
	CommentStatusPending  CommentStatus = "pending"
	CommentStatusApproved CommentStatus = "approved"
	CommentStatusRejected CommentStatus = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s CommentStatus) Valid() bool {
	switch s {
	case CommentStatusPending, CommentStatusApproved, CommentStatusRejected:
		return true
	}
	return false
}

// Comment is a reader comment on a post. ParentID, when set, references a
// comment on the same post.
type Comment struct {
	ID          uuid.UUID     `json:"id"`
	PostID      uuid.UUID     `json:"postId"`
	AuthorID    *uuid.UUID    `json:"authorId,omitempty"`
	AuthorName  string        `json:"authorName"`
	AuthorEmail string        `json:"authorEmail,omitempty"`
	Content     string        `json:"content"`
	ParentID    *uuid.UUID    `json:"parentId,omitempty"`
	Status      CommentStatus `json:"status"`
	LikeCount   int64         `json:"likeCount"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}
