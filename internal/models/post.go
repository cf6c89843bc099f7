// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// PostStatus represents the publishing state of a post.
type PostStatus string

const (
	PostStatusDraft     PostStatus = "draft"
	PostStatusPublished PostStatus = "published"
	PostStatusArchived  PostStatus = "archived"
)

// Valid reports whether s is one of the known statuses.
func (s PostStatus) Valid() bool {
	switch s {
	case PostStatusDraft, PostStatusPublished, PostStatusArchived:
		return true
	}
	return false
}

// ExcerptLength is the number of characters kept when an excerpt is derived
// from the post content.
const ExcerptLength = 200

// Post is a blog article. ViewCount, LikeCount and CommentCount are
// denormalised counters owned by the store.
type Post struct {
	ID             uuid.UUID  `json:"id"`
	Title          string     `json:"title"`
	Slug           string     `json:"slug"`
	Content        string     `json:"content"`
	Excerpt        string     `json:"excerpt"`
	FeaturedImage  *string    `json:"featuredImage,omitempty"`
	AuthorID       uuid.UUID  `json:"authorId"`
	AuthorName     string     `json:"authorName,omitempty"`
	CategoryID     *uuid.UUID `json:"categoryId,omitempty"`
	Tags           []string   `json:"tags"`
	Status         PostStatus `json:"status"`
	PublishedAt    *time.Time `json:"publishedAt,omitempty"`
	ViewCount      int64      `json:"viewCount"`
	LikeCount      int64      `json:"likeCount"`
	CommentCount   int64      `json:"commentCount"`
	SEOTitle       *string    `json:"seoTitle,omitempty"`
	SEODescription *string    `json:"seoDescription,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// IsPublished returns true if the post is publicly visible.
func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}

// DeriveExcerpt returns the first ExcerptLength characters of content.
// Runes are counted, not bytes, so multi-byte text is never split.
func DeriveExcerpt(content string) string {
	r := []rune(content)
	if len(r) <= ExcerptLength {
		return content
	}
	return string(r[:ExcerptLength])
}

// TagCount is one entry of the tag cloud.
type TagCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}
