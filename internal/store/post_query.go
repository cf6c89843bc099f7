// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/vue-rookie/blog-platform/internal/models"
)

// Pagination defaults for post listings.
const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// SearchKind selects how Search.Value is matched.
type SearchKind int

const (
	SearchNone SearchKind = iota
	// SearchText matches posts whose title or content contain every term.
	SearchText
	// SearchTag matches posts whose tag set contains Value exactly.
	SearchTag
)

// Search is a discriminated search criterion.
type Search struct {
	Kind  SearchKind
	Value string
}

const tagSearchPrefix = "tags:"

// ParseSearch interprets the raw "search" query parameter. A "tags:" prefix
// selects exact tag membership; anything else is a free-text search.
func ParseSearch(raw string) Search {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Search{}
	}
	if tag, ok := strings.CutPrefix(raw, tagSearchPrefix); ok {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			return Search{}
		}
		return Search{Kind: SearchTag, Value: tag}
	}
	return Search{Kind: SearchText, Value: raw}
}

// SortBy is the ordering of a post listing.
type SortBy string

const (
	SortNewest   SortBy = "newest"
	SortOldest   SortBy = "oldest"
	SortPopular  SortBy = "popular"
	SortComments SortBy = "comments"
)

// ParseSortBy maps the raw "sortBy" parameter to a SortBy. Unknown values
// fall back to SortNewest.
func ParseSortBy(raw string) SortBy {
	switch s := SortBy(strings.ToLower(strings.TrimSpace(raw))); s {
	case SortOldest, SortPopular, SortComments:
		return s
	default:
		return SortNewest
	}
}

// PostFilter selects a page of posts. All set criteria must match.
type PostFilter struct {
	Page       int
	Limit      int
	Status     models.PostStatus // empty matches every status
	AuthorID   *uuid.UUID
	CategoryID *uuid.UUID
	Search     Search
	SortBy     SortBy
}

// Normalize fills defaults and clamps the page window.
func (f PostFilter) Normalize() PostFilter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}
	if f.SortBy == "" {
		f.SortBy = SortNewest
	}
	return f
}

// Offset is the number of rows skipped before the page.
func (f PostFilter) Offset() int64 {
	return pageOffset(f.Page, f.Limit)
}

// PostPage is one page of a post listing. Total counts every row that
// matches the filter, not just this page.
type PostPage struct {
	Posts      []models.Post `json:"posts"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int           `json:"totalPages"`
}

// buildPostQuery translates f into a WHERE clause, its positional args and
// an ORDER BY clause. Column references use the "p" alias for posts.
// Every ordering ends with p.seq so rows with equal sort keys come back in
// insertion order.
func buildPostQuery(f PostFilter) (where string, args []any, orderBy string) {
	var conds []string
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Status != "" {
		conds = append(conds, "p.status = "+arg(string(f.Status)))
	}
	if f.AuthorID != nil {
		conds = append(conds, "p.author_id = "+arg(*f.AuthorID))
	}
	if f.CategoryID != nil {
		conds = append(conds, "p.category_id = "+arg(*f.CategoryID))
	}

	switch f.Search.Kind {
	case SearchTag:
		conds = append(conds, "p.tags @> "+arg(pq.Array([]string{f.Search.Value})))
	case SearchText:
		conds = append(conds, "p.search_vector @@ plainto_tsquery('simple', "+arg(f.Search.Value)+")")
	}

	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	switch f.SortBy {
	case SortOldest:
		orderBy = "ORDER BY p.created_at ASC, p.seq ASC"
	case SortPopular:
		orderBy = "ORDER BY p.view_count DESC, p.seq ASC"
	case SortComments:
		orderBy = "ORDER BY p.comment_count DESC, p.seq ASC"
	default:
		orderBy = "ORDER BY p.created_at DESC, p.seq DESC"
	}

	return where, args, orderBy
}
