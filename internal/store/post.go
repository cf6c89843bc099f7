// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/vue-rookie/blog-platform/internal/apperr"
	"github.com/vue-rookie/blog-platform/internal/identity"
	"github.com/vue-rookie/blog-platform/internal/models"
	"github.com/vue-rookie/blog-platform/internal/slug"
)

// slugInsertAttempts bounds the retries after losing a slug race to a
// concurrent insert.
const slugInsertAttempts = 3

// fallbackSlug is used when a title contains no slug-able characters.
const fallbackSlug = "untitled"

// PostStore handles all post-related database operations, including the
// listing query engine and the post counters.
type PostStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostStore creates a new PostStore with the given database connection.
func NewPostStore(db *sql.DB) *PostStore {
	return &PostStore{db: db, now: time.Now}
}

const postColumns = `p.id, p.title, p.slug, p.content, p.excerpt, p.featured_image,
	p.author_id, COALESCE(u.username, ''), p.category_id, p.tags, p.status,
	p.published_at, p.view_count, p.like_count, p.comment_count,
	p.seo_title, p.seo_description, p.created_at, p.updated_at`

const postFrom = `posts p LEFT JOIN users u ON u.id = p.author_id`

func scanPost(row scanner) (*models.Post, error) {
	var p models.Post
	var tags pq.StringArray
	err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.Content, &p.Excerpt, &p.FeaturedImage,
		&p.AuthorID, &p.AuthorName, &p.CategoryID, &tags, &p.Status,
		&p.PublishedAt, &p.ViewCount, &p.LikeCount, &p.CommentCount,
		&p.SEOTitle, &p.SEODescription, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	p.Tags = []string(tags)
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return &p, nil
}

// CreatePostInput holds the fields accepted when creating a post. Slug is
// only a hint; the stored slug is always normalised and unique.
type CreatePostInput struct {
	Title          string
	Content        string
	Slug           string
	Excerpt        *string
	FeaturedImage  *string
	CategoryID     *uuid.UUID
	Tags           []string
	Status         models.PostStatus
	SEOTitle       *string
	SEODescription *string
}

// Create inserts a new post owned by author. Defaults: status draft, empty
// tag set, excerpt derived from content. A published post gets publishedAt
// set to now. If the slug is taken, a timestamp suffix is appended.
func (s *PostStore) Create(ctx context.Context, author *identity.Identity, in CreatePostInput) (*models.Post, error) {
	if author == nil {
		return nil, apperr.Authentication("Authentication required")
	}

	title := strings.TrimSpace(in.Title)
	if title == "" || strings.TrimSpace(in.Content) == "" {
		return nil, apperr.Validation("Title and content are required")
	}

	status := in.Status
	if status == "" {
		status = models.PostStatusDraft
	}
	if !status.Valid() {
		return nil, apperr.Validation("Invalid status %q", status)
	}

	excerpt := models.DeriveExcerpt(in.Content)
	if in.Excerpt != nil && strings.TrimSpace(*in.Excerpt) != "" {
		excerpt = *in.Excerpt
	}

	hint := in.Slug
	if strings.TrimSpace(hint) == "" {
		hint = title
	}
	base := slug.Generate(hint)
	if base == "" {
		base = fallbackSlug
	}

	candidate, err := s.availableSlug(ctx, base, uuid.Nil)
	if err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		p, err := s.insert(ctx, author.UserID, title, candidate, excerpt, status, normalizeTags(in.Tags), in)
		if err == nil {
			p.AuthorName = author.Username
			return p, nil
		}
		if !isUniqueViolation(err, "posts_slug_key") || attempt >= slugInsertAttempts {
			return nil, fmt.Errorf("create post: %w", err)
		}
		candidate = slug.WithSuffix(base, s.now(), attempt)
	}
}

func (s *PostStore) insert(
	ctx context.Context, authorID uuid.UUID, title, postSlug, excerpt string,
	status models.PostStatus, tags []string, in CreatePostInput,
) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx, `
		WITH p AS (
			INSERT INTO posts (title, slug, content, excerpt, featured_image, author_id,
			                   category_id, tags, status, published_at, seo_title, seo_description)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9,
			        CASE WHEN $9::text = 'published' THEN NOW() END, $10, $11)
			RETURNING *
		)
		SELECT `+postColumns+` FROM p LEFT JOIN users u ON u.id = p.author_id`,
		title, postSlug, in.Content, excerpt, in.FeaturedImage, authorID,
		in.CategoryID, pq.Array(tags), string(status), in.SEOTitle, in.SEODescription,
	)
	return scanPost(row)
}

// availableSlug returns base if no other post uses it, otherwise base with
// a timestamp suffix. The unique index remains the real guard.
func (s *PostStore) availableSlug(ctx context.Context, base string, self uuid.UUID) (string, error) {
	var taken bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM posts WHERE slug = $1 AND id <> $2)`, base, self,
	).Scan(&taken)
	if err != nil {
		return "", fmt.Errorf("check post slug: %w", err)
	}
	if !taken {
		return base, nil
	}
	return slug.WithSuffix(base, s.now(), 0), nil
}

// PostPatch lists the fields to change; nil pointers are left untouched.
// ClearCategory removes the category and takes precedence over CategoryID.
type PostPatch struct {
	Title          *string
	Content        *string
	Slug           *string
	Excerpt        *string
	FeaturedImage  *string
	CategoryID     *uuid.UUID
	ClearCategory  bool
	Tags           *[]string
	Status         *models.PostStatus
	SEOTitle       *string
	SEODescription *string
}

// Update merges patch into the post. A slug in the patch is re-normalised
// and re-checked for uniqueness against every other post. Moving into
// published sets publishedAt only if it has never been set. Returns false
// when no post has the given id.
func (s *PostStore) Update(ctx context.Context, id uuid.UUID, patch PostPatch) (bool, error) {
	var sets []string
	var args []any
	set := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return false, apperr.Validation("Title cannot be empty")
		}
		set("title", title)
	}
	if patch.Content != nil {
		if strings.TrimSpace(*patch.Content) == "" {
			return false, apperr.Validation("Content cannot be empty")
		}
		set("content", *patch.Content)
	}
	if patch.Excerpt != nil {
		set("excerpt", *patch.Excerpt)
	}
	if patch.FeaturedImage != nil {
		set("featured_image", *patch.FeaturedImage)
	}
	switch {
	case patch.ClearCategory:
		set("category_id", nil)
	case patch.CategoryID != nil:
		set("category_id", *patch.CategoryID)
	}
	if patch.Tags != nil {
		set("tags", pq.Array(normalizeTags(*patch.Tags)))
	}
	if patch.SEOTitle != nil {
		set("seo_title", *patch.SEOTitle)
	}
	if patch.SEODescription != nil {
		set("seo_description", *patch.SEODescription)
	}
	if patch.Status != nil {
		if !patch.Status.Valid() {
			return false, apperr.Validation("Invalid status %q", *patch.Status)
		}
		set("status", string(*patch.Status))
		args = append(args, string(*patch.Status))
		sets = append(sets, fmt.Sprintf(
			"published_at = CASE WHEN $%d::text = 'published' AND published_at IS NULL THEN NOW() ELSE published_at END",
			len(args)))
	}

	var base string
	slugArg := -1
	if patch.Slug != nil {
		base = slug.Generate(*patch.Slug)
		if base == "" {
			return false, apperr.Validation("Slug must contain letters or digits")
		}
		candidate, err := s.availableSlug(ctx, base, id)
		if err != nil {
			return false, err
		}
		set("slug", candidate)
		slugArg = len(args) - 1
	}

	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE posts SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))

	for attempt := 1; ; attempt++ {
		res, err := s.db.ExecContext(ctx, query, args...)
		if err == nil {
			n, err := res.RowsAffected()
			if err != nil {
				return false, fmt.Errorf("update post: %w", err)
			}
			return n > 0, nil
		}
		if slugArg < 0 || !isUniqueViolation(err, "posts_slug_key") || attempt >= slugInsertAttempts {
			return false, fmt.Errorf("update post: %w", err)
		}
		args[slugArg] = slug.WithSuffix(base, s.now(), attempt)
	}
}

// Delete removes a post by ID. Comments referencing it are kept. Returns
// false when no post had the given id.
func (s *PostStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete post: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete post: %w", err)
	}
	return n > 0, nil
}

// FindByID retrieves a post by its UUID. Returns nil if not found.
func (s *PostStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM `+postFrom+` WHERE p.id = $1`, id)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by id: %w", err)
	}
	return p, nil
}

// FindBySlug retrieves a post of any status by its slug. Returns nil if
// not found; visibility is the caller's decision.
func (s *PostStore) FindBySlug(ctx context.Context, postSlug string) (*models.Post, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+postColumns+` FROM `+postFrom+` WHERE p.slug = $1`, postSlug)
	p, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post by slug: %w", err)
	}
	return p, nil
}

// List runs the listing query: conjunctive filters, the selected ordering
// and a page window, plus the total over the same filter. No matches is
// an empty page, not an error.
func (s *PostStore) List(ctx context.Context, filter PostFilter) (*PostPage, error) {
	f := filter.Normalize()
	where, args, orderBy := buildPostQuery(f)

	var total int64
	if err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM posts p `+where, args...,
	).Scan(&total); err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}

	page := &PostPage{
		Posts:      []models.Post{},
		Total:      total,
		Page:       f.Page,
		Limit:      f.Limit,
		TotalPages: totalPages(total, f.Limit),
	}
	offset := f.Offset()
	if offset >= total {
		return page, nil
	}

	n := len(args)
	query := fmt.Sprintf(`SELECT %s FROM %s %s %s LIMIT $%d OFFSET $%d`,
		postColumns, postFrom, where, orderBy, n+1, n+2)
	rows, err := s.db.QueryContext(ctx, query, append(args, f.Limit, offset)...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		page.Posts = append(page.Posts, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return page, nil
}

// IncrementViewCount atomically adds one view to the post.
func (s *PostStore) IncrementViewCount(ctx context.Context, id uuid.UUID) error {
	ok, err := applyDelta(ctx, s.db, PostViews, id, 1)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("Post not found")
	}
	return nil
}

// ApplyDelta changes one of the post counters by delta. Reports whether
// the post exists.
func (s *PostStore) ApplyDelta(ctx context.Context, id uuid.UUID, c Counter, delta int64) (bool, error) {
	switch c {
	case PostViews, PostComments, PostLikes:
		return applyDelta(ctx, s.db, c, id, delta)
	default:
		return false, fmt.Errorf("apply delta: %s is not a post counter", c)
	}
}

// TagCounts returns every tag used by a published post with the number of
// published posts carrying it, most used first.
func (s *PostStore) TagCounts(ctx context.Context) ([]models.TagCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tag, COUNT(*) AS n
		FROM posts, unnest(tags) AS tag
		WHERE status = 'published'
		GROUP BY tag
		ORDER BY n DESC, tag ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("tag counts: %w", err)
	}
	defer rows.Close()

	tags := []models.TagCount{}
	for rows.Next() {
		var tc models.TagCount
		if err := rows.Scan(&tc.Name, &tc.Count); err != nil {
			return nil, fmt.Errorf("scan tag count: %w", err)
		}
		tags = append(tags, tc)
	}
	return tags, rows.Err()
}

// normalizeTags trims tags, drops empty ones and removes duplicates while
// keeping the first occurrence's position.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
