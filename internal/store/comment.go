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

	"github.com/google/uuid"

	"github.com/vue-rookie/blog-platform/internal/apperr"
	"github.com/vue-rookie/blog-platform/internal/identity"
	"github.com/vue-rookie/blog-platform/internal/models"
)

// DefaultCommentLimit is the admin listing page size.
const DefaultCommentLimit = 20

// CommentStore manages comments and keeps posts.comment_count in step with
// comment creation and deletion.
type CommentStore struct {
	db *sql.DB
}

// NewCommentStore returns a new CommentStore.
func NewCommentStore(db *sql.DB) *CommentStore {
	return &CommentStore{db: db}
}

const commentColumns = `id, post_id, author_id, author_name, author_email, content,
	parent_id, status, like_count, created_at, updated_at`

func scanComment(row scanner) (*models.Comment, error) {
	var c models.Comment
	err := row.Scan(
		&c.ID, &c.PostID, &c.AuthorID, &c.AuthorName, &c.AuthorEmail, &c.Content,
		&c.ParentID, &c.Status, &c.LikeCount, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCommentInput holds a new comment. AuthorName and AuthorEmail are
// only read for anonymous callers.
type CreateCommentInput struct {
	PostID      uuid.UUID
	Content     string
	AuthorName  string
	AuthorEmail string
	ParentID    *uuid.UUID
}

// Create inserts an approved comment and increments the post's comment
// count in the same transaction. Signed-in callers comment under their own
// name; anonymous callers must supply a name and an email.
func (s *CommentStore) Create(ctx context.Context, author *identity.Identity, in CreateCommentInput) (*models.Comment, error) {
	content := strings.TrimSpace(in.Content)
	if in.PostID == uuid.Nil || content == "" {
		return nil, apperr.Validation("Post ID and content are required")
	}

	var authorID *uuid.UUID
	name, email := strings.TrimSpace(in.AuthorName), strings.TrimSpace(in.AuthorEmail)
	if author != nil {
		authorID = &author.UserID
		name, email = author.Username, author.Email
	} else if name == "" || email == "" {
		return nil, apperr.Validation("Name and email are required for anonymous comments")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if in.ParentID != nil {
		var parentPost uuid.UUID
		err := tx.QueryRowContext(ctx, `SELECT post_id FROM comments WHERE id = $1`, *in.ParentID).Scan(&parentPost)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperr.Validation("Parent comment not found")
		}
		if err != nil {
			return nil, fmt.Errorf("find parent comment: %w", err)
		}
		if parentPost != in.PostID {
			return nil, apperr.Validation("Parent comment belongs to a different post")
		}
	}

	ok, err := applyDelta(ctx, tx, PostComments, in.PostID, 1)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	if !ok {
		return nil, apperr.NotFound("Post not found")
	}

	row := tx.QueryRowContext(ctx, `
		INSERT INTO comments (post_id, author_id, author_name, author_email, content, parent_id, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+commentColumns,
		in.PostID, authorID, name, email, content, in.ParentID, string(models.CommentStatusApproved),
	)
	c, err := scanComment(row)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit comment: %w", err)
	}
	return c, nil
}

// ListByPost returns the approved comments of a post, newest first.
func (s *CommentStore) ListByPost(ctx context.Context, postID uuid.UUID) ([]models.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+commentColumns+`
		FROM comments
		WHERE post_id = $1 AND status = 'approved'
		ORDER BY created_at DESC, id DESC
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments by post: %w", err)
	}
	defer rows.Close()
	return collectComments(rows)
}

// CommentFilter selects a page of comments for moderation.
type CommentFilter struct {
	Page   int
	Limit  int
	Status models.CommentStatus // empty matches every status
}

// CommentPage is one page of the moderation listing.
type CommentPage struct {
	Comments   []models.Comment `json:"comments"`
	Total      int64            `json:"total"`
	Page       int              `json:"page"`
	Limit      int              `json:"limit"`
	TotalPages int              `json:"totalPages"`
}

// List returns comments of every post, newest first, with the total over
// the same filter.
func (s *CommentStore) List(ctx context.Context, f CommentFilter) (*CommentPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultCommentLimit
	}
	if f.Limit > MaxPageLimit {
		f.Limit = MaxPageLimit
	}

	where := ""
	var args []any
	if f.Status != "" {
		where = "WHERE status = $1"
		args = append(args, string(f.Status))
	}

	var total int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM comments `+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count comments: %w", err)
	}

	page := &CommentPage{
		Comments:   []models.Comment{},
		Total:      total,
		Page:       f.Page,
		Limit:      f.Limit,
		TotalPages: totalPages(total, f.Limit),
	}
	offset := pageOffset(f.Page, f.Limit)
	if offset >= total {
		return page, nil
	}

	n := len(args)
	rows, err := s.db.QueryContext(ctx,
		fmt.Sprintf(`SELECT %s FROM comments %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
			commentColumns, where, n+1, n+2),
		append(args, f.Limit, offset)...,
	)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	if page.Comments, err = collectComments(rows); err != nil {
		return nil, err
	}
	return page, nil
}

// FindByID retrieves a comment by ID. Returns nil if not found.
func (s *CommentStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id)
	c, err := scanComment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find comment by id: %w", err)
	}
	return c, nil
}

// UpdateStatus moves a comment to any moderation status. Only a real change
// touches the row; setting the status it already has leaves updated_at
// alone. Returns false when no comment has the given id.
func (s *CommentStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.CommentStatus) (bool, error) {
	if !status.Valid() {
		return false, apperr.Validation("Invalid status %q", status)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE comments SET status = $1, updated_at = NOW() WHERE id = $2 AND status <> $1`, string(status), id)
	if err != nil {
		return false, fmt.Errorf("update comment status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update comment status: %w", err)
	}
	if n > 0 {
		return true, nil
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM comments WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("update comment status: %w", err)
	}
	return exists, nil
}

// Delete removes a comment and decrements its post's comment count in the
// same transaction. Returns false, and changes nothing, when no comment
// has the given id.
func (s *CommentStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var postID uuid.UUID
	err = tx.QueryRowContext(ctx, `DELETE FROM comments WHERE id = $1 RETURNING post_id`, id).Scan(&postID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("delete comment: %w", err)
	}

	// The post may already be gone; the comment is still deleted.
	if _, err := applyDelta(ctx, tx, PostComments, postID, -1); err != nil {
		return false, fmt.Errorf("delete comment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit comment delete: %w", err)
	}
	return true, nil
}

func collectComments(rows *sql.Rows) ([]models.Comment, error) {
	comments := []models.Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, *c)
	}
	return comments, rows.Err()
}
