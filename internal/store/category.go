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
	"github.com/vue-rookie/blog-platform/internal/models"
	"github.com/vue-rookie/blog-platform/internal/slug"
)

// CategoryStore manages categories in the database.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, slug, description, color, post_count, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(row scanner) (*models.Category, error) {
	var c models.Category
	err := row.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description,
		&c.Color, &c.PostCount, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

const errDuplicateCategory = "Category with this slug already exists"

// CreateCategoryInput holds the fields accepted when creating a category.
// An empty Slug is derived from Name; an empty Color uses the default.
type CreateCategoryInput struct {
	Name        string
	Slug        string
	Description string
	Color       string
}

// Create inserts a new category. Unlike posts, a slug collision is never
// resolved by renaming: it fails with a Conflict and nothing is written.
func (s *CategoryStore) Create(ctx context.Context, in CreateCategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperr.Validation("Name and slug are required")
	}

	hint := in.Slug
	if strings.TrimSpace(hint) == "" {
		hint = name
	}
	catSlug := slug.Generate(hint)
	if catSlug == "" {
		return nil, apperr.Validation("Slug must contain letters or digits")
	}

	color := strings.TrimSpace(in.Color)
	if color == "" {
		color = models.DefaultCategoryColor
	}

	existing, err := s.FindBySlug(ctx, catSlug)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict(errDuplicateCategory, nil)
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO categories (name, slug, description, color)
		VALUES ($1, $2, $3, $4)
		RETURNING `+categoryColumns,
		name, catSlug, strings.TrimSpace(in.Description), color,
	)
	c, err := scanCategory(row)
	if isUniqueViolation(err, "categories_slug_key") {
		return nil, apperr.Conflict(errDuplicateCategory, err)
	}
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

// List returns all categories ordered by name.
func (s *CategoryStore) List(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+categoryColumns+` FROM categories ORDER BY name ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	items := []models.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// FindBySlug retrieves a category by slug. Returns nil if not found.
func (s *CategoryStore) FindBySlug(ctx context.Context, catSlug string) (*models.Category, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+categoryColumns+` FROM categories WHERE slug = $1`, catSlug)
	c, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by slug: %w", err)
	}
	return c, nil
}

// CategoryPatch lists the fields to change; nil pointers are left untouched.
type CategoryPatch struct {
	Name        *string
	Slug        *string
	Description *string
	Color       *string
}

// Update modifies an existing category. A slug in the patch is
// re-normalised and must not belong to another category. Returns false
// when no category has the given id.
func (s *CategoryStore) Update(ctx context.Context, id uuid.UUID, patch CategoryPatch) (bool, error) {
	var sets []string
	var args []any
	set := func(column string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return false, apperr.Validation("Name cannot be empty")
		}
		set("name", name)
	}
	if patch.Slug != nil {
		catSlug := slug.Generate(*patch.Slug)
		if catSlug == "" {
			return false, apperr.Validation("Slug must contain letters or digits")
		}
		existing, err := s.FindBySlug(ctx, catSlug)
		if err != nil {
			return false, err
		}
		if existing != nil && existing.ID != id {
			return false, apperr.Conflict(errDuplicateCategory, nil)
		}
		set("slug", catSlug)
	}
	if patch.Description != nil {
		set("description", strings.TrimSpace(*patch.Description))
	}
	if patch.Color != nil {
		color := strings.TrimSpace(*patch.Color)
		if color == "" {
			color = models.DefaultCategoryColor
		}
		set("color", color)
	}

	sets = append(sets, "updated_at = NOW()")
	args = append(args, id)
	res, err := s.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE categories SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args)),
		args...,
	)
	if isUniqueViolation(err, "categories_slug_key") {
		return false, apperr.Conflict(errDuplicateCategory, err)
	}
	if err != nil {
		return false, fmt.Errorf("update category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update category: %w", err)
	}
	return n > 0, nil
}

// Delete removes a category by ID. Posts keep their category_id.
func (s *CategoryStore) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete category: %w", err)
	}
	return n > 0, nil
}

// UpdatePostCount atomically moves the category's post count by delta.
// Callers invoke it whenever a post enters or leaves the category.
func (s *CategoryStore) UpdatePostCount(ctx context.Context, id uuid.UUID, delta int64) (bool, error) {
	return applyDelta(ctx, s.db, CategoryPosts, id, delta)
}
