// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Reconciler recomputes denormalised counters from their source tables.
type Reconciler struct {
	db *sql.DB
}

// NewReconciler returns a new Reconciler.
func NewReconciler(db *sql.DB) *Reconciler {
	return &Reconciler{db: db}
}

// RecountResult reports how many rows had drifted and were corrected.
type RecountResult struct {
	PostsCorrected      int64 `json:"postsCorrected"`
	CategoriesCorrected int64 `json:"categoriesCorrected"`
}

// Recount sets posts.comment_count to the number of comments per post and
// categories.post_count to the number of posts per category, touching only
// rows whose stored value differs. Both updates commit together.
func (r *Reconciler) Recount(ctx context.Context) (RecountResult, error) {
	var result RecountResult

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return result, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE posts p
		SET comment_count = src.n
		FROM (
			SELECT p2.id, COUNT(c.id) AS n
			FROM posts p2
			LEFT JOIN comments c ON c.post_id = p2.id
			GROUP BY p2.id
		) src
		WHERE p.id = src.id AND p.comment_count <> src.n
	`)
	if err != nil {
		return result, fmt.Errorf("recount comments: %w", err)
	}
	if result.PostsCorrected, err = res.RowsAffected(); err != nil {
		return result, fmt.Errorf("recount comments: %w", err)
	}

	res, err = tx.ExecContext(ctx, `
		UPDATE categories cat
		SET post_count = src.n
		FROM (
			SELECT c2.id, COUNT(p.id) AS n
			FROM categories c2
			LEFT JOIN posts p ON p.category_id = c2.id
			GROUP BY c2.id
		) src
		WHERE cat.id = src.id AND cat.post_count <> src.n
	`)
	if err != nil {
		return result, fmt.Errorf("recount category posts: %w", err)
	}
	if result.CategoriesCorrected, err = res.RowsAffected(); err != nil {
		return result, fmt.Errorf("recount category posts: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return result, fmt.Errorf("commit recount: %w", err)
	}
	return result, nil
}
