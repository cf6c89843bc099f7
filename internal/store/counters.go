// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Counter names a denormalised counter column.
type Counter int

const (
	PostViews Counter = iota
	PostComments
	PostLikes
	CategoryPosts
)

type counterColumn struct {
	table  string
	column string
}

var counterColumns = map[Counter]counterColumn{
	PostViews:     {table: "posts", column: "view_count"},
	PostComments:  {table: "posts", column: "comment_count"},
	PostLikes:     {table: "posts", column: "like_count"},
	CategoryPosts: {table: "categories", column: "post_count"},
}

func (c Counter) String() string {
	if col, ok := counterColumns[c]; ok {
		return col.table + "." + col.column
	}
	return fmt.Sprintf("counter(%d)", int(c))
}

// applyDelta is the only code path that changes a counter incrementally.
// The update is a single atomic statement, so concurrent callers never lose
// increments, and the result is clamped at zero. It reports whether the
// owning row exists.
func applyDelta(ctx context.Context, ex execer, c Counter, id uuid.UUID, delta int64) (bool, error) {
	col, ok := counterColumns[c]
	if !ok {
		return false, fmt.Errorf("apply delta: unknown counter %d", int(c))
	}

	query := fmt.Sprintf(
		`UPDATE %s SET %s = GREATEST(%s + $1, 0) WHERE id = $2`,
		col.table, col.column, col.column,
	)
	res, err := ex.ExecContext(ctx, query, delta, id)
	if err != nil {
		return false, fmt.Errorf("apply delta to %s: %w", c, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("apply delta to %s: %w", c, err)
	}
	return n > 0, nil
}
