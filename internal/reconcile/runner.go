// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package reconcile runs the periodic counter recount that repairs drift in
// the denormalised post and category counters.
package reconcile

import (
	"context"
	"log/slog"
	"time"

	"github.com/vue-rookie/blog-platform/internal/store"
)

// Recounter recomputes denormalised counters from their source tables.
type Recounter interface {
	Recount(ctx context.Context) (store.RecountResult, error)
}

// CategoryCache drops cached category bodies, which embed post counts.
type CategoryCache interface {
	InvalidateCategories(ctx context.Context)
}

// Runner invokes a Recounter on a fixed interval.
type Runner struct {
	recounter Recounter
	cache     CategoryCache
	interval  time.Duration
}

// NewRunner creates a runner. An interval of zero disables it. cache may be
// nil.
func NewRunner(recounter Recounter, cache CategoryCache, interval time.Duration) *Runner {
	return &Runner{recounter: recounter, cache: cache, interval: interval}
}

// Enabled reports whether Run will do any work.
func (r *Runner) Enabled() bool {
	return r.interval > 0
}

// Run blocks until ctx is cancelled, recounting once per interval.
func (r *Runner) Run(ctx context.Context) {
	if !r.Enabled() {
		slog.Info("counter reconciliation disabled")
		return
	}

	slog.Info("counter reconciliation started", "interval", r.interval.String())
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.runOnce(ctx)
		case <-ctx.Done():
			slog.Info("counter reconciliation stopped")
			return
		}
	}
}

func (r *Runner) runOnce(ctx context.Context) {
	start := time.Now()
	result, err := r.recounter.Recount(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		slog.Error("counter recount failed", "error", err)
		return
	}
	if result.CategoriesCorrected > 0 && r.cache != nil {
		r.cache.InvalidateCategories(ctx)
	}

	level := slog.LevelDebug
	if result.PostsCorrected > 0 || result.CategoriesCorrected > 0 {
		level = slog.LevelWarn
	}
	slog.Log(ctx, level, "counter recount finished",
		"posts_corrected", result.PostsCorrected,
		"categories_corrected", result.CategoriesCorrected,
		"duration", time.Since(start).String(),
	)
}
