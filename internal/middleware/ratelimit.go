// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/vue-rookie/blog-platform/internal/identity"
)

// RateLimiter caps how many requests one caller may make inside a sliding
// window. Signed-in callers are counted per account, anonymous callers per
// client address, so readers sharing a NAT do not throttle each other once
// they log in.
type RateLimiter struct {
	limit  int
	window time.Duration

	mu   sync.Mutex
	hits map[string][]time.Time

	done     chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter allows limit requests per window for every caller. Idle
// callers are forgotten by a background sweep that runs once per window,
// but never more often than every five minutes.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		limit:  limit,
		window: window,
		hits:   make(map[string][]time.Time),
		done:   make(chan struct{}),
	}
	go rl.sweepLoop(max(window, 5*time.Minute))
	return rl
}

// Stop ends the sweep goroutine. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

func (rl *RateLimiter) sweepLoop(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.sweep(time.Now())
		case <-rl.done:
			return
		}
	}
}

// take records a hit for key at now unless the window is already full.
func (rl *RateLimiter) take(key string, now time.Time) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	recent := live(rl.hits[key], now.Add(-rl.window))
	if len(recent) >= rl.limit {
		rl.hits[key] = recent
		return false
	}
	rl.hits[key] = append(recent, now)
	return true
}

// sweep drops callers with no hit inside the window ending at now.
func (rl *RateLimiter) sweep(now time.Time) {
	cutoff := now.Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, ts := range rl.hits {
		if len(live(ts, cutoff)) == 0 {
			delete(rl.hits, key)
		}
	}
}

// live trims hits at or before cutoff. hits is in ascending order.
func live(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	return hits[i:]
}

// Middleware answers 429 with a Retry-After header once the caller's window
// is exhausted. It must run after LoadIdentity to see signed-in callers.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := limitKey(r)
		if !rl.take(key, time.Now()) {
			slog.Warn("rate limit exceeded", "caller", key, "path", r.URL.Path)
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			writeErrorStatus(w, r, http.StatusTooManyRequests, "Too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// limitKey names the bucket a request is counted against.
func limitKey(r *http.Request) string {
	if id := identity.FromContext(r.Context()); id != nil {
		return "user:" + id.UserID.String()
	}
	return "ip:" + clientIP(r)
}

// clientIP prefers the proxy headers over the socket address. For a
// forwarded chain the leftmost hop is the originating client.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
