// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimiter throttles requests per client IP over a sliding window.
// It guards the admin login endpoint against credential stuffing; the
// public read endpoints are left unthrottled.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string][]time.Time
	limit   int
	window  time.Duration
	done    chan struct{}
}

// NewRateLimiter allows limit requests per window for each client IP.
// Idle buckets are swept in the background until Stop is called.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string][]time.Time),
		limit:   limit,
		window:  window,
		done:    make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// Stop ends the background sweeper.
func (rl *RateLimiter) Stop() {
	close(rl.done)
}

// Middleware rejects over-limit requests with a JSON 429 and a
// Retry-After hint of the full window.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r)) {
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			writeJSONError(w, http.StatusTooManyRequests, "too many attempts, slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(key string) bool {
	now := time.Now()
	cutoff := now.Add(-rl.window)

	rl.mu.Lock()
	defer rl.mu.Unlock()

	kept := rl.buckets[key][:0]
	for _, ts := range rl.buckets[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= rl.limit {
		rl.buckets[key] = kept
		return false
	}
	rl.buckets[key] = append(kept, now)
	return true
}

// sweep drops buckets whose newest timestamp has aged out, so one-off
// clients do not accumulate forever.
func (rl *RateLimiter) sweep() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			rl.sweepOnce(time.Now().Add(-rl.window))
		case <-rl.done:
			return
		}
	}
}

func (rl *RateLimiter) sweepOnce(cutoff time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, stamps := range rl.buckets {
		if len(stamps) == 0 || !stamps[len(stamps)-1].After(cutoff) {
			delete(rl.buckets, key)
		}
	}
}

// clientIP resolves the originating address, trusting the proxy headers
// the deployment's reverse proxy sets before falling back to the socket.
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
