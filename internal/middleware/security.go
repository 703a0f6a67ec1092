// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import "net/http"

// SecureHeaders sets the response headers appropriate for a headless JSON
// API. The backend never serves HTML, so the policy forbids framing and
// any active content outright.
func SecureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()

		// Responses are JSON (or a QR PNG); never let browsers sniff
		// them into something executable.
		h.Set("X-Content-Type-Options", "nosniff")

		// No page here is meant to render, let alone inside a frame.
		h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		h.Set("X-Frame-Options", "DENY")

		// API URLs can carry category paths and article slugs; keep
		// them out of cross-origin Referer headers.
		h.Set("Referrer-Policy", "no-referrer")

		next.ServeHTTP(w, r)
	})
}
