// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
)

const (
	// csrfTokenLength is the byte length of CSRF tokens (32 bytes = 64 hex chars).
	csrfTokenLength = 32

	// CSRFCookieName is the cookie that holds the CSRF token.
	CSRFCookieName = "nd_csrf"

	// CSRFHeaderName is the header the frontend sends the CSRF token in.
	CSRFHeaderName = "X-CSRF-Token"

	// CSRFFormField is the form field fallback for multipart uploads.
	CSRFFormField = "csrf_token"

	// csrfCtxKey is the context key for the current token.
	csrfCtxKey contextKey = "csrf_token"
)

// NewCSRF returns double-submit cookie CSRF protection middleware. It
// generates a token stored in a cookie and validates that state-changing
// requests (POST, PUT, PATCH, DELETE) include the same token as a header
// or form field. The cookie is readable by the frontend so it can echo
// the token back in the X-CSRF-Token header on every write request.
//
// When secure is true the cookie is only sent over TLS.
func NewCSRF(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Ensure a CSRF token cookie exists.
			cookie, err := r.Cookie(CSRFCookieName)
			if err != nil || cookie.Value == "" {
				token, err := generateCSRFToken()
				if err != nil {
					writeJSONError(w, http.StatusInternalServerError, "internal server error")
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     CSRFCookieName,
					Value:    token,
					Path:     "/",
					HttpOnly: false, // frontend JS reads this to set the header
					Secure:   secure,
					SameSite: http.SameSiteStrictMode,
				})
				cookie = &http.Cookie{Value: token}
			}

			// Make the token available to downstream handlers.
			r = r.WithContext(context.WithValue(r.Context(), csrfCtxKey, cookie.Value))

			// Safe methods don't need CSRF validation.
			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			// For state-changing methods, validate the token.
			// Check header first, then form field.
			submitted := r.Header.Get(CSRFHeaderName)
			if submitted == "" {
				submitted = r.FormValue(CSRFFormField)
			}

			if subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(submitted)) != 1 {
				writeJSONError(w, http.StatusForbidden, "csrf token mismatch")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// CSRFTokenFromCtx returns the CSRF token the middleware stored in the
// request context, or "" when the middleware has not run.
func CSRFTokenFromCtx(ctx context.Context) string {
	token, _ := ctx.Value(csrfCtxKey).(string)
	return token
}

// generateCSRFToken creates a cryptographically random token.
func generateCSRFToken() (string, error) {
	b := make([]byte, csrfTokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
