// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func csrfHandler(secure bool) http.Handler {
	return NewCSRF(secure)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

// issueToken performs the initial GET a frontend would do and returns the
// token cookie the middleware minted.
func issueToken(t *testing.T, handler http.Handler) *http.Cookie {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/api/admin/2fa/setup", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	for _, c := range rr.Result().Cookies() {
		if c.Name == CSRFCookieName {
			return c
		}
	}
	t.Fatal("no csrf cookie issued on GET")
	return nil
}

func TestCSRFCookieIssued(t *testing.T) {
	tests := []struct {
		name   string
		secure bool
	}{
		{"production cookie is TLS-only", true},
		{"dev cookie works over plain http", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cookie := issueToken(t, csrfHandler(tt.secure))

			if cookie.Secure != tt.secure {
				t.Errorf("Secure: got %v, want %v", cookie.Secure, tt.secure)
			}
			if cookie.HttpOnly {
				t.Error("token cookie must stay readable by the frontend")
			}
			if cookie.SameSite != http.SameSiteStrictMode {
				t.Errorf("SameSite: got %v, want Strict", cookie.SameSite)
			}
			if len(cookie.Value) != 64 {
				t.Errorf("token length: got %d, want 64 hex chars", len(cookie.Value))
			}
		})
	}
}

func TestCSRFWriteValidation(t *testing.T) {
	handler := csrfHandler(false)
	cookie := issueToken(t, handler)

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"matching header token", cookie.Value, http.StatusOK},
		{"missing token", "", http.StatusForbidden},
		{"stale token", strings.Repeat("0", 64), http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/admin/categories", strings.NewReader(`{"name":"World News"}`))
			req.AddCookie(cookie)
			if tt.token != "" {
				req.Header.Set(CSRFHeaderName, tt.token)
			}

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.status {
				t.Errorf("status: got %d, want %d", rr.Code, tt.status)
			}
			if tt.status == http.StatusForbidden && !strings.Contains(rr.Body.String(), "csrf") {
				t.Errorf("body: got %q, want a csrf error", rr.Body.String())
			}
		})
	}
}

// Multipart media uploads cannot always set headers, so the token may
// arrive as a form field instead.
func TestCSRFFormFieldFallback(t *testing.T) {
	handler := csrfHandler(false)
	cookie := issueToken(t, handler)

	form := url.Values{CSRFFormField: {cookie.Value}}
	req := httptest.NewRequest(http.MethodPost, "/api/admin/media", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(cookie)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rr.Code)
	}
}

func TestCSRFSafeMethodsSkipValidation(t *testing.T) {
	handler := csrfHandler(false)

	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		t.Run(method, func(t *testing.T) {
			req := httptest.NewRequest(method, "/api/admin/2fa/setup", nil)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != http.StatusOK {
				t.Errorf("status: got %d, want 200", rr.Code)
			}
		})
	}
}

func TestCSRFTokenFromCtx(t *testing.T) {
	var seen string
	handler := NewCSRF(false)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = CSRFTokenFromCtx(r.Context())
	}))

	// First request mints the token and must expose it downstream.
	req := httptest.NewRequest(http.MethodGet, "/api/admin/2fa/setup", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if seen == "" {
		t.Fatal("handler should see the minted token")
	}

	// A follow-up request with the cookie sees the same token.
	req = httptest.NewRequest(http.MethodGet, "/api/admin/2fa/setup", nil)
	req.AddCookie(&http.Cookie{Name: CSRFCookieName, Value: seen})
	first := seen
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if seen != first {
		t.Errorf("token changed across requests: %q then %q", first, seen)
	}

	if CSRFTokenFromCtx(t.Context()) != "" {
		t.Error("bare context should yield an empty token")
	}
}
