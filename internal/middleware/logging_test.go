package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLogger(t *testing.T) {
	t.Run("passes request through", func(t *testing.T) {
		var gotPath string
		handler := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if gotPath != "/api/categories" {
			t.Errorf("path: got %q", gotPath)
		}
		if rr.Code != http.StatusOK {
			t.Errorf("status: got %d, want 200", rr.Code)
		}
	})

	t.Run("preserves handler status", func(t *testing.T) {
		handler := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/resolve/no-such-section", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusNotFound {
			t.Errorf("status: got %d, want 404", rr.Code)
		}
	})

	t.Run("body writes reach the client", func(t *testing.T) {
		handler := Logger(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"articles":[]}`))
		}))

		req := httptest.NewRequest(http.MethodGet, "/api/articles?search=budget", nil)
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Errorf("status: got %d, want 200", rr.Code)
		}
		if rr.Body.String() != `{"articles":[]}` {
			t.Errorf("body: got %q", rr.Body.String())
		}
	})
}

func TestStatusRecorder(t *testing.T) {
	t.Run("records explicit status once", func(t *testing.T) {
		rec := &statusRecorder{ResponseWriter: httptest.NewRecorder()}

		rec.WriteHeader(http.StatusConflict)
		rec.WriteHeader(http.StatusInternalServerError) // later calls are noise

		if rec.status != http.StatusConflict {
			t.Errorf("status: got %d, want 409", rec.status)
		}
	})

	t.Run("bare write defaults to 200 and counts bytes", func(t *testing.T) {
		rec := &statusRecorder{ResponseWriter: httptest.NewRecorder()}

		n, err := rec.Write([]byte(`{"type":"category"}`))
		if err != nil {
			t.Fatalf("write: %v", err)
		}
		rec.Write([]byte("\n"))

		if rec.status != http.StatusOK {
			t.Errorf("status: got %d, want 200", rec.status)
		}
		if rec.bytes != n+1 {
			t.Errorf("bytes: got %d, want %d", rec.bytes, n+1)
		}
	})
}
