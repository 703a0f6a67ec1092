// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"newsdesk/internal/models"
	"newsdesk/internal/resolver"
	"newsdesk/internal/taxonomy"
)

// fakeArticleFinder serves a fixed article set keyed by slug.
type fakeArticleFinder struct {
	articles map[string]*models.Article
}

func (f *fakeArticleFinder) FindPublishedBySlug(slug string) (*models.Article, error) {
	return f.articles[slug], nil
}

// fakeCategoryMatcher matches against an in-memory snapshot.
type fakeCategoryMatcher struct {
	snap *taxonomy.Snapshot
}

func (f *fakeCategoryMatcher) MatchPrefix(segments []string) (taxonomy.Match, error) {
	return f.snap.MatchPrefix(segments)
}

// resolveServer wires the Resolve handler into a chi router the way the
// real router mounts it.
func resolveServer(t *testing.T) *httptest.Server {
	t.Helper()

	newsID := uuid.New()
	politicsID := uuid.New()
	cats := []models.Category{
		{ID: newsID, Name: "News", Slug: "news", Level: 0},
		{ID: politicsID, Name: "Politics", Slug: "politics", ParentID: &newsID, Level: 1},
	}

	articles := &fakeArticleFinder{articles: map[string]*models.Article{
		"budget-vote-passes-after-marathon-session": {
			ID:         uuid.New(),
			Title:      "Budget vote passes after marathon session",
			Slug:       "budget-vote-passes-after-marathon-session",
			Body:       "The vote **passed**.",
			Status:     models.ArticleStatusPublished,
			CategoryID: politicsID,
		},
	}}
	matcher := &fakeCategoryMatcher{snap: taxonomy.NewSnapshot(cats)}

	h := NewResolve(resolver.New(articles, matcher), nil)

	r := chi.NewRouter()
	r.Get("/api/resolve/*", h.Handle)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func getResolved(t *testing.T, srv *httptest.Server, path string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Get(srv.URL + "/api/resolve/" + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response for %s: %v", path, err)
	}
	return resp.StatusCode, body
}

func TestResolveHandlerCategoryPath(t *testing.T) {
	srv := resolveServer(t)

	status, body := getResolved(t, srv, "news/politics")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if body["type"] != "category" {
		t.Errorf("type = %v, want category", body["type"])
	}

	crumbs, ok := body["breadcrumb"].([]any)
	if !ok || len(crumbs) != 2 {
		t.Errorf("breadcrumb = %v, want 2 entries", body["breadcrumb"])
	}
}

func TestResolveHandlerArticleWithBreadcrumb(t *testing.T) {
	srv := resolveServer(t)

	status, body := getResolved(t, srv, "news/politics/budget-vote-passes-after-marathon-session")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if body["type"] != "article" {
		t.Errorf("type = %v, want article", body["type"])
	}
	html, _ := body["body_html"].(string)
	if !strings.Contains(html, "<strong>passed</strong>") {
		t.Errorf("body_html = %q, markdown not rendered", html)
	}
}

func TestResolveHandlerArticlePrefix(t *testing.T) {
	srv := resolveServer(t)

	status, body := getResolved(t, srv, "article/budget-vote-passes-after-marathon-session")
	if status != http.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if body["type"] != "article" {
		t.Errorf("type = %v, want article", body["type"])
	}
	if _, present := body["breadcrumb"]; present {
		t.Error("prefix resolution should not carry a breadcrumb")
	}
}

func TestResolveHandlerMisses(t *testing.T) {
	srv := resolveServer(t)

	tests := []struct {
		name string
		path string
	}{
		{"unknown root", "bogus"},
		{"long article-shaped slug", "this-headline-does-not-exist-anywhere-at-all"},
		{"partial category path", "news/sports"},
		{"article prefix miss", "article/nothing-here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := getResolved(t, srv, tt.path)
			if status != http.StatusNotFound {
				t.Errorf("status = %d, want 404", status)
			}
			if body["type"] != "error" {
				t.Errorf("type = %v, want error", body["type"])
			}
			if reason, _ := body["reason"].(string); reason == "" {
				t.Error("reason is empty")
			}
		})
	}
}

func TestResolveHandlerTrailingSlash(t *testing.T) {
	srv := resolveServer(t)

	// Trailing and doubled slashes collapse to the same segments.
	for _, path := range []string{"news/", "news//politics"} {
		status, _ := getResolved(t, srv, path)
		if status != http.StatusOK {
			t.Errorf("GET %s: status = %d, want 200", path, status)
		}
	}
}
