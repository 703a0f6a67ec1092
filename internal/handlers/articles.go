// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"newsdesk/internal/cache"
	"newsdesk/internal/markdown"
	"newsdesk/internal/middleware"
	"newsdesk/internal/models"
	"newsdesk/internal/slug"
	"newsdesk/internal/store"
	"newsdesk/internal/taxonomy"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	// maxSlugAttempts bounds the retry loop on article slug races,
	// matching the category write path.
	maxSlugAttempts = 3
)

// Articles groups the article HTTP handlers, public and admin.
type Articles struct {
	store    *store.ArticleStore
	taxonomy *taxonomy.Service
	cache    *cache.ResolveCache
}

// NewArticles creates a new Articles handler group.
// cache may be nil when Valkey is not configured.
func NewArticles(articles *store.ArticleStore, svc *taxonomy.Service, rc *cache.ResolveCache) *Articles {
	return &Articles{store: articles, taxonomy: svc, cache: rc}
}

// GetBySlug returns a single published article with its body rendered to
// HTML and the breadcrumb of its stored category.
func (h *Articles) GetBySlug(w http.ResponseWriter, r *http.Request) {
	article, err := h.store.FindPublishedBySlug(chi.URLParam(r, "slug"))
	if err != nil {
		slog.Error("article lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to load article.")
		return
	}
	if article == nil {
		respondError(w, http.StatusNotFound, "Article not found.")
		return
	}

	bodyHTML, err := markdown.ToHTML(article.Body)
	if err != nil {
		slog.Error("markdown render failed", "article", article.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to render article.")
		return
	}

	payload := map[string]any{
		"article":   article,
		"body_html": bodyHTML,
	}

	// Breadcrumb comes from the article's stored category. A missing
	// category (repaired data) degrades to no breadcrumb.
	if info, err := h.taxonomy.PathInfo(article.CategoryID); err == nil {
		payload["breadcrumb"] = info.Path
		payload["category_path"] = info.FullPath
	}

	respondJSON(w, http.StatusOK, payload)
}

// ListByCategory lists articles filed anywhere in the subtree of the
// category named by a slash-joined slug path. The whole path must match.
func (h *Articles) ListByCategory(w http.ResponseWriter, r *http.Request) {
	segments := splitPath(chi.URLParam(r, "*"))
	if len(segments) == 0 {
		respondError(w, http.StatusBadRequest, "Category path is required.")
		return
	}

	match, err := h.taxonomy.MatchPrefix(segments)
	if err != nil {
		if errors.Is(err, taxonomy.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Category not found.")
			return
		}
		slog.Error("category match failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to load category.")
		return
	}
	if !match.Complete() {
		respondError(w, http.StatusNotFound,
			fmt.Sprintf("No category %q under %q.", match.Remaining[0], match.Leaf().Slug))
		return
	}

	leaf := match.Leaf()
	idSet, err := h.taxonomy.SubtreeIDs(leaf.ID)
	if err != nil {
		slog.Error("subtree collection failed", "category", leaf.ID, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to load category.")
		return
	}
	ids := make([]uuid.UUID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	status := models.ArticleStatusPublished
	if s := r.URL.Query().Get("status"); s != "" {
		status = models.ArticleStatus(s)
	}
	page, limit := pagination(r)

	articles, err := h.store.ListByCategoryIDs(ids, status, limit, page*limit)
	if err != nil {
		slog.Error("list articles failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to load articles.")
		return
	}
	total, err := h.store.CountByCategoryIDs(ids, status)
	if err != nil {
		slog.Error("count articles failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to load articles.")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"category":   leaf,
		"breadcrumb": match.Matched,
		"articles":   articles,
		"page":       page,
		"limit":      limit,
		"total":      total,
	})
}

// Search lists published articles whose title matches the search term.
func (h *Articles) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("search"))
	if query == "" {
		respondError(w, http.StatusBadRequest, "Search term is required.")
		return
	}

	_, limit := pagination(r)
	articles, err := h.store.SearchByTitle(query, limit)
	if err != nil {
		slog.Error("article search failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Search failed.")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"query":    query,
		"articles": articles,
	})
}

// articleInput is the JSON body for admin create and update.
type articleInput struct {
	Title           string     `json:"title"`
	Body            string     `json:"body"`
	Excerpt         string     `json:"excerpt"`
	Status          string     `json:"status"`
	CategoryID      uuid.UUID  `json:"category_id"`
	FeaturedImageID *uuid.UUID `json:"featured_image_id"`
	PublishDate     *time.Time `json:"publish_date"`
}

// Create inserts a new article. The slug derives from the title with the
// same suffixing scheme categories use, in the articles' own namespace.
func (h *Articles) Create(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var in articleInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	if msg := validateArticle(in.Title, in.Body, in.Excerpt); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	status, ok := articleStatus(in.Status)
	if !ok {
		respondError(w, http.StatusBadRequest, "Status must be draft, published, or archived.")
		return
	}
	if exists, msg := h.categoryExists(in.CategoryID); !exists {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	article := &models.Article{
		Title:           strings.TrimSpace(in.Title),
		Body:            in.Body,
		Excerpt:         optionalString(in.Excerpt),
		Status:          status,
		CategoryID:      in.CategoryID,
		FeaturedImageID: in.FeaturedImageID,
		AuthorID:        sess.UserID,
		PublishDate:     publishDate(status, in.PublishDate, nil),
	}

	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		article.Slug = slug.Unique(article.Title, h.slugTaken(uuid.Nil))

		created, err := h.store.Insert(article)
		if errors.Is(err, store.ErrDuplicateSlug) {
			continue // lost a slug race; re-derive against current state
		}
		if err != nil {
			slog.Error("create article failed", "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to create article.")
			return
		}

		h.invalidate(r)
		respondJSON(w, http.StatusCreated, map[string]any{"article": created})
		return
	}
	respondError(w, http.StatusConflict, "Could not assign a unique slug, try again.")
}

// Update replaces the mutable fields of an article. The slug is
// regenerated only when the title changed.
func (h *Articles) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid article id.")
		return
	}

	var in articleInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}
	if msg := validateArticle(in.Title, in.Body, in.Excerpt); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}
	status, ok := articleStatus(in.Status)
	if !ok {
		respondError(w, http.StatusBadRequest, "Status must be draft, published, or archived.")
		return
	}
	if exists, msg := h.categoryExists(in.CategoryID); !exists {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	article, err := h.store.FindByID(id)
	if err != nil {
		slog.Error("article lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to load article.")
		return
	}
	if article == nil {
		respondError(w, http.StatusNotFound, "Article not found.")
		return
	}

	titleChanged := strings.TrimSpace(in.Title) != article.Title
	article.Title = strings.TrimSpace(in.Title)
	article.Body = in.Body
	article.Excerpt = optionalString(in.Excerpt)
	article.Status = status
	article.CategoryID = in.CategoryID
	article.FeaturedImageID = in.FeaturedImageID
	article.PublishDate = publishDate(status, in.PublishDate, article.PublishDate)

	for attempt := 0; attempt < maxSlugAttempts; attempt++ {
		if titleChanged {
			article.Slug = slug.Unique(article.Title, h.slugTaken(id))
		}

		err := h.store.Update(article)
		if titleChanged && errors.Is(err, store.ErrDuplicateSlug) {
			continue
		}
		if err != nil {
			slog.Error("update article failed", "article", id, "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to update article.")
			return
		}

		h.invalidate(r)
		respondJSON(w, http.StatusOK, map[string]any{"article": article})
		return
	}
	respondError(w, http.StatusConflict, "Could not assign a unique slug, try again.")
}

// Delete removes an article.
func (h *Articles) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid article id.")
		return
	}

	if err := h.store.Delete(id); err != nil {
		slog.Error("delete article failed", "article", id, "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to delete article.")
		return
	}

	h.invalidate(r)
	respondJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// slugTaken returns a uniqueness oracle over the articles table,
// excluding the given id (uuid.Nil excludes nothing).
func (h *Articles) slugTaken(exclude uuid.UUID) func(string) bool {
	return func(candidate string) bool {
		taken, err := h.store.SlugTaken(candidate, exclude)
		if err != nil {
			// Treat oracle failures as taken; the unique index is the
			// backstop either way.
			return true
		}
		return taken
	}
}

func (h *Articles) categoryExists(id uuid.UUID) (bool, string) {
	snap, err := h.taxonomy.Snapshot()
	if err != nil {
		return false, "Failed to verify category."
	}
	if snap.Get(id) == nil {
		return false, "Category does not exist."
	}
	return true, ""
}

func (h *Articles) invalidate(r *http.Request) {
	if h.cache != nil {
		h.cache.Invalidate(r.Context())
	}
}

// articleStatus parses a status string, defaulting empty to draft.
func articleStatus(s string) (models.ArticleStatus, bool) {
	switch models.ArticleStatus(s) {
	case models.ArticleStatusDraft, models.ArticleStatusPublished, models.ArticleStatusArchived:
		return models.ArticleStatus(s), true
	case "":
		return models.ArticleStatusDraft, true
	default:
		return "", false
	}
}

// publishDate picks the publish date for a write: an explicit date wins,
// a date already on the article is kept (so edits do not bump a published
// article back to the top of listings), and an article going live without
// either gets stamped now.
func publishDate(status models.ArticleStatus, explicit, existing *time.Time) *time.Time {
	if explicit != nil {
		return explicit
	}
	if existing != nil {
		return existing
	}
	if status == models.ArticleStatusPublished {
		now := time.Now()
		return &now
	}
	return nil
}

// optionalString maps "" to nil for nullable text columns.
func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// splitPath splits a URL wildcard into non-empty segments.
func splitPath(raw string) []string {
	var segments []string
	for _, s := range strings.Split(raw, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

// pagination reads page/limit query parameters with sane bounds.
func pagination(r *http.Request) (page, limit int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 0 {
		page = 0
	}
	limit, _ = strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}
