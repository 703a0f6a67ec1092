// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"newsdesk/internal/cache"
	"newsdesk/internal/markdown"
	"newsdesk/internal/resolver"
)

// Resolve serves the catch-all path resolution endpoint the frontend
// calls for every URL it does not recognize statically.
type Resolve struct {
	resolver *resolver.Resolver
	cache    *cache.ResolveCache
}

// NewResolve creates the resolution handler.
// cache may be nil when Valkey is not configured.
func NewResolve(res *resolver.Resolver, rc *cache.ResolveCache) *Resolve {
	return &Resolve{resolver: res, cache: rc}
}

// Handle resolves the wildcard path into an article, a category listing,
// or a not-found response. Successful resolutions are cached; any
// category or article write invalidates the whole cache generation.
func (h *Resolve) Handle(w http.ResponseWriter, r *http.Request) {
	segments := splitPath(chi.URLParam(r, "*"))
	if len(segments) == 0 {
		respondError(w, http.StatusBadRequest, "Path is required.")
		return
	}

	path := strings.Join(segments, "/")
	if h.cache != nil {
		if payload, ok := h.cache.Get(r.Context(), path); ok {
			w.Header().Set("Content-Type", "application/json")
			w.Write(payload)
			return
		}
	}

	result := h.resolver.Resolve(segments)

	var body map[string]any
	status := http.StatusOK

	switch result.Kind {
	case resolver.KindArticle:
		bodyHTML, err := markdown.ToHTML(result.Article.Body)
		if err != nil {
			slog.Error("markdown render failed", "article", result.Article.ID, "error", err)
			respondError(w, http.StatusInternalServerError, "Failed to render article.")
			return
		}
		body = map[string]any{
			"type":      "article",
			"article":   result.Article,
			"body_html": bodyHTML,
		}
		if len(result.Breadcrumb) > 0 {
			body["breadcrumb"] = result.Breadcrumb
		}

	case resolver.KindCategory:
		body = map[string]any{
			"type":       "category",
			"category":   result.Category,
			"breadcrumb": result.Breadcrumb,
		}

	default:
		// Resolution failures surface as 404 with the reason; the reason
		// never distinguishes system failure from a plain miss.
		status = http.StatusNotFound
		body = map[string]any{
			"type":   "error",
			"reason": result.Reason,
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		slog.Error("encode resolution failed", "error", err)
		respondError(w, http.StatusInternalServerError, "An unexpected error occurred.")
		return
	}

	if h.cache != nil && status == http.StatusOK {
		h.cache.Set(r.Context(), path, payload)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(payload)
}
