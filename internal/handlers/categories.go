// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"newsdesk/internal/cache"
	"newsdesk/internal/models"
	"newsdesk/internal/store"
	"newsdesk/internal/taxonomy"
)

// Categories groups the category tree HTTP handlers.
type Categories struct {
	taxonomy *taxonomy.Service
	articles *store.ArticleStore
	cache    *cache.ResolveCache
}

// NewCategories creates a new Categories handler group.
// cache may be nil when Valkey is not configured.
func NewCategories(svc *taxonomy.Service, articles *store.ArticleStore, rc *cache.ResolveCache) *Categories {
	return &Categories{taxonomy: svc, articles: articles, cache: rc}
}

// List returns categories, optionally filtered and enriched:
//
//	?parent=<uuid>         direct children of the given category
//	?parent=root           root categories only
//	?level=<n>             categories at the given stored level
//	?includeChildren=true  full nested tree instead of a flat list
//	?includeArticleCount=true  per-category subtree article totals
func (h *Categories) List(w http.ResponseWriter, r *http.Request) {
	snap, err := h.taxonomy.Snapshot()
	if err != nil {
		slog.Error("load category snapshot failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to load categories.")
		return
	}

	q := r.URL.Query()
	withCounts := q.Get("includeArticleCount") == "true"

	if q.Get("includeChildren") == "true" {
		tree := snap.Tree()
		if withCounts {
			counts, err := h.subtreeCounts(snap)
			if err != nil {
				respondError(w, http.StatusInternalServerError, "Failed to count articles.")
				return
			}
			applyCounts(tree, counts)
		}
		respondJSON(w, http.StatusOK, map[string]any{"categories": tree})
		return
	}

	var cats []models.Category
	switch parent := q.Get("parent"); {
	case parent == "root":
		cats = snap.Children(nil)
	case parent != "":
		id, err := uuid.Parse(parent)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid parent id.")
			return
		}
		cats = snap.Children(&id)
	default:
		cats = snap.All()
	}

	if lvl := q.Get("level"); lvl != "" {
		level, err := strconv.Atoi(lvl)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid level.")
			return
		}
		var filtered []models.Category
		for _, c := range cats {
			if c.Level == level {
				filtered = append(filtered, c)
			}
		}
		cats = filtered
	}

	if withCounts {
		counts, err := h.subtreeCounts(snap)
		if err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to count articles.")
			return
		}
		for i := range cats {
			cats[i].ArticleCount = counts[cats[i].ID]
		}
	}

	respondJSON(w, http.StatusOK, map[string]any{"categories": cats})
}

// subtreeCounts aggregates per-category article counts over each
// category's whole subtree, using one counts query plus the in-memory
// snapshot instead of a query per node.
func (h *Categories) subtreeCounts(snap *taxonomy.Snapshot) (map[uuid.UUID]int, error) {
	direct, err := h.articles.CountsPerCategory()
	if err != nil {
		slog.Error("count articles per category failed", "error", err)
		return nil, err
	}

	totals := make(map[uuid.UUID]int, snap.Len())
	for _, c := range snap.All() {
		total := 0
		for id := range snap.SubtreeIDs(c.ID) {
			total += direct[id]
		}
		totals[c.ID] = total
	}
	return totals, nil
}

// applyCounts fills ArticleCount through a nested category tree.
func applyCounts(cats []models.Category, counts map[uuid.UUID]int) {
	for i := range cats {
		cats[i].ArticleCount = counts[cats[i].ID]
		applyCounts(cats[i].Children, counts)
	}
}

// categoryInput is the JSON body for create-or-update.
type categoryInput struct {
	ID          *uuid.UUID `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`
}

// Save creates a category, or updates one when the body carries an id.
func (h *Categories) Save(w http.ResponseWriter, r *http.Request) {
	var in categoryInput
	if err := decodeJSON(r, &in); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid JSON body.")
		return
	}

	if msg := validateCategory(in.Name, in.Description); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	input := taxonomy.Input{
		Name:        in.Name,
		Description: in.Description,
		ParentID:    in.ParentID,
	}

	var (
		cat    *models.Category
		err    error
		status = http.StatusCreated
	)
	if in.ID != nil {
		cat, err = h.taxonomy.Update(*in.ID, input)
		status = http.StatusOK
	} else {
		cat, err = h.taxonomy.Create(input)
	}
	if err != nil {
		respondTaxonomyError(w, err)
		return
	}

	h.invalidate(r)
	respondJSON(w, status, map[string]any{"category": cat})
}

// Delete removes a category. Categories with children are rejected.
func (h *Categories) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid category id.")
		return
	}

	if err := h.taxonomy.Delete(id); err != nil {
		respondTaxonomyError(w, err)
		return
	}

	h.invalidate(r)
	respondJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

func (h *Categories) invalidate(r *http.Request) {
	if h.cache != nil {
		h.cache.Invalidate(r.Context())
	}
}

// respondTaxonomyError maps taxonomy sentinel errors to HTTP statuses.
func respondTaxonomyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, taxonomy.ErrNameRequired):
		respondError(w, http.StatusBadRequest, "Name is required.")
	case errors.Is(err, taxonomy.ErrNameTaken):
		respondError(w, http.StatusConflict, "A category with that name already exists.")
	case errors.Is(err, taxonomy.ErrParentNotFound):
		respondError(w, http.StatusBadRequest, "Parent category does not exist.")
	case errors.Is(err, taxonomy.ErrCyclicParent):
		respondError(w, http.StatusBadRequest, "A category cannot be moved under its own descendant.")
	case errors.Is(err, taxonomy.ErrHasChildren):
		respondError(w, http.StatusConflict, "Delete or move the subcategories first.")
	case errors.Is(err, taxonomy.ErrNotFound):
		respondError(w, http.StatusNotFound, "Category not found.")
	default:
		slog.Error("category operation failed", "error", err)
		respondError(w, http.StatusInternalServerError, "An unexpected error occurred.")
	}
}
