// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package resolver decides what an arbitrary slash-separated URL path
// denotes: an article, a category listing, or nothing. Paths carry no
// inherent type — disambiguation happens here, per request, against the
// current tree and article set.
package resolver

import (
	"fmt"
	"strings"

	"newsdesk/internal/models"
	"newsdesk/internal/taxonomy"
)

// ArticlePrefix is the reserved first segment that forces article
// resolution, bypassing category matching entirely.
const ArticlePrefix = "article"

// Thresholds for LooksLikeArticleSlug. Category slugs are short one-or-two
// word labels; article slugs are long hyphen-dense headlines. Tunable
// independently of the resolver's control flow.
const (
	articleSlugMinLength = 20 // exclusive
	articleSlugMinTokens = 3  // exclusive, hyphen-separated
)

// LooksLikeArticleSlug reports whether a single segment has the shape of
// an article slug: longer than 20 characters with more than 3
// hyphen-separated tokens. Used to skip a pointless category lookup when
// the direct article lookup already missed.
func LooksLikeArticleSlug(segment string) bool {
	return len(segment) > articleSlugMinLength &&
		len(strings.Split(segment, "-")) > articleSlugMinTokens
}

// ArticleFinder looks up a published article by slug. A nil article with
// a nil error means not found.
type ArticleFinder interface {
	FindPublishedBySlug(slug string) (*models.Article, error)
}

// CategoryMatcher matches URL segments against the category tree.
type CategoryMatcher interface {
	MatchPrefix(segments []string) (taxonomy.Match, error)
}

// Kind tags a resolution result.
type Kind string

const (
	KindArticle  Kind = "article"
	KindCategory Kind = "category"
	KindError    Kind = "error"
)

// Result is the typed outcome of resolving a segment path.
type Result struct {
	Kind Kind

	// Article is set for KindArticle.
	Article *models.Article

	// Category is the deepest matched node for KindCategory.
	Category *models.Category

	// Breadcrumb is the matched ancestor chain, root to leaf. For an
	// article inside a path it derives from the URL segments before the
	// slug, NOT from the article's stored category — the two can diverge
	// when an article has been refiled, and that is accepted.
	Breadcrumb []models.Category

	// Reason carries the underlying failure for KindError. Callers
	// present it as "not found", never as a system failure.
	Reason string
}

// Resolver is the per-request, stateless route resolution state machine.
type Resolver struct {
	articles   ArticleFinder
	categories CategoryMatcher
}

// New returns a Resolver using the given collaborators.
func New(articles ArticleFinder, categories CategoryMatcher) *Resolver {
	return &Resolver{articles: articles, categories: categories}
}

// Resolve runs the state machine over the given segments:
//
//	"article"/rest   → article lookup on rest, no category matching
//	single segment   → article first, then heuristic, then category
//	multi segment    → last segment as article, else full category path
func (r *Resolver) Resolve(segments []string) Result {
	if len(segments) == 0 {
		return errorResult("empty path")
	}

	// Reserved prefix: the remainder is an article slug, joined back with
	// slashes when it spans several segments.
	if segments[0] == ArticlePrefix && len(segments) > 1 {
		return r.lookupArticle(strings.Join(segments[1:], "/"), nil)
	}

	if len(segments) == 1 {
		return r.resolveSingle(segments[0])
	}
	return r.resolveMulti(segments)
}

// resolveSingle handles one-segment paths: article lookup first, then the
// slug-shape heuristic decides whether trying the segment as a category
// is worthwhile at all.
func (r *Resolver) resolveSingle(segment string) Result {
	article, err := r.articles.FindPublishedBySlug(segment)
	if err != nil {
		return errorResult(fmt.Sprintf("article lookup failed: %v", err))
	}
	if article != nil {
		return Result{Kind: KindArticle, Article: article}
	}

	// The segment is shaped like an article slug and the direct lookup
	// already missed — a category lookup cannot help, short-circuit.
	if LooksLikeArticleSlug(segment) {
		return errorResult("Article not found")
	}

	return r.resolveCategoryPath([]string{segment})
}

// resolveMulti handles multi-segment paths: the last segment is tried as
// an article slug regardless of its position; only on a miss is the whole
// path treated as a category path. Ancestor segments of an article URL are
// NOT verified against the article's stored category chain.
func (r *Resolver) resolveMulti(segments []string) Result {
	last := segments[len(segments)-1]

	article, err := r.articles.FindPublishedBySlug(last)
	if err != nil {
		return errorResult(fmt.Sprintf("article lookup failed: %v", err))
	}
	if article != nil {
		return r.lookupArticleBreadcrumb(article, segments[:len(segments)-1])
	}

	return r.resolveCategoryPath(segments)
}

// lookupArticle fetches an article by slug, optionally attaching a
// breadcrumb resolved from crumbs.
func (r *Resolver) lookupArticle(slug string, crumbs []string) Result {
	article, err := r.articles.FindPublishedBySlug(slug)
	if err != nil {
		return errorResult(fmt.Sprintf("article lookup failed: %v", err))
	}
	if article == nil {
		return errorResult("Article not found")
	}
	return r.lookupArticleBreadcrumb(article, crumbs)
}

// lookupArticleBreadcrumb attaches the best-effort category breadcrumb
// for the URL segments preceding an article slug. A failed or partial
// match leaves the breadcrumb shorter or empty — the article still wins.
func (r *Resolver) lookupArticleBreadcrumb(article *models.Article, crumbs []string) Result {
	result := Result{Kind: KindArticle, Article: article}
	if len(crumbs) == 0 {
		return result
	}
	match, err := r.categories.MatchPrefix(crumbs)
	if err == nil {
		result.Breadcrumb = match.Matched
	}
	return result
}

// resolveCategoryPath requires the entire segment list to match a chain
// in the tree. Partial matches are failures here — by the time this runs,
// the article interpretations are exhausted.
func (r *Resolver) resolveCategoryPath(segments []string) Result {
	match, err := r.categories.MatchPrefix(segments)
	if err != nil {
		return errorResult(err.Error())
	}
	if !match.Complete() {
		return errorResult(fmt.Sprintf(
			"no category %q under %q", match.Remaining[0], match.Leaf().Slug))
	}
	return Result{
		Kind:       KindCategory,
		Category:   match.Leaf(),
		Breadcrumb: match.Matched,
	}
}

func errorResult(reason string) Result {
	return Result{Kind: KindError, Reason: reason}
}
