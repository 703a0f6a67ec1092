// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"newsdesk/internal/models"
)

// ArticleStore handles all article-related database operations.
type ArticleStore struct {
	db *sql.DB
}

// NewArticleStore creates a new ArticleStore with the given database connection.
func NewArticleStore(db *sql.DB) *ArticleStore {
	return &ArticleStore{db: db}
}

const articleColumns = `id, title, slug, body, excerpt, status, category_id,
	featured_image_id, author_id, publish_date, created_at, updated_at`

// scanArticle scans a row into an Article struct.
func scanArticle(scanner interface{ Scan(...any) error }) (*models.Article, error) {
	var a models.Article
	err := scanner.Scan(
		&a.ID, &a.Title, &a.Slug, &a.Body, &a.Excerpt, &a.Status,
		&a.CategoryID, &a.FeaturedImageID, &a.AuthorID, &a.PublishDate,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

// translateArticleConflict maps a slug unique violation onto
// ErrDuplicateSlug. Other errors pass through unchanged.
func translateArticleConflict(err error) error {
	if violatedConstraint(err) == "uq_articles_slug" {
		return ErrDuplicateSlug
	}
	return err
}

// FindPublishedBySlug retrieves a published article by its slug. Returns
// nil if not found. This is the route resolver's article collaborator.
func (s *ArticleStore) FindPublishedBySlug(slug string) (*models.Article, error) {
	row := s.db.QueryRow(`SELECT `+articleColumns+` FROM articles WHERE slug = $1 AND status = 'published'`, slug)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find article by slug: %w", err)
	}
	return a, nil
}

// FindByID retrieves an article by ID regardless of status. Returns nil
// if not found.
func (s *ArticleStore) FindByID(id uuid.UUID) (*models.Article, error) {
	row := s.db.QueryRow(`SELECT `+articleColumns+` FROM articles WHERE id = $1`, id)
	a, err := scanArticle(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find article by id: %w", err)
	}
	return a, nil
}

// SlugTaken reports whether any article other than exclude already uses
// slug. Pass uuid.Nil to exclude nothing. The article slug namespace is
// independent of the category one.
func (s *ArticleStore) SlugTaken(slug string, exclude uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(
		`SELECT EXISTS (SELECT 1 FROM articles WHERE slug = $1 AND id <> $2)`,
		slug, exclude,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("article slug exists: %w", err)
	}
	return exists, nil
}

// ListByCategoryIDs returns articles filed under any of the given
// categories, newest publish date first, with offset pagination. This is
// how a parent category lists articles across its whole subtree.
func (s *ArticleStore) ListByCategoryIDs(ids []uuid.UUID, status models.ArticleStatus, limit, offset int) ([]models.Article, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.Query(`
		SELECT `+articleColumns+`
		FROM articles
		WHERE category_id = ANY($1) AND status = $2
		ORDER BY publish_date DESC NULLS LAST, created_at DESC
		LIMIT $3 OFFSET $4
	`, uuidArray(ids), status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list articles by categories: %w", err)
	}
	defer rows.Close()

	var items []models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

// CountByCategoryIDs counts articles across the given categories.
func (s *ArticleStore) CountByCategoryIDs(ids []uuid.UUID, status models.ArticleStatus) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM articles WHERE category_id = ANY($1) AND status = $2`,
		uuidArray(ids), status,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count articles by categories: %w", err)
	}
	return count, nil
}

// CountsPerCategory returns the published article count for each category
// that has at least one, keyed by category ID. Subtree totals are summed
// by the caller over the collected descendant set.
func (s *ArticleStore) CountsPerCategory() (map[uuid.UUID]int, error) {
	rows, err := s.db.Query(`
		SELECT category_id, COUNT(*)
		FROM articles
		WHERE status = 'published'
		GROUP BY category_id
	`)
	if err != nil {
		return nil, fmt.Errorf("count articles per category: %w", err)
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int)
	for rows.Next() {
		var id uuid.UUID
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan article count: %w", err)
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

// SearchByTitle returns published articles whose title contains the query,
// case-insensitively, newest first.
func (s *ArticleStore) SearchByTitle(query string, limit int) ([]models.Article, error) {
	rows, err := s.db.Query(`
		SELECT `+articleColumns+`
		FROM articles
		WHERE status = 'published' AND title ILIKE '%' || $1 || '%'
		ORDER BY publish_date DESC NULLS LAST, created_at DESC
		LIMIT $2
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search articles: %w", err)
	}
	defer rows.Close()

	var items []models.Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		items = append(items, *a)
	}
	return items, rows.Err()
}

// Insert persists a new article and returns the stored row.
func (s *ArticleStore) Insert(a *models.Article) (*models.Article, error) {
	row := s.db.QueryRow(`
		INSERT INTO articles (title, slug, body, excerpt, status, category_id,
			featured_image_id, author_id, publish_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+articleColumns,
		a.Title, a.Slug, a.Body, a.Excerpt, a.Status, a.CategoryID,
		a.FeaturedImageID, a.AuthorID, a.PublishDate,
	)
	result, err := scanArticle(row)
	if err != nil {
		return nil, translateArticleConflict(err)
	}
	return result, nil
}

// Update modifies an existing article in one statement.
func (s *ArticleStore) Update(a *models.Article) error {
	_, err := s.db.Exec(`
		UPDATE articles SET
			title = $1, slug = $2, body = $3, excerpt = $4, status = $5,
			category_id = $6, featured_image_id = $7, publish_date = $8,
			updated_at = NOW()
		WHERE id = $9
	`, a.Title, a.Slug, a.Body, a.Excerpt, a.Status, a.CategoryID,
		a.FeaturedImageID, a.PublishDate, a.ID)
	if err != nil {
		return translateArticleConflict(err)
	}
	return nil
}

// Delete removes an article by ID.
func (s *ArticleStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	return nil
}

// uuidArray renders a uuid slice as a PostgreSQL array literal. The pgx
// stdlib driver under database/sql does not bind Go slices directly.
func uuidArray(ids []uuid.UUID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return "{" + strings.Join(parts, ",") + "}"
}
