// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"newsdesk/internal/models"
	"newsdesk/internal/taxonomy"
)

// CategoryStore manages categories in the database. It satisfies
// taxonomy.Store: unique-index violations are translated into the
// taxonomy conflict errors so the service can react.
type CategoryStore struct {
	db *sql.DB
}

// NewCategoryStore returns a new CategoryStore.
func NewCategoryStore(db *sql.DB) *CategoryStore {
	return &CategoryStore{db: db}
}

const categoryColumns = `id, name, slug, description, parent_id, level, sort_order, created_at, updated_at`

// scanCategory scans a row into a Category struct.
func scanCategory(scanner interface{ Scan(...any) error }) (*models.Category, error) {
	var c models.Category
	err := scanner.Scan(
		&c.ID, &c.Name, &c.Slug, &c.Description,
		&c.ParentID, &c.Level, &c.SortOrder, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// translateCategoryConflict maps unique-index violations onto the
// taxonomy conflict errors. Other errors pass through unchanged.
func translateCategoryConflict(err error) error {
	switch violatedConstraint(err) {
	case "uq_categories_slug":
		return taxonomy.ErrSlugConflict
	case "uq_categories_name":
		return taxonomy.ErrNameConflict
	}
	return err
}

// All returns every category ordered by sort order, then name. The
// taxonomy service loads this once per operation to build its snapshot.
func (s *CategoryStore) All() ([]models.Category, error) {
	rows, err := s.db.Query(`SELECT ` + categoryColumns + ` FROM categories ORDER BY sort_order, name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var items []models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

// FindByID retrieves a category by ID. Returns nil if not found.
func (s *CategoryStore) FindByID(id uuid.UUID) (*models.Category, error) {
	row := s.db.QueryRow(`SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id)
	c, err := scanCategory(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category by id: %w", err)
	}
	return c, nil
}

// Insert persists a new category and returns the stored row.
func (s *CategoryStore) Insert(c *models.Category) (*models.Category, error) {
	row := s.db.QueryRow(`
		INSERT INTO categories (name, slug, description, parent_id, level, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+categoryColumns,
		c.Name, c.Slug, c.Description, c.ParentID, c.Level, c.SortOrder,
	)
	result, err := scanCategory(row)
	if err != nil {
		return nil, translateCategoryConflict(err)
	}
	return result, nil
}

// Update replaces the mutable fields of a category in one statement, so
// concurrent readers never observe a partially applied change.
func (s *CategoryStore) Update(c *models.Category) error {
	_, err := s.db.Exec(`
		UPDATE categories SET
			name = $1, slug = $2, description = $3, parent_id = $4,
			level = $5, sort_order = $6, updated_at = NOW()
		WHERE id = $7
	`, c.Name, c.Slug, c.Description, c.ParentID, c.Level, c.SortOrder, c.ID)
	if err != nil {
		return translateCategoryConflict(err)
	}
	return nil
}

// Delete removes a category by ID. The child-count guard lives in the
// taxonomy service; the FK constraint is the final backstop.
func (s *CategoryStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}
