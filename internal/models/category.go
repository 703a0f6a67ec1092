// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Category represents a node in the hierarchical category tree.
// Articles attach to exactly one category; a category "contains" the
// articles of its whole subtree when aggregating.
type Category struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Slug        string     `json:"slug"`
	Description string     `json:"description"`
	ParentID    *uuid.UUID `json:"parent_id"`

	// Level is the cached depth from the root (root = 0). It is recomputed
	// when ParentID changes on this node, but NOT cascaded to descendants.
	Level int `json:"level"`

	// SortOrder orders siblings under the same parent. Assigned as
	// max(sibling orders) + 1 on create and on reparent.
	SortOrder int `json:"sort_order"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Virtual fields populated by taxonomy/store methods.
	Children     []Category `json:"children,omitempty"`
	ArticleCount int        `json:"article_count,omitempty"`
}

// IsRoot returns true if the category has no parent.
func (c *Category) IsRoot() bool {
	return c.ParentID == nil
}
