// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package models defines the data structures that map to database tables
// and provides the core types used throughout the application.
package models

import (
	"time"

	"github.com/google/uuid"
)

// ArticleStatus represents the publishing state of an article.
type ArticleStatus string

const (
	ArticleStatusDraft     ArticleStatus = "draft"
	ArticleStatusPublished ArticleStatus = "published"
	ArticleStatusArchived  ArticleStatus = "archived"
)

// Article represents a news article. Every article belongs to exactly one
// category — the leaf it was filed under, not a path.
type Article struct {
	ID              uuid.UUID     `json:"id"`
	Title           string        `json:"title"`
	Slug            string        `json:"slug"`
	Body            string        `json:"body"`
	Excerpt         *string       `json:"excerpt,omitempty"`
	Status          ArticleStatus `json:"status"`
	CategoryID      uuid.UUID     `json:"category_id"`
	FeaturedImageID *uuid.UUID    `json:"featured_image_id,omitempty"`
	AuthorID        uuid.UUID     `json:"author_id"`
	PublishDate     *time.Time    `json:"publish_date,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// IsPublished returns true if the article is in published status.
func (a *Article) IsPublished() bool {
	return a.Status == ArticleStatusPublished
}
