// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Media represents an image uploaded to S3-compatible object storage.
// Metadata is stored in PostgreSQL; the file itself lives in the bucket.
type Media struct {
	ID           uuid.UUID `json:"id"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	ContentType  string    `json:"content_type"`
	SizeBytes    int64     `json:"size_bytes"`
	Bucket       string    `json:"bucket"`
	S3Key        string    `json:"s3_key"`
	AltText      *string   `json:"alt_text,omitempty"`
	UploaderID   uuid.UUID `json:"uploader_id"`
	CreatedAt    time.Time `json:"created_at"`

	// Variants is populated by store methods when requested.
	Variants []MediaVariant `json:"variants,omitempty"`
}

// MediaVariant is one responsive rendition of an uploaded image.
type MediaVariant struct {
	ID          uuid.UUID `json:"id"`
	MediaID     uuid.UUID `json:"media_id"`
	Name        string    `json:"name"` // e.g. "thumb", "sm", "md", "lg"
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	S3Key       string    `json:"s3_key"`
	ContentType string    `json:"content_type"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsImage returns true if the media item is an image type.
func (m *Media) IsImage() bool {
	return strings.HasPrefix(m.ContentType, "image/")
}
