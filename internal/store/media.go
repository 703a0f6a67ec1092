// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"newsdesk/internal/models"
)

// MediaStore manages uploaded image metadata. The files themselves live
// in S3-compatible object storage.
type MediaStore struct {
	db *sql.DB
}

// NewMediaStore returns a new MediaStore.
func NewMediaStore(db *sql.DB) *MediaStore {
	return &MediaStore{db: db}
}

const mediaColumns = `id, filename, original_name, content_type, size_bytes, bucket, s3_key, alt_text, uploader_id, created_at`

// scanMedia scans a row into a Media struct.
func scanMedia(scanner interface{ Scan(...any) error }) (*models.Media, error) {
	var m models.Media
	err := scanner.Scan(
		&m.ID, &m.Filename, &m.OriginalName, &m.ContentType, &m.SizeBytes,
		&m.Bucket, &m.S3Key, &m.AltText, &m.UploaderID, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// FindByID retrieves a media item by ID. Returns nil if not found.
func (s *MediaStore) FindByID(id uuid.UUID) (*models.Media, error) {
	row := s.db.QueryRow(`SELECT `+mediaColumns+` FROM media WHERE id = $1`, id)
	m, err := scanMedia(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find media by id: %w", err)
	}
	return m, nil
}

// Insert persists media metadata and returns the stored row.
func (s *MediaStore) Insert(m *models.Media) (*models.Media, error) {
	row := s.db.QueryRow(`
		INSERT INTO media (filename, original_name, content_type, size_bytes, bucket, s3_key, alt_text, uploader_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+mediaColumns,
		m.Filename, m.OriginalName, m.ContentType, m.SizeBytes, m.Bucket, m.S3Key, m.AltText, m.UploaderID,
	)
	result, err := scanMedia(row)
	if err != nil {
		return nil, fmt.Errorf("insert media: %w", err)
	}
	return result, nil
}

// InsertVariant persists one responsive rendition of a media item.
func (s *MediaStore) InsertVariant(v *models.MediaVariant) error {
	_, err := s.db.Exec(`
		INSERT INTO media_variants (media_id, name, width, height, s3_key, content_type)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, v.MediaID, v.Name, v.Width, v.Height, v.S3Key, v.ContentType)
	if err != nil {
		return fmt.Errorf("insert media variant: %w", err)
	}
	return nil
}

// VariantsByMediaID returns the renditions of a media item, widest last.
func (s *MediaStore) VariantsByMediaID(mediaID uuid.UUID) ([]models.MediaVariant, error) {
	rows, err := s.db.Query(`
		SELECT id, media_id, name, width, height, s3_key, content_type, created_at
		FROM media_variants
		WHERE media_id = $1
		ORDER BY width
	`, mediaID)
	if err != nil {
		return nil, fmt.Errorf("list media variants: %w", err)
	}
	defer rows.Close()

	var items []models.MediaVariant
	for rows.Next() {
		var v models.MediaVariant
		if err := rows.Scan(&v.ID, &v.MediaID, &v.Name, &v.Width, &v.Height, &v.S3Key, &v.ContentType, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan media variant: %w", err)
		}
		items = append(items, v)
	}
	return items, rows.Err()
}

// Delete removes a media item; variants cascade via the FK.
func (s *MediaStore) Delete(id uuid.UUID) error {
	_, err := s.db.Exec(`DELETE FROM media WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	return nil
}
