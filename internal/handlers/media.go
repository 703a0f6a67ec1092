// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"newsdesk/internal/imaging"
	"newsdesk/internal/middleware"
	"newsdesk/internal/models"
	"newsdesk/internal/storage"
	"newsdesk/internal/store"
)

// Media groups the media upload and management handlers.
type Media struct {
	store   *store.MediaStore
	storage *storage.Client
}

// NewMedia creates a new Media handler group.
// storage may be nil when S3 is not configured; uploads then return 503.
func NewMedia(mediaStore *store.MediaStore, storageClient *storage.Client) *Media {
	return &Media{store: mediaStore, storage: storageClient}
}

// mediaView is a Media enriched with serving URLs.
type mediaView struct {
	models.Media
	URL         string            `json:"url"`
	VariantURLs map[string]string `json:"variant_urls,omitempty"`
}

// Upload accepts a multipart image upload, stores the original in S3,
// generates responsive variants, and records everything in the database.
func (h *Media) Upload(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		respondError(w, http.StatusServiceUnavailable, "Object storage is not configured.")
		return
	}

	sess := middleware.SessionFromCtx(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadSize+1024)
	if err := r.ParseMultipartForm(imaging.MaxUploadSize); err != nil {
		respondError(w, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 10 MB.")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "No file provided.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read upload.")
		return
	}

	if err := imaging.Validate(data); err != nil {
		respondError(w, http.StatusUnsupportedMediaType, "Only JPEG, PNG, and GIF images are accepted.")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	id := uuid.New()
	ext := strings.ToLower(filepath.Ext(header.Filename))
	filename := id.String() + ext
	key := fmt.Sprintf("media/%s/%s", id, filename)

	ctx := r.Context()
	if err := h.storage.Upload(ctx, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		slog.Error("media upload failed", "key", key, "error", err)
		respondError(w, http.StatusBadGateway, "Upload to storage failed.")
		return
	}

	media := &models.Media{
		ID:           id,
		Filename:     filename,
		OriginalName: header.Filename,
		ContentType:  contentType,
		SizeBytes:    int64(len(data)),
		Bucket:       h.storage.Bucket(),
		S3Key:        key,
		AltText:      optionalString(r.FormValue("alt_text")),
		UploaderID:   sess.UserID,
	}
	created, err := h.store.Insert(media)
	if err != nil {
		slog.Error("media record insert failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to record upload.")
		return
	}

	view := mediaView{
		Media:       *created,
		URL:         h.storage.FileURL(key),
		VariantURLs: map[string]string{},
	}

	// Variant generation failure does not fail the upload; the original
	// is already stored and serveable.
	variants, err := imaging.GenerateVariants(data, nil)
	if err != nil {
		slog.Warn("variant generation failed", "media", id, "error", err)
		respondJSON(w, http.StatusCreated, map[string]any{"media": view})
		return
	}

	for _, v := range variants {
		variantKey := fmt.Sprintf("media/%s/%s-%s.jpg", id, strings.TrimSuffix(filename, ext), v.Name)
		if err := h.storage.Upload(ctx, variantKey, v.ContentType, bytes.NewReader(v.Data), int64(len(v.Data))); err != nil {
			slog.Warn("variant upload failed", "key", variantKey, "error", err)
			continue
		}
		record := &models.MediaVariant{
			MediaID:     id,
			Name:        v.Name,
			Width:       v.Width,
			Height:      v.Height,
			S3Key:       variantKey,
			ContentType: v.ContentType,
		}
		if err := h.store.InsertVariant(record); err != nil {
			slog.Warn("variant record insert failed", "key", variantKey, "error", err)
			continue
		}
		view.Variants = append(view.Variants, *record)
		view.VariantURLs[v.Name] = h.storage.FileURL(variantKey)
	}

	respondJSON(w, http.StatusCreated, map[string]any{"media": view})
}

// Delete removes a media item, its variants, and the stored objects.
func (h *Media) Delete(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		respondError(w, http.StatusServiceUnavailable, "Object storage is not configured.")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid media id.")
		return
	}

	media, err := h.store.FindByID(id)
	if err != nil {
		slog.Error("media lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to load media.")
		return
	}
	if media == nil {
		respondError(w, http.StatusNotFound, "Media not found.")
		return
	}

	ctx := r.Context()
	variants, _ := h.store.VariantsByMediaID(id)
	for _, v := range variants {
		if err := h.storage.Delete(ctx, v.S3Key); err != nil {
			slog.Warn("variant object delete failed", "key", v.S3Key, "error", err)
		}
	}
	if err := h.storage.Delete(ctx, media.S3Key); err != nil {
		slog.Warn("media object delete failed", "key", media.S3Key, "error", err)
	}

	// Variants cascade via the foreign key.
	if err := h.store.Delete(id); err != nil {
		slog.Error("media record delete failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to delete media.")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"deleted": id})
}
