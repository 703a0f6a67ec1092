// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package imaging generates responsive image variants for uploaded media.
// It converts uploads into multiple JPEG variants sized for mobile,
// tablet, and desktop breakpoints. Variants wider than the source are
// skipped to avoid upscaling.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	"github.com/disintegration/imaging"
)

// MaxUploadSize is the largest accepted image upload.
const MaxUploadSize = 10 * 1024 * 1024

// Variant describes a single responsive image size.
type Variant struct {
	Name    string // e.g., "thumb", "sm", "md", "lg"
	Width   int    // Target width in pixels
	Quality int    // JPEG quality 1-100
}

// DefaultVariants defines the standard breakpoints for responsive web images.
var DefaultVariants = []Variant{
	{Name: "thumb", Width: 320, Quality: 75},
	{Name: "sm", Width: 640, Quality: 82},
	{Name: "md", Width: 1024, Quality: 82},
	{Name: "lg", Width: 1920, Quality: 82},
}

// ProcessedImage holds one generated variant ready for upload.
type ProcessedImage struct {
	Name        string // Variant name (e.g., "sm")
	Width       int    // Actual output width
	Height      int    // Actual output height
	Data        []byte // JPEG-encoded image bytes
	ContentType string // Always "image/jpeg"
}

// Validate checks that data is a decodable JPEG, PNG, or GIF image and
// does not exceed MaxUploadSize.
func Validate(data []byte) error {
	if int64(len(data)) > MaxUploadSize {
		return fmt.Errorf("imaging: upload exceeds %d MB", MaxUploadSize/(1024*1024))
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("imaging: not an image: %w", err)
	}
	switch format {
	case "jpeg", "png", "gif":
		return nil
	default:
		return fmt.Errorf("imaging: format %s not allowed", format)
	}
}

// GenerateVariants creates JPEG variants of the source image for each
// configured breakpoint. It skips variants wider than the original to
// avoid upscaling. Returns at least one variant (the smallest that fits).
func GenerateVariants(original []byte, variants []Variant) ([]ProcessedImage, error) {
	if len(variants) == 0 {
		variants = DefaultVariants
	}

	img, _, err := image.Decode(bytes.NewReader(original))
	if err != nil {
		return nil, fmt.Errorf("imaging: decode failed: %w", err)
	}
	origWidth := img.Bounds().Dx()

	var results []ProcessedImage

	for _, v := range variants {
		targetWidth := v.Width

		// Cap at original width to avoid upscaling.
		if origWidth <= targetWidth {
			targetWidth = origWidth
		}

		resized := imaging.Resize(img, targetWidth, 0, imaging.Lanczos)

		var buf bytes.Buffer
		if err := jpeg.Encode(&buf, resized, &jpeg.Options{Quality: v.Quality}); err != nil {
			return nil, fmt.Errorf("imaging: encode %s (%dpx): %w", v.Name, targetWidth, err)
		}

		bounds := resized.Bounds()
		results = append(results, ProcessedImage{
			Name:        v.Name,
			Width:       bounds.Dx(),
			Height:      bounds.Dy(),
			Data:        buf.Bytes(),
			ContentType: "image/jpeg",
		})

		// If we already processed the original-width image, no point
		// generating larger variants.
		if origWidth <= v.Width {
			break
		}
	}

	return results, nil
}
