package handlers

import (
	"strings"
	"unicode/utf8"
)

// Validation limits for category and article fields.
const (
	maxNameLen    = 200
	maxDescLen    = 1_000
	maxTitleLen   = 300
	maxBodyLen    = 100_000
	maxExcerptLen = 1_000
	maxAltTextLen = 500
)

// validateCategory checks category inputs and returns the first error found.
func validateCategory(name, description string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "Name is required."
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return "Name is too long (max 200 characters)."
	}
	if utf8.RuneCountInString(description) > maxDescLen {
		return "Description is too long (max 1,000 characters)."
	}
	return ""
}

// validateArticle checks article inputs and returns the first error found.
func validateArticle(title, body, excerpt string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return "Title is too long (max 300 characters)."
	}
	if strings.TrimSpace(body) == "" {
		return "Body is required."
	}
	if utf8.RuneCountInString(body) > maxBodyLen {
		return "Body is too long (max 100,000 characters)."
	}
	if utf8.RuneCountInString(excerpt) > maxExcerptLen {
		return "Excerpt is too long (max 1,000 characters)."
	}
	return ""
}
