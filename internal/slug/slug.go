// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug provides URL-friendly slug generation from arbitrary strings,
// including non-Latin script, plus unique-slug resolution against an
// injected existence oracle.
package slug

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/gosimple/unidecode"
)

var (
	// strippedPunctuation matches characters removed outright rather than
	// replaced with a hyphen.
	strippedPunctuation = regexp.MustCompile(`[*+~.()'"!:@]`)
	// nonAlphanumeric matches anything that isn't a letter, digit, or hyphen.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9-]+`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
)

// Generate creates a URL-friendly slug from the given string.
// Non-Latin script is transliterated to a Latin approximation first;
// characters with no transliteration are dropped, not replaced.
// Example: "Hello, World! 2026" → "hello-world-2026"
func Generate(s string) string {
	result := unidecode.Unidecode(strings.TrimSpace(s))
	result = strings.ToLower(result)
	result = strippedPunctuation.ReplaceAllString(result, "")
	result = nonAlphanumeric.ReplaceAllString(result, "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	return result
}

// Unique derives a slug from name and resolves collisions against taken,
// which reports whether a candidate is already in use (excluding the entity
// being updated, if any). Collisions are suffixed deterministically:
// slug, slug-1, slug-2, … until a free candidate is found.
//
// When the name normalizes to nothing (for example, script with no Latin
// transliteration), a timestamp-plus-random identifier is returned without
// consulting the oracle — it cannot collide in practice.
func Unique(name string, taken func(candidate string) bool) string {
	base := Generate(name)
	if base == "" {
		return fallback()
	}

	if !taken(base) {
		return base
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s-%d", base, i)
		if !taken(candidate) {
			return candidate
		}
	}
}

// fallback builds an identifier for names that produce an empty slug:
// a unix-millisecond timestamp joined with a short random token.
func fallback() string {
	buf := make([]byte, 4)
	rand.Read(buf)
	return fmt.Sprintf("%d-%s", time.Now().UnixMilli(), hex.EncodeToString(buf))
}
