// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package taxonomy

import "errors"

// Validation and conflict errors surfaced by the category service.
// Handlers map these onto HTTP status codes; the messages are shown to
// callers verbatim.
var (
	// ErrNameRequired is returned when a category is submitted without a name.
	ErrNameRequired = errors.New("category name is required")

	// ErrNameTaken is returned on create when another category already uses
	// the name. Updates do not re-check the name; the unique index backstops.
	ErrNameTaken = errors.New("category name already in use")

	// ErrCyclicParent is returned when a parent assignment would make a
	// category its own ancestor (including parenting it to itself).
	ErrCyclicParent = errors.New("category cannot be its own ancestor")

	// ErrHasChildren is returned when deleting a category that still has
	// direct children. Deletion never cascades or orphans.
	ErrHasChildren = errors.New("category has child categories")

	// ErrNotFound is returned when the referenced category does not exist.
	ErrNotFound = errors.New("category not found")

	// ErrParentNotFound is returned when the proposed parent does not exist,
	// including when it was deleted concurrently between lookup and write.
	ErrParentNotFound = errors.New("parent category not found")
)

// Unique-index violations translated by Store implementations. The service
// reacts to ErrSlugConflict by re-deriving the slug from fresh state and
// retrying the write.
var (
	ErrSlugConflict = errors.New("category slug already in use")
	ErrNameConflict = errors.New("category name unique index violation")
)
