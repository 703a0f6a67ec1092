// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package taxonomy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"newsdesk/internal/models"
	"newsdesk/internal/slug"
)

// maxWriteAttempts bounds the retry loop for slug unique-index races.
// Each retry re-derives the slug from a fresh snapshot, so two concurrent
// creators converge on distinct suffixes instead of looping forever.
const maxWriteAttempts = 3

// Store is the category persistence collaborator. Implementations must
// translate unique-index violations on slug and name into ErrSlugConflict
// and ErrNameConflict respectively, and apply Update as a single atomic
// write — callers never observe a partially updated row.
type Store interface {
	All() ([]models.Category, error)
	Insert(c *models.Category) (*models.Category, error)
	Update(c *models.Category) error
	Delete(id uuid.UUID) error
}

// Service enforces the category tree invariants: unique slugs and names,
// cached levels, per-parent sort order, cycle-free parent chains, and the
// no-children delete guard.
type Service struct {
	store Store
}

// NewService returns a Service persisting through store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Snapshot loads the full category set and indexes it. Every public
// operation starts from a fresh snapshot so it sees current state.
func (s *Service) Snapshot() (*Snapshot, error) {
	cats, err := s.store.All()
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	return NewSnapshot(cats), nil
}

// Input carries the caller-supplied fields for create and update.
// A nil ParentID files the category at the root.
type Input struct {
	Name        string
	Description string
	ParentID    *uuid.UUID
}

// Create inserts a new category. The slug derives from the name with
// deterministic numeric suffixing on collision; level and sort order are
// computed from the parent and its existing children. Name must be unique
// across all categories.
func (s *Service) Create(in Input) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		snap, err := s.Snapshot()
		if err != nil {
			return nil, err
		}

		if snap.NameTaken(name, uuid.Nil) {
			return nil, ErrNameTaken
		}

		level := 0
		if in.ParentID != nil {
			parent := snap.Get(*in.ParentID)
			if parent == nil {
				return nil, ErrParentNotFound
			}
			level = parent.Level + 1
		}

		cat := &models.Category{
			Name:        name,
			Slug:        slug.Unique(name, func(c string) bool { return snap.SlugTaken(c, uuid.Nil) }),
			Description: strings.TrimSpace(in.Description),
			ParentID:    in.ParentID,
			Level:       level,
			SortOrder:   snap.NextSortOrder(in.ParentID),
		}

		created, err := s.store.Insert(cat)
		if errors.Is(err, ErrSlugConflict) {
			continue // lost a slug race; re-derive from fresh state
		}
		if errors.Is(err, ErrNameConflict) {
			return nil, ErrNameTaken
		}
		if err != nil {
			return nil, fmt.Errorf("create category: %w", err)
		}
		return created, nil
	}
	return nil, fmt.Errorf("create category: slug contention persisted after %d attempts", maxWriteAttempts)
}

// Update replaces the mutable fields of an existing category. The slug is
// regenerated only when the name actually changed. A parent change
// recomputes this node's level and assigns a fresh sort order under the
// new parent, discarding the old one; descendants keep their stored
// levels — recomputation is intentionally not cascaded, so they can go
// stale relative to a reparented ancestor. Name uniqueness is not
// re-checked on update; the unique index still rejects true duplicates.
func (s *Service) Update(id uuid.UUID, in Input) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		snap, err := s.Snapshot()
		if err != nil {
			return nil, err
		}

		node := snap.Get(id)
		if node == nil {
			return nil, ErrNotFound
		}

		updated := *node
		updated.Description = strings.TrimSpace(in.Description)

		if name != node.Name {
			updated.Name = name
			updated.Slug = slug.Unique(name, func(c string) bool { return snap.SlugTaken(c, id) })
		}

		if !parentEqual(in.ParentID, node.ParentID) {
			if in.ParentID != nil {
				proposed := snap.Get(*in.ParentID)
				if proposed == nil {
					return nil, ErrParentNotFound
				}
				// Walk upward from the proposed parent; finding the node
				// itself means the assignment would close a cycle.
				if snap.isAncestorOrSelf(id, *in.ParentID) {
					return nil, ErrCyclicParent
				}
				updated.Level = proposed.Level + 1
			} else {
				updated.Level = 0
			}
			updated.ParentID = in.ParentID
			updated.SortOrder = snap.NextSortOrder(in.ParentID)
		}

		err = s.store.Update(&updated)
		if errors.Is(err, ErrSlugConflict) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("update category: %w", err)
		}
		return &updated, nil
	}
	return nil, fmt.Errorf("update category: slug contention persisted after %d attempts", maxWriteAttempts)
}

// Delete removes a category. Categories with direct children cannot be
// deleted — the tree never silently orphans or cascades.
func (s *Service) Delete(id uuid.UUID) error {
	snap, err := s.Snapshot()
	if err != nil {
		return err
	}
	if snap.Get(id) == nil {
		return ErrNotFound
	}
	if len(snap.Children(&id)) > 0 {
		return ErrHasChildren
	}
	if err := s.store.Delete(id); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	return nil
}

// MatchPrefix matches URL segments against the current tree.
func (s *Service) MatchPrefix(segments []string) (Match, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return Match{}, err
	}
	return snap.MatchPrefix(segments)
}

// PathInfo returns breadcrumb data for a category.
func (s *Service) PathInfo(id uuid.UUID) (PathInfo, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return PathInfo{}, err
	}
	return snap.PathInfo(id)
}

// SubtreeIDs returns id plus all transitive descendant IDs.
func (s *Service) SubtreeIDs(id uuid.UUID) (map[uuid.UUID]struct{}, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return snap.SubtreeIDs(id), nil
}

// parentEqual compares two optional parent references (both nil or same value).
func parentEqual(a, b *uuid.UUID) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}
