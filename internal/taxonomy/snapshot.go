// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package taxonomy implements the category tree: an in-memory snapshot for
// traversal and path matching, and a service enforcing the tree invariants
// on mutation. The snapshot is rebuilt from a single full load per
// operation, so traversals never issue per-node queries and every request
// sees current state.
package taxonomy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"

	"newsdesk/internal/models"
)

// childKey addresses a category by its parent and slug. uuid.Nil stands in
// for "no parent" so root lookups share the same index.
type childKey struct {
	parent uuid.UUID
	slug   string
}

// Snapshot is an immutable in-memory index of the full category set.
type Snapshot struct {
	byID        map[uuid.UUID]*models.Category
	children    map[uuid.UUID][]*models.Category
	childBySlug map[childKey]*models.Category
}

// NewSnapshot indexes a flat category list. Child lists are ordered by
// sort order, then name, matching the listing order of the store.
func NewSnapshot(cats []models.Category) *Snapshot {
	s := &Snapshot{
		byID:        make(map[uuid.UUID]*models.Category, len(cats)),
		children:    make(map[uuid.UUID][]*models.Category),
		childBySlug: make(map[childKey]*models.Category, len(cats)),
	}

	for i := range cats {
		c := &cats[i]
		s.byID[c.ID] = c
	}
	for i := range cats {
		c := &cats[i]
		parent := uuid.Nil
		if c.ParentID != nil {
			parent = *c.ParentID
		}
		s.children[parent] = append(s.children[parent], c)
		s.childBySlug[childKey{parent: parent, slug: c.Slug}] = c
	}

	for parent := range s.children {
		siblings := s.children[parent]
		sort.Slice(siblings, func(i, j int) bool {
			if siblings[i].SortOrder != siblings[j].SortOrder {
				return siblings[i].SortOrder < siblings[j].SortOrder
			}
			return siblings[i].Name < siblings[j].Name
		})
	}

	return s
}

// Len returns the number of categories in the snapshot.
func (s *Snapshot) Len() int {
	return len(s.byID)
}

// Get returns the category with the given ID, or nil if absent.
func (s *Snapshot) Get(id uuid.UUID) *models.Category {
	return s.byID[id]
}

// Children returns the direct children of parentID in display order.
// A nil parentID selects the root categories.
func (s *Snapshot) Children(parentID *uuid.UUID) []models.Category {
	parent := uuid.Nil
	if parentID != nil {
		parent = *parentID
	}
	kids := s.children[parent]
	out := make([]models.Category, len(kids))
	for i, c := range kids {
		out[i] = *c
	}
	return out
}

// Child returns the child of parentID carrying the given slug, or nil.
func (s *Snapshot) Child(parentID *uuid.UUID, slug string) *models.Category {
	parent := uuid.Nil
	if parentID != nil {
		parent = *parentID
	}
	return s.childBySlug[childKey{parent: parent, slug: slug}]
}

// SubtreeIDs returns the IDs of rootID and all its transitive descendants.
// The result always contains rootID, even when it is unknown to the
// snapshot. Traversal is an iterative walk with a visited set — the tree
// invariants forbid cycles, but data repaired by hand may not honor them.
func (s *Snapshot) SubtreeIDs(rootID uuid.UUID) map[uuid.UUID]struct{} {
	ids := map[uuid.UUID]struct{}{rootID: {}}
	queue := []uuid.UUID{rootID}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, child := range s.children[current] {
			if _, seen := ids[child.ID]; seen {
				continue
			}
			ids[child.ID] = struct{}{}
			queue = append(queue, child.ID)
		}
	}
	return ids
}

// NextSortOrder returns the ordering value a new child of parentID should
// receive: one past the current maximum among siblings, or 0 for the first.
func (s *Snapshot) NextSortOrder(parentID *uuid.UUID) int {
	parent := uuid.Nil
	if parentID != nil {
		parent = *parentID
	}
	siblings := s.children[parent]
	if len(siblings) == 0 {
		return 0
	}
	max := siblings[0].SortOrder
	for _, c := range siblings[1:] {
		if c.SortOrder > max {
			max = c.SortOrder
		}
	}
	return max + 1
}

// isAncestorOrSelf reports whether node appears on the ancestor chain of
// start, start itself included. Used for cycle rejection before reparenting.
func (s *Snapshot) isAncestorOrSelf(node, start uuid.UUID) bool {
	visited := make(map[uuid.UUID]struct{})
	current := s.byID[start]
	for current != nil {
		if current.ID == node {
			return true
		}
		if _, seen := visited[current.ID]; seen {
			return false // defensive: malformed data with a parent cycle
		}
		visited[current.ID] = struct{}{}
		if current.ParentID == nil {
			return false
		}
		current = s.byID[*current.ParentID]
	}
	return false
}

// SlugTaken reports whether any category other than exclude uses slug.
// Pass uuid.Nil to exclude nothing.
func (s *Snapshot) SlugTaken(slug string, exclude uuid.UUID) bool {
	for _, c := range s.byID {
		if c.Slug == slug && c.ID != exclude {
			return true
		}
	}
	return false
}

// NameTaken reports whether any category other than exclude uses name.
func (s *Snapshot) NameTaken(name string, exclude uuid.UUID) bool {
	for _, c := range s.byID {
		if c.Name == name && c.ID != exclude {
			return true
		}
	}
	return false
}

// Match is the result of matching a segment path against the tree:
// the matched ancestor chain in root-to-leaf order, plus the segments
// that were not consumed.
type Match struct {
	Matched   []models.Category
	Remaining []string
}

// Leaf returns the deepest matched category.
func (m Match) Leaf() *models.Category {
	if len(m.Matched) == 0 {
		return nil
	}
	return &m.Matched[len(m.Matched)-1]
}

// Complete reports whether every segment was consumed by the match.
func (m Match) Complete() bool {
	return len(m.Remaining) == 0
}

// MatchPrefix walks segments left to right, matching each against the
// children of the previously matched node (starting at the roots). A miss
// on the first segment means no category path exists at all and is an
// error naming the segment. A miss later stops the walk and returns the
// unconsumed tail as Remaining — the caller may still try it as an
// article slug.
func (s *Snapshot) MatchPrefix(segments []string) (Match, error) {
	if len(segments) == 0 {
		return Match{}, fmt.Errorf("%w: empty category path", ErrNotFound)
	}

	var matched []models.Category
	var parentID *uuid.UUID

	for i, segment := range segments {
		found := s.Child(parentID, segment)
		if found == nil {
			if i == 0 {
				return Match{}, fmt.Errorf("%w: no root category with slug %q", ErrNotFound, segment)
			}
			return Match{Matched: matched, Remaining: segments[i:]}, nil
		}
		matched = append(matched, *found)
		parentID = &found.ID
	}

	return Match{Matched: matched, Remaining: nil}, nil
}

// Crumb is one breadcrumb entry on a category's ancestor path.
type Crumb struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Level int    `json:"level"`
}

// PathInfo describes a category's position in the tree for breadcrumb
// rendering: the node itself, its root-to-leaf ancestor path, and the
// slash-joined slug path.
type PathInfo struct {
	Current  models.Category `json:"current"`
	Path     []Crumb         `json:"path"`
	FullPath string          `json:"full_path"`
}

// PathInfo walks parent references upward from id to the root and reverses
// the chain. Crumb levels are the stored ones, which may lag behind an
// ancestor reparent.
func (s *Snapshot) PathInfo(id uuid.UUID) (PathInfo, error) {
	node := s.byID[id]
	if node == nil {
		return PathInfo{}, fmt.Errorf("%w: id %s", ErrNotFound, id)
	}

	var chain []*models.Category
	visited := make(map[uuid.UUID]struct{})
	for current := node; current != nil; {
		if _, seen := visited[current.ID]; seen {
			break // defensive against parent cycles in repaired data
		}
		visited[current.ID] = struct{}{}
		chain = append(chain, current)
		if current.ParentID == nil {
			break
		}
		current = s.byID[*current.ParentID]
	}

	info := PathInfo{Current: *node}
	slugs := make([]string, 0, len(chain))
	for i := len(chain) - 1; i >= 0; i-- {
		c := chain[i]
		info.Path = append(info.Path, Crumb{Name: c.Name, Slug: c.Slug, Level: c.Level})
		slugs = append(slugs, c.Slug)
	}
	info.FullPath = strings.Join(slugs, "/")
	return info, nil
}

// Tree returns the categories as a nested structure with Children
// populated, roots first, in display order.
func (s *Snapshot) Tree() []models.Category {
	return s.subtree(uuid.Nil)
}

// subtree builds the nested children of the given parent recursively.
func (s *Snapshot) subtree(parent uuid.UUID) []models.Category {
	var result []models.Category
	for _, c := range s.children[parent] {
		node := *c
		node.Children = s.subtree(c.ID)
		result = append(result, node)
	}
	return result
}

// All returns every category as a flat list in no particular order.
func (s *Snapshot) All() []models.Category {
	out := make([]models.Category, 0, len(s.byID))
	for _, c := range s.byID {
		out = append(out, *c)
	}
	return out
}
