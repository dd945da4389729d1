// Package selection tracks which records an operator has chosen for a bulk
// action, independent of the filter or page currently on screen.
package selection

import (
	"github.com/google/uuid"
	"github.com/opsconsole/backend/internal/domain/shared"
)

// Eligibility reports whether a record id may be selected right now
type Eligibility func(id uuid.UUID) bool

// HeaderState is the tri-state of a "select all" header checkbox
type HeaderState string

const (
	HeaderNone HeaderState = "none"
	HeaderSome HeaderState = "some"
	HeaderAll  HeaderState = "all"
)

// ErrNotSelectable is returned when toggling a terminal or unknown record
var ErrNotSelectable = shared.NewDomainError("NOT_SELECTABLE", "Record cannot be selected")

// Store is an insertion-ordered set of selected ids. It never holds an id
// its eligibility predicate rejects. Store is not safe for concurrent use;
// callers serialize access.
type Store struct {
	order    []uuid.UUID
	set      map[uuid.UUID]struct{}
	eligible Eligibility
}

// NewStore creates an empty store bound to an eligibility predicate
func NewStore(eligible Eligibility) *Store {
	if eligible == nil {
		eligible = func(uuid.UUID) bool { return true }
	}
	return &Store{
		set:      make(map[uuid.UUID]struct{}),
		eligible: eligible,
	}
}

// Bind replaces the eligibility predicate, e.g. after a reload
func (s *Store) Bind(eligible Eligibility) {
	if eligible != nil {
		s.eligible = eligible
	}
}

// Toggle flips membership of id and returns whether it is now selected.
// Ineligible ids are rejected and leave the store unchanged.
func (s *Store) Toggle(id uuid.UUID) (bool, error) {
	if s.Contains(id) {
		s.remove(id)
		return false, nil
	}
	if !s.eligible(id) {
		return false, ErrNotSelectable
	}
	s.add(id)
	return true, nil
}

// SelectAllVisible acts only on the eligible ids in visible: if all of
// them are already selected they are deselected, otherwise all of them
// are added. Selections outside visible are untouched.
func (s *Store) SelectAllVisible(visible []uuid.UUID) {
	targets := s.eligibleOf(visible)
	if len(targets) == 0 {
		return
	}
	if s.containsAll(targets) {
		drop := make(map[uuid.UUID]struct{}, len(targets))
		for _, id := range targets {
			drop[id] = struct{}{}
		}
		s.Retain(func(id uuid.UUID) bool {
			_, ok := drop[id]
			return !ok
		})
		return
	}
	for _, id := range targets {
		s.add(id)
	}
}

// Clear empties the store
func (s *Store) Clear() {
	s.order = nil
	s.set = make(map[uuid.UUID]struct{})
}

// Prune drops every id absent from valid or no longer eligible and returns
// how many were removed.
func (s *Store) Prune(valid []uuid.UUID) int {
	keep := make(map[uuid.UUID]struct{}, len(valid))
	for _, id := range valid {
		keep[id] = struct{}{}
	}
	return s.Retain(func(id uuid.UUID) bool {
		_, ok := keep[id]
		return ok && s.eligible(id)
	})
}

// Retain keeps only the ids for which keep returns true
func (s *Store) Retain(keep func(uuid.UUID) bool) int {
	removed := 0
	kept := s.order[:0]
	for _, id := range s.order {
		if keep(id) {
			kept = append(kept, id)
			continue
		}
		delete(s.set, id)
		removed++
	}
	s.order = kept
	return removed
}

// Restore replaces the contents with ids, skipping ineligible ones
func (s *Store) Restore(ids []uuid.UUID) {
	s.Clear()
	for _, id := range ids {
		if s.eligible(id) {
			s.add(id)
		}
	}
}

// IDs returns the selected ids in selection order
func (s *Store) IDs() []uuid.UUID {
	out := make([]uuid.UUID, len(s.order))
	copy(out, s.order)
	return out
}

// Len returns the number of selected ids
func (s *Store) Len() int {
	return len(s.order)
}

// Contains reports whether id is selected
func (s *Store) Contains(id uuid.UUID) bool {
	_, ok := s.set[id]
	return ok
}

// HeaderState reports the header checkbox state for the visible ids
func (s *Store) HeaderState(visible []uuid.UUID) HeaderState {
	targets := s.eligibleOf(visible)
	selected := 0
	for _, id := range targets {
		if s.Contains(id) {
			selected++
		}
	}
	switch {
	case selected == 0:
		return HeaderNone
	case selected == len(targets):
		return HeaderAll
	default:
		return HeaderSome
	}
}

func (s *Store) eligibleOf(ids []uuid.UUID) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if s.eligible(id) {
			out = append(out, id)
		}
	}
	return out
}

func (s *Store) containsAll(ids []uuid.UUID) bool {
	for _, id := range ids {
		if !s.Contains(id) {
			return false
		}
	}
	return true
}

func (s *Store) add(id uuid.UUID) {
	if s.Contains(id) {
		return
	}
	s.set[id] = struct{}{}
	s.order = append(s.order, id)
}

func (s *Store) remove(id uuid.UUID) {
	if !s.Contains(id) {
		return
	}
	delete(s.set, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}
