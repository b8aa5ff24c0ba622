package validation

import (
	"iter"
	"slices"
	"sync"
)

// Set is a set of diagnostics deduplicated by Key. The first diagnostic added for a key is kept.
// A Set is safe for concurrent use.
type Set struct {
	mu    sync.RWMutex
	index map[Key]int
	errs  []*Error
}

// NewSet creates a set holding the given diagnostics.
func NewSet(errs ...*Error) *Set {
	s := &Set{}
	s.AddAll(errs...)
	return s
}

// Add adds the diagnostic and reports whether it was not already present.
func (s *Set) Add(err *Error) bool {
	if err == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.index == nil {
		s.index = make(map[Key]int)
	}
	key := err.Key()
	if _, ok := s.index[key]; ok {
		return false
	}
	s.index[key] = len(s.errs)
	s.errs = append(s.errs, err)
	return true
}

// AddAll adds every non-nil diagnostic.
func (s *Set) AddAll(errs ...*Error) {
	for _, err := range errs {
		s.Add(err)
	}
}

// Union adds every diagnostic of other to s and returns s.
func (s *Set) Union(other *Set) *Set {
	if other == nil || other == s {
		return s
	}
	s.AddAll(other.snapshot()...)
	return s
}

// Contains reports whether a diagnostic with the same key is present.
func (s *Set) Contains(err *Error) bool {
	if s == nil || err == nil {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.index[err.Key()]
	return ok
}

// Len returns the number of distinct diagnostics.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.errs)
}

// Equal reports whether both sets hold the same keys.
func (s *Set) Equal(other *Set) bool {
	if s.Len() != other.Len() {
		return false
	}
	if s.Len() == 0 {
		return true
	}
	for _, err := range other.snapshot() {
		if !s.Contains(err) {
			return false
		}
	}
	return true
}

// Errors returns the diagnostics sorted by position.
func (s *Set) Errors() []*Error {
	errs := s.snapshot()
	slices.SortStableFunc(errs, compareValidationErrors)
	return errs
}

// All iterates the diagnostics in insertion order.
func (s *Set) All() iter.Seq[*Error] {
	return slices.Values(s.snapshot())
}

// HasErrors reports whether any diagnostic has error severity.
func (s *Set) HasErrors() bool {
	for _, err := range s.snapshot() {
		if err.GetSeverity() == SeverityError {
			return true
		}
	}
	return false
}

// Filter returns a new set holding the diagnostics for which keep returns true.
func (s *Set) Filter(keep func(*Error) bool) *Set {
	filtered := &Set{}
	for _, err := range s.snapshot() {
		if keep(err) {
			filtered.Add(err)
		}
	}
	return filtered
}

func (s *Set) snapshot() []*Error {
	if s == nil {
		return nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.errs)
}
