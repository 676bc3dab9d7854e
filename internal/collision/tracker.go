// Package collision tracks field names while a format file is parsed.
package collision

import (
	"fmt"

	"github.com/arloliu/dirfile/errs"
)

// Tracker records field names keyed by their hash and rejects duplicates.
//
// Distinct names that share a hash are legal; the tracker keeps them in a
// per-hash bucket so lookups stay exact.
type Tracker struct {
	names   map[uint64][]string
	ordered []string
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		names:   make(map[uint64][]string),
		ordered: make([]string, 0),
	}
}

// Track records name under hash.
//
// Returns errs.ErrInvalidFieldName for an empty name and
// errs.ErrDuplicateField when the same name was tracked before.
func (t *Tracker) Track(name string, hash uint64) error {
	if name == "" {
		return errs.ErrInvalidFieldName
	}

	for _, existing := range t.names[hash] {
		if existing == name {
			return fmt.Errorf("%w: %q", errs.ErrDuplicateField, name)
		}
	}

	t.names[hash] = append(t.names[hash], name)
	t.ordered = append(t.ordered, name)

	return nil
}

// Contains reports whether name was tracked under hash.
func (t *Tracker) Contains(name string, hash uint64) bool {
	for _, existing := range t.names[hash] {
		if existing == name {
			return true
		}
	}

	return false
}

// HasCollision reports whether two distinct names share a hash.
func (t *Tracker) HasCollision() bool {
	for _, bucket := range t.names {
		if len(bucket) > 1 {
			return true
		}
	}

	return false
}

// Names returns the tracked names in insertion order.
func (t *Tracker) Names() []string {
	return t.ordered
}

// Count returns the number of tracked names.
func (t *Tracker) Count() int {
	return len(t.ordered)
}
