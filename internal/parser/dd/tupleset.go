package dd

import (
	"strings"

	"github.com/zeebo/xxh3"

	"github.com/siddharth-krishna/xl2times/internal/records"
)

// tupleSep joins tuple components for hashing. 0x1f (unit separator) cannot
// appear in DD identifiers or descriptions, so the joined form is unambiguous.
const tupleSep = "\x1f"

// TupleSet is a deduplicating, insertion-ordered collection of set tuples.
// Identical tuples collapse to one entry; this models set membership rather
// than a log of assignments, so declaring the same member in several blocks
// or files is not an error and leaves a single tuple.
//
// Membership is keyed by an xxh3 hash of the joined components, which keeps
// the index allocation-light for large sets.
type TupleSet struct {
	seen  map[uint64]struct{}
	order []records.Row
}

// NewTupleSet returns an empty TupleSet.
func NewTupleSet() *TupleSet {
	return &TupleSet{seen: map[uint64]struct{}{}}
}

// Add inserts tuple unless an identical tuple is already present. It reports
// whether the tuple was newly added.
func (s *TupleSet) Add(tuple records.Row) bool {
	key := xxh3.HashString(strings.Join(tuple, tupleSep))
	if _, ok := s.seen[key]; ok {
		return false
	}
	s.seen[key] = struct{}{}
	s.order = append(s.order, tuple)
	return true
}

// Contains reports whether an identical tuple is present.
func (s *TupleSet) Contains(tuple records.Row) bool {
	_, ok := s.seen[xxh3.HashString(strings.Join(tuple, tupleSep))]
	return ok
}

// Union adds every tuple of other into s.
func (s *TupleSet) Union(other *TupleSet) {
	if other == nil {
		return
	}
	for _, t := range other.order {
		s.Add(t)
	}
}

// Len returns the number of distinct tuples.
func (s *TupleSet) Len() int { return len(s.order) }

// Rows returns the distinct tuples in first-insertion order. The returned
// slice is owned by the set; callers must not modify it.
func (s *TupleSet) Rows() []records.Row { return s.order }
