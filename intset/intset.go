// Package intset implements a sorted vector of int64 values with
// binary-search insert, erase and membership test. It is the compact
// encoding for SET objects below the promotion threshold, grounded on
// original_source/intset.{hpp,cpp}.
package intset

import "sort"

// Set is a sorted, duplicate-free vector of int64.
type Set struct {
	data []int64
}

// New returns an empty Set.
func New() *Set {
	return &Set{}
}

// search returns the index of value if present, and the index at
// which it would have to be inserted to keep data sorted otherwise.
func (s *Set) search(value int64) (pos int, found bool) {
	pos = sort.Search(len(s.data), func(i int) bool {
		return s.data[i] >= value
	})
	found = pos < len(s.data) && s.data[pos] == value
	return
}

// Insert adds value to the set. Returns true if value was not already
// present.
func (s *Set) Insert(value int64) bool {
	pos, found := s.search(value)
	if found {
		return false
	}
	s.data = append(s.data, 0)
	copy(s.data[pos+1:], s.data[pos:])
	s.data[pos] = value
	return true
}

// Erase removes value from the set. Returns true if it was present.
func (s *Set) Erase(value int64) bool {
	pos, found := s.search(value)
	if !found {
		return false
	}
	s.data = append(s.data[:pos], s.data[pos+1:]...)
	return true
}

// Contains reports whether value is a member of the set.
func (s *Set) Contains(value int64) bool {
	_, found := s.search(value)
	return found
}

// Len returns the number of elements in the set.
func (s *Set) Len() int {
	return len(s.data)
}

// Data returns the sorted backing slice, for promotion iteration.
// Callers must not mutate the returned slice.
func (s *Set) Data() []int64 {
	return s.data
}

// Clone returns a deep copy of s.
func (s *Set) Clone() *Set {
	data := make([]int64, len(s.data))
	copy(data, s.data)
	return &Set{data: data}
}
