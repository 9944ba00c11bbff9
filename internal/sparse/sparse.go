// Package sparse provides a sparse set of dense uint32 identifiers.
//
// Terms are numbered densely by the builder that interns them, so walks over
// a term DAG can track visited nodes in a sparse set sized by the builder's
// term count: O(1) insert and membership, O(1) clear, insertion-ordered
// iteration.
package sparse

// SparseSet is a set of uint32 values drawn from [0, capacity).
// The sparse array maps a value to its index in dense; dense holds the
// members in insertion order.
type SparseSet struct {
	sparse []uint32
	dense  []uint32
}

// NewSparseSet creates a set able to hold values in [0, capacity).
func NewSparseSet(capacity uint32) *SparseSet {
	return &SparseSet{
		sparse: make([]uint32, capacity),
		dense:  make([]uint32, 0, min(capacity, 64)),
	}
}

// Insert adds value to the set and reports whether it was newly added.
// Values at or beyond the capacity grow the sparse array.
func (s *SparseSet) Insert(value uint32) bool {
	if s.Contains(value) {
		return false
	}
	if int(value) >= len(s.sparse) {
		grown := make([]uint32, int(value)*2+1)
		copy(grown, s.sparse)
		s.sparse = grown
	}
	s.sparse[value] = uint32(len(s.dense))
	s.dense = append(s.dense, value)
	return true
}

// Contains reports whether value is in the set.
func (s *SparseSet) Contains(value uint32) bool {
	if int(value) >= len(s.sparse) {
		return false
	}
	idx := s.sparse[value]
	return int(idx) < len(s.dense) && s.dense[idx] == value
}

// Remove deletes value from the set by swapping the last member into its slot.
func (s *SparseSet) Remove(value uint32) {
	if !s.Contains(value) {
		return
	}
	idx := s.sparse[value]
	last := s.dense[len(s.dense)-1]
	s.dense[idx] = last
	s.sparse[last] = idx
	s.dense = s.dense[:len(s.dense)-1]
}

// Clear empties the set in O(1).
func (s *SparseSet) Clear() {
	s.dense = s.dense[:0]
}

// Len returns the number of members.
func (s *SparseSet) Len() int {
	return len(s.dense)
}

// IsEmpty reports whether the set has no members.
func (s *SparseSet) IsEmpty() bool {
	return len(s.dense) == 0
}

// Values returns the members in insertion order.
// The slice is valid until the next mutation.
func (s *SparseSet) Values() []uint32 {
	return s.dense
}
