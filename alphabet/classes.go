package alphabet

import "github.com/coregx/deriv/internal/conv"

// ByteClasses maps each byte value to its equivalence class.
//
// Two bytes belong to the same class if no symbol set of the term contains
// one without the other. The derivative of any term built from those sets is
// then identical for both bytes, so a transition computed for the class
// representative serves every member.
//
// Example for a term whose only set is [a-z]:
//   - Class 0: bytes 0x00-0x60 (before 'a')
//   - Class 1: bytes 0x61-0x7a ('a' to 'z')
//   - Class 2: bytes 0x7b-0xff (after 'z')
type ByteClasses struct {
	classes [256]byte
}

// Get returns the equivalence class of b.
func (bc *ByteClasses) Get(b byte) byte {
	return bc.classes[b]
}

// AlphabetLen returns the number of distinct classes.
func (bc *ByteClasses) AlphabetLen() int {
	// Classes are assigned in ascending byte order, so the last byte holds
	// the highest class number.
	return int(bc.classes[255]) + 1
}

// Representatives returns one byte per class, in class order.
func (bc *ByteClasses) Representatives() []byte {
	reps := make([]byte, 0, bc.AlphabetLen())
	next := 0
	for b := 0; b < 256; b++ {
		if int(bc.classes[b]) == next {
			reps = append(reps, conv.IntToByte(b))
			next++
		}
	}
	return reps
}

// ByteClassSet collects class boundaries while walking the sets of a term.
//
// Bit i is set when byte i and byte i+1 must land in different classes.
// Adding a range [lo, hi] sets the boundaries at lo-1 and hi.
type ByteClassSet struct {
	bits [4]uint64
}

// NewByteClassSet creates a boundary set with no boundaries (one class).
func NewByteClassSet() *ByteClassSet {
	return &ByteClassSet{}
}

// SetRange marks [start, end] as a range with distinct transitions.
func (bcs *ByteClassSet) SetRange(start, end byte) {
	if start > 0 {
		bcs.setBit(start - 1)
	}
	bcs.setBit(end)
}

// AddSet marks every maximal range of s.
func (bcs *ByteClassSet) AddSet(s Set) {
	for _, r := range s.Ranges() {
		bcs.SetRange(r.Lo, r.Hi)
	}
}

func (bcs *ByteClassSet) setBit(b byte) {
	bcs.bits[b/64] |= 1 << (b % 64)
}

func (bcs *ByteClassSet) getBit(b byte) bool {
	return bcs.bits[b/64]&(1<<(b%64)) != 0
}

// ByteClasses converts the boundaries into a lookup table by walking the
// bytes in order and opening a new class after every boundary.
func (bcs *ByteClassSet) ByteClasses() ByteClasses {
	var bc ByteClasses
	class := byte(0)
	for b := 0; b < 256; b++ {
		bc.classes[b] = class
		if b < 255 && bcs.getBit(conv.IntToByte(b)) {
			class++
		}
	}
	return bc
}
