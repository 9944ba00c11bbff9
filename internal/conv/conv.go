// Package conv provides checked integer conversions for the derivative engine.
//
// Term IDs and byte class numbers are narrow integers. A value that does not
// fit is a programming error (the builder interned more than 2^32 terms, or a
// partition produced more than 256 classes), so these helpers panic instead
// of silently truncating.
package conv

import "math"

// IntToUint32 converts an int to uint32.
// Panics if n < 0 or n > math.MaxUint32.
//
//go:inline
func IntToUint32(n int) uint32 {
	// Compare as uint so 32-bit platforms do not overflow the constant.
	if n < 0 || uint(n) > math.MaxUint32 {
		panic("integer overflow: int value out of uint32 range")
	}
	return uint32(n)
}

// IntToByte converts an int to a byte.
// Panics if n < 0 or n > math.MaxUint8.
//
//go:inline
func IntToByte(n int) byte {
	if n < 0 || n > math.MaxUint8 {
		panic("integer overflow: int value out of byte range")
	}
	return byte(n)
}
