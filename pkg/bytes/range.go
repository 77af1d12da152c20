// Copyright 2019 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bytes

import (
	"fmt"
)

// Range defines a generic bytes range.
type Range struct {
	Offset uint64
	Length uint64
}

func (r Range) String() string {
	return fmt.Sprintf(`{"Offset":"0x%x", "Length":"0x%x"}`, r.Offset, r.Length)
}

// End returns the first offset after the range.
func (r Range) End() uint64 {
	return r.Offset + r.Length
}

// Contains returns if the index is covered by the range.
func (r Range) Contains(index uint64) bool {
	// `Offset` is inclusive, while `End()` is exclusive, the same as usual
	// slice indices work:
	//
	//     slice[r.Offset:r.End()]
	return r.Offset <= index && index < r.End()
}

// Intersect returns True if ranges "r" and "cmp" has at least
// one byte with the same offset.
func (r Range) Intersect(cmp Range) bool {
	if r.Length == 0 || cmp.Length == 0 {
		return false
	}
	if r.End() <= cmp.Offset {
		return false
	}
	if r.Offset >= cmp.End() {
		return false
	}
	return true
}

// CheckBounds returns ErrOutOfBounds if the range does not fit into a blob
// of the given size. The check is overflow-safe.
func (r Range) CheckBounds(size uint64) error {
	if r.Offset > size || r.Length > size-r.Offset {
		return &ErrOutOfBounds{Range: r, Size: size}
	}
	return nil
}

// Slice returns the bytes of b referenced by the range.
func (r Range) Slice(b []byte) ([]byte, error) {
	if err := r.CheckBounds(uint64(len(b))); err != nil {
		return nil, err
	}
	return b[r.Offset:r.End()], nil
}

// ErrOutOfBounds is returned when a range exceeds the blob it refers to.
type ErrOutOfBounds struct {
	Range Range
	Size  uint64
}

// Error implements error.
func (err *ErrOutOfBounds) Error() string {
	return fmt.Sprintf("range [0x%x, 0x%x) is beyond blob boundary (size 0x%x)", err.Range.Offset, err.Range.End(), err.Size)
}
