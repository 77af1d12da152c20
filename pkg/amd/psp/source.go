// Copyright 2023 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package psp

import (
	"fmt"
	"io"

	bytes2 "github.com/linuxboot/psploader/pkg/bytes"
)

// ByteSource is a random-access view of a firmware binary. Read fails if
// the requested range exceeds the bounds of the source.
type ByteSource interface {
	Read(offset uint64, length uint32) ([]byte, error)
}

// BytesSource is a ByteSource over an in-memory image.
type BytesSource []byte

// Read implements ByteSource.
func (s BytesSource) Read(offset uint64, length uint32) ([]byte, error) {
	return bytes2.Range{Offset: offset, Length: uint64(length)}.Slice(s)
}

// Len returns the size of the image.
func (s BytesSource) Len() uint64 {
	return uint64(len(s))
}

// ReaderAtSource adapts an io.ReaderAt of a known size, such as an *os.File.
type ReaderAtSource struct {
	r    io.ReaderAt
	size uint64
}

// NewReaderAtSource returns a ByteSource reading from r, which holds size bytes.
func NewReaderAtSource(r io.ReaderAt, size uint64) *ReaderAtSource {
	return &ReaderAtSource{r: r, size: size}
}

// Read implements ByteSource.
func (s *ReaderAtSource) Read(offset uint64, length uint32) ([]byte, error) {
	if err := (bytes2.Range{Offset: offset, Length: uint64(length)}).CheckBounds(s.size); err != nil {
		return nil, err
	}
	b := make([]byte, length)
	n, err := s.r.ReadAt(b, int64(offset))
	if n == len(b) {
		return b, nil
	}
	if err == nil || err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return nil, fmt.Errorf("could not read 0x%x bytes at 0x%x: %w", length, offset, err)
}

// Len returns the size of the underlying data.
func (s *ReaderAtSource) Len() uint64 {
	return s.size
}
