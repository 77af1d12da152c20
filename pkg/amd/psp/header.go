// Copyright 2023 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package psp

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math/bits"

	bytes2 "github.com/linuxboot/psploader/pkg/bytes"
	"github.com/xaionaro-go/bytesextra"
)

// HeaderSize is the size of the header pre-pended to PSP binaries. The
// header always occupies bytes [0, HeaderSize) of the file.
const HeaderSize = 0x100

// Magic values found at offset 0x10, after Swap32.
const (
	// MagicGeneric is the "$PS1" cookie shared by most PSP binaries
	MagicGeneric = 0x24505331

	// MagicABLVariantA ("[N]BAW") is seen on ABL versions <= 19.7.8.30.
	// The top byte holds the stage number and is masked out.
	MagicABLVariantA     = 0x00424157
	MagicABLVariantAMask = 0xFF000000

	// MagicABLVariantB ("AW[N]B") is seen on ABL versions 19.8.12.0 to 20.10.19.0.
	// The second byte holds the stage number and is masked out.
	MagicABLVariantB     = 0x41570042
	MagicABLVariantBMask = 0x0000FF00
)

// Swap32 reverses the byte order of a 32-bit value.
func Swap32(v uint32) uint32 {
	return bits.ReverseBytes32(v)
}

// Header models the header pre-pended to PSP binaries.
//
// Magic and Metadata are stored byte-swapped (see Swap32) so that they can
// be compared with the documented constants. All other fields are stored
// as read from the little-endian file.
type Header struct {
	Unknown00          [16]byte   `psp:"_unk_00h"`
	Magic              uint32     `psp:"magic"`
	SizeSigned         uint32     `psp:"size_signed"`
	IsEncrypted        uint32     `psp:"is_encrypted"`
	Unknown1C          [4]byte    `psp:"_unk_1Ch"`
	IV                 [16]byte   `psp:"aes_cbc_iv"`
	IsSigned           uint32     `psp:"is_signed"`
	Unknown34          [4]byte    `psp:"_unk_34h"`
	SignatureFootprint [16]byte   `psp:"signature_footprint"`
	IsCompressed       uint32     `psp:"is_compressed"`
	Unknown4C          [4]byte    `psp:"unk_4Ch"`
	SizeUncompressed   uint32     `psp:"size_uncompressed"`
	SizeZlib           uint32     `psp:"size_zlib"`
	Unknown58          [8]byte    `psp:"unk_58h"`
	Version            uint32     `psp:"version"`
	Unknown64          [4]byte    `psp:"unk_64h"`
	LoadAddr           uint32     `psp:"load_addr"`
	ROMSize            uint32     `psp:"rom_size"`
	Unknown70          [12]byte   `psp:"unk_70h"`
	EntryType          EntryType  `psp:"entry_type"`
	WrappedKey         [16]byte   `psp:"wrapped_ikek"`
	Unknown90          [16]byte   `psp:"unk_90h"`
	Metadata           uint32     `psp:"metadata"`
	UnknownA4          [0x5C]byte `psp:"unk_A4h"`
}

// ParseHeader reads the header of a binary of fileLength bytes from src.
// No validation is performed beyond the length check.
func ParseHeader(src ByteSource, fileLength uint64) (*Header, error) {
	if fileLength < HeaderSize {
		return nil, &ErrTruncatedInput{Length: fileLength}
	}
	b, err := src.Read(0, HeaderSize)
	if err != nil {
		return nil, fmt.Errorf("could not read PSP header: %w", err)
	}
	return ParseHeaderBytes(b)
}

// ParseHeaderBytes parses the header from the beginning of b.
func ParseHeaderBytes(b []byte) (*Header, error) {
	if len(b) < HeaderSize {
		return nil, &ErrTruncatedInput{Length: uint64(len(b))}
	}

	var h Header
	if err := binary.Read(bytesextra.NewReadWriteSeeker(b[:HeaderSize]), binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("could not parse PSP header: %w", err)
	}
	h.Magic = Swap32(h.Magic)
	h.Metadata = Swap32(h.Metadata)
	return &h, nil
}

// Bytes compiles the header back into its on-disk representation.
func (h *Header) Bytes() []byte {
	raw := *h
	raw.Magic = Swap32(raw.Magic)
	raw.Metadata = Swap32(raw.Metadata)

	var buf bytes.Buffer
	buf.Grow(HeaderSize)
	if err := binary.Write(&buf, binary.LittleEndian, &raw); err != nil {
		// Header consists of fixed-size fields only
		panic(err)
	}
	return buf.Bytes()
}

// MagicString renders the magic as it appears on disk, replacing
// non-printable characters with '.'.
func (h *Header) MagicString() string {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, h.Magic)
	for idx, c := range b {
		if c < 0x20 || c > 0x7e {
			b[idx] = '.'
		}
	}
	return string(b)
}

// VersionString returns the version in the dotted form used by AMD, e.g. "19.7.8.30".
func (h *Header) VersionString() string {
	return fmt.Sprintf("%x.%x.%x.%x", byte(h.Version>>24), byte(h.Version>>16), byte(h.Version>>8), byte(h.Version))
}

// HasIV returns true if the AES-CBC IV is set.
func (h *Header) HasIV() bool {
	return !bytes2.IsZeroFilled(h.IV[:])
}

// HasWrappedKey returns true if the wrapped iKEK is set.
func (h *Header) HasWrappedKey() bool {
	return !bytes2.IsZeroFilled(h.WrappedKey[:])
}

// Encrypted returns true if the payload is encrypted.
func (h *Header) Encrypted() bool {
	return h.IsEncrypted != 0
}

// Signed returns true if the binary carries a signature.
func (h *Header) Signed() bool {
	return h.IsSigned != 0
}

// Compressed returns true if the payload is a zlib stream.
func (h *Header) Compressed() bool {
	return h.IsCompressed != 0
}
