// Copyright 2023 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package psp

import (
	"bytes"
	"testing"

	"github.com/linuxboot/psploader/pkg/compression"
	"github.com/stretchr/testify/require"
)

func TestExtractPayload(t *testing.T) {
	body := bytes.Repeat([]byte{0xe1, 0x2f, 0xff, 0x1e}, 64)

	t.Run("plain", func(t *testing.T) {
		h := &Header{Magic: MagicGeneric, EntryType: EntryTypeBootLoader}
		image := append(h.Bytes(), body...)

		got, err := ExtractPayload(BytesSource(image), h, uint64(len(image)))
		require.NoError(t, err)
		require.Equal(t, body, got)
	})

	t.Run("compressed", func(t *testing.T) {
		compressed, err := (&compression.ZLIB{}).Encode(body)
		require.NoError(t, err)

		h := &Header{
			Magic:            MagicGeneric,
			EntryType:        EntryTypeABL0,
			IsCompressed:     1,
			SizeZlib:         uint32(len(compressed)),
			SizeUncompressed: uint32(len(body)),
		}
		// signature and padding follow the zlib stream
		image := append(h.Bytes(), compressed...)
		image = append(image, make([]byte, 0x200)...)

		got, err := ExtractPayload(BytesSource(image), h, uint64(len(image)))
		require.NoError(t, err)
		require.Equal(t, body, got)
	})

	t.Run("compressed_size_beyond_file", func(t *testing.T) {
		h := &Header{IsCompressed: 1, SizeZlib: 0x1000}
		image := append(h.Bytes(), body...)
		_, err := ExtractPayload(BytesSource(image), h, uint64(len(image)))
		require.Error(t, err)
	})

	t.Run("encrypted", func(t *testing.T) {
		h := &Header{IsEncrypted: 1}
		image := append(h.Bytes(), body...)
		_, err := ExtractPayload(BytesSource(image), h, uint64(len(image)))
		require.ErrorAs(t, err, &ErrEncrypted{})
	})

	t.Run("truncated", func(t *testing.T) {
		_, err := ExtractPayload(BytesSource(nil), &Header{}, 0x10)
		var errTruncated *ErrTruncatedInput
		require.ErrorAs(t, err, &errTruncated)
	})
}
