// Copyright 2018 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compression

import (
	"bytes"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

var tests = []struct {
	name       string
	compressor Compressor
}{
	{name: "XZ", compressor: &XZ{}},
	{name: "LZMA", compressor: &LZMA{}},
	{name: "LZ4", compressor: &LZ4{}},
	{name: "ZSTD", compressor: &Zstd{}},
	{name: "ZLIB", compressor: &ZLIB{}},
}

func testData() []byte {
	r := rand.New(rand.NewSource(1))
	b := make([]byte, 64*1024)
	r.Read(b)
	// a compressible tail, like padding in firmware images
	return append(b, bytes.Repeat([]byte{0xff}, 16*1024)...)
}

func TestEncodeDecode(t *testing.T) {
	want := testData()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.name, tt.compressor.Name())

			encoded, err := tt.compressor.Encode(want)
			require.NoError(t, err)
			got, err := tt.compressor.Decode(encoded)
			require.NoError(t, err)
			require.Equal(t, want, got)
		})
	}
}

func TestDecodeGarbage(t *testing.T) {
	for _, c := range []Compressor{&XZ{}, &Zstd{}, &ZLIB{}} {
		t.Run(c.Name(), func(t *testing.T) {
			_, err := c.Decode([]byte("definitely not compressed"))
			require.Error(t, err)
		})
	}
}

func TestForFile(t *testing.T) {
	for path, want := range map[string]string{
		"abl0.bin.xz":  "XZ",
		"bios.lzma":    "LZMA",
		"ABL1.BIN.LZ4": "LZ4",
		"boot.zst":     "ZSTD",
		"body.zlib":    "ZLIB",
	} {
		c := ForFile(path)
		require.NotNil(t, c, path)
		require.Equal(t, want, c.Name(), path)
	}
	require.Nil(t, ForFile("abl0.bin"))
}

func TestDecodeFile(t *testing.T) {
	raw := []byte("PSP image")
	got, err := DecodeFile("abl0.bin", raw)
	require.NoError(t, err)
	require.Equal(t, raw, got)

	enc, err := (&XZ{}).Encode(raw)
	require.NoError(t, err)
	got, err = DecodeFile("abl0.bin.xz", enc)
	require.NoError(t, err)
	require.Equal(t, raw, got)
}
