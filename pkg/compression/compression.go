// Copyright 2018 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package compression implements reading and writing of compressed files.
//
// PSP images are often distributed compressed (xz, lzma, lz4, zstd) and
// the PSP payload itself may be a zlib stream, so every format is exposed
// through the same Compressor interface.
package compression

import (
	"path/filepath"
	"strings"
)

// Compressor defines a single compression scheme (such as XZ).
type Compressor interface {
	// Name is typically the name of a class.
	Name() string

	// Decode and Encode obey "x == Decode(Encode(x))".
	Decode(encodedData []byte) ([]byte, error)
	Encode(decodedData []byte) ([]byte, error)
}

// ForFile returns a Compressor for the file extension of path, or nil if
// the file is not known to be compressed.
func ForFile(path string) Compressor {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xz":
		return &XZ{}
	case ".lzma":
		return &LZMA{}
	case ".lz4":
		return &LZ4{}
	case ".zst", ".zstd":
		return &Zstd{}
	case ".zlib", ".z":
		return &ZLIB{}
	}
	return nil
}

// DecodeFile decodes data according to the extension of path. Data of an
// unknown extension is returned as is.
func DecodeFile(path string, data []byte) ([]byte, error) {
	c := ForFile(path)
	if c == nil {
		return data, nil
	}
	return c.Decode(data)
}
