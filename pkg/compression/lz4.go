// Copyright 2018 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package compression

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pierrec/lz4"
)

// LZ4 implements Compressor for the LZ4 frame format.
type LZ4 struct {
	// Level is the compression level, 0 selects the fastest compression
	Level int
}

// Name returns the type of compression employed.
func (c *LZ4) Name() string {
	return "LZ4"
}

// Decode decodes a byte slice of LZ4 data.
func (c *LZ4) Decode(encodedData []byte) ([]byte, error) {
	var out bytes.Buffer
	if _, err := io.Copy(&out, lz4.NewReader(bytes.NewReader(encodedData))); err != nil {
		return nil, fmt.Errorf("lz4: %w", err)
	}
	return out.Bytes(), nil
}

// Encode encodes a byte slice with LZ4. The frame records the size of the
// decoded data.
func (c *LZ4) Encode(decodedData []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	w.Header.Size = uint64(len(decodedData))
	w.Header.CompressionLevel = c.Level
	if _, err := w.Write(decodedData); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
