// Copyright 2023 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package psp

import (
	"fmt"
	"math"

	"github.com/linuxboot/psploader/pkg/compression"
	"github.com/linuxboot/psploader/pkg/log"
)

// ExtractPayload returns the body of the binary following the header. A
// compressed body (SizeZlib bytes at HeaderSize) is inflated. Encrypted
// bodies are not supported and yield ErrEncrypted.
func ExtractPayload(src ByteSource, h *Header, fileLength uint64) ([]byte, error) {
	if fileLength < HeaderSize {
		return nil, &ErrTruncatedInput{Length: fileLength}
	}
	if h.Encrypted() {
		return nil, ErrEncrypted{}
	}

	size := fileLength - HeaderSize
	if h.Compressed() && h.SizeZlib != 0 {
		size = uint64(h.SizeZlib)
	}
	if size > math.MaxUint32 {
		return nil, fmt.Errorf("payload of 0x%x bytes is too large", size)
	}
	body, err := src.Read(HeaderSize, uint32(size))
	if err != nil {
		return nil, fmt.Errorf("could not read payload: %w", err)
	}
	if !h.Compressed() {
		return body, nil
	}

	payload, err := (&compression.ZLIB{}).Decode(body)
	if err != nil {
		return nil, fmt.Errorf("could not inflate payload: %w", err)
	}
	if h.SizeUncompressed != 0 && uint64(len(payload)) != uint64(h.SizeUncompressed) {
		log.Warnf("inflated payload is 0x%x bytes, header says 0x%x", len(payload), h.SizeUncompressed)
	}
	return payload, nil
}
