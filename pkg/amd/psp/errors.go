// Copyright 2023 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package psp

import (
	"fmt"
)

// ErrTruncatedInput is returned when a file is too short to contain a PSP header.
type ErrTruncatedInput struct {
	Length uint64
}

// Error implements error.
func (err *ErrTruncatedInput) Error() string {
	return fmt.Sprintf("input is truncated: %d bytes, a PSP header takes 0x%x", err.Length, HeaderSize)
}

// ErrEncrypted is returned when the payload of an encrypted binary is requested.
type ErrEncrypted struct{}

// Error implements error.
func (ErrEncrypted) Error() string {
	return "payload is encrypted"
}
