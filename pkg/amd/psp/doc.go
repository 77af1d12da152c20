// Copyright 2023 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package psp parses the 256-byte header pre-pended to AMD Secure
// Processor (PSP) firmware binaries and classifies the binary as the
// on-chip bootloader, one of the ABL stages or another firmware kind.
//
// Much of the header is undocumented. The layout and magic variants
// were reverse engineered (see PSPReverse/PSPTool) and may not be
// accurate for every firmware build.
package psp
