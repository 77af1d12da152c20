// Copyright 2023 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package psp

import (
	"fmt"
)

// Kind is the kind of a PSP binary.
type Kind uint8

const (
	// KindUnknown is a binary that matched none of the heuristics
	KindUnknown Kind = iota
	// KindBootloader is the on-chip or recovery PSP bootloader
	KindBootloader
	// KindABL is an AGESA bootloader stage
	KindABL
	// KindTrustedOS is the PSP secure OS
	KindTrustedOS
	// KindBootTimeTrustlets is the boot-time trustlets blob
	KindBootTimeTrustlets
)

func (k Kind) String() string {
	switch k {
	case KindUnknown:
		return "Unknown"
	case KindBootloader:
		return "Bootloader"
	case KindABL:
		return "ABL"
	case KindTrustedOS:
		return "TrustedOS"
	case KindBootTimeTrustlets:
		return "BootTimeTrustlets"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Classification is the result of Classify. Stage is meaningful only for
// KindABL; use ABLNum to read it.
type Classification struct {
	Kind  Kind
	Stage int64
}

// Classifications without a stage number.
var (
	Unknown           = Classification{Kind: KindUnknown}
	Bootloader        = Classification{Kind: KindBootloader}
	TrustedOS         = Classification{Kind: KindTrustedOS}
	BootTimeTrustlets = Classification{Kind: KindBootTimeTrustlets}
)

// ABLStage returns the classification of ABL stage n.
func ABLStage(n int64) Classification {
	return Classification{Kind: KindABL, Stage: n}
}

// ABLNum returns the ABL stage number. ok is false for non-ABL binaries.
//
// The stage is derived from the entry type and is not range-checked: the
// metadata fallback of Classify may yield a stage outside of 0-7, even a
// negative one.
func (c Classification) ABLNum() (stage int64, ok bool) {
	if c.Kind != KindABL {
		return 0, false
	}
	return c.Stage, true
}

// IsABL returns true for any ABL stage.
func (c Classification) IsABL() bool { return c.Kind == KindABL }

// IsBootloader returns true for the on-chip or recovery bootloader.
func (c Classification) IsBootloader() bool { return c.Kind == KindBootloader }

// IsTrustedOS returns true for the PSP secure OS.
func (c Classification) IsTrustedOS() bool { return c.Kind == KindTrustedOS }

// IsBootTimeTrustlets returns true for the boot-time trustlets.
func (c Classification) IsBootTimeTrustlets() bool { return c.Kind == KindBootTimeTrustlets }

// IsUnknown returns true if no heuristic matched.
func (c Classification) IsUnknown() bool { return c.Kind == KindUnknown }

func (c Classification) String() string {
	if c.Kind == KindABL {
		return fmt.Sprintf("ABL%d", c.Stage)
	}
	return c.Kind.String()
}

// Classify maps a header to the kind of the binary. The heuristics are
// applied in order and the first match wins. Classify never fails: headers
// that match nothing are Unknown.
func Classify(h *Header) Classification {
	if h.isABL() {
		return ABLStage(int64(h.EntryType) - int64(EntryTypeABL0))
	}

	switch h.EntryType {
	case EntryTypeBootLoader, EntryTypeRecoveryBootLoader:
		return Bootloader
	case EntryTypeTrustedOS:
		return TrustedOS
	case EntryTypeBootTimeTrustlets:
		return BootTimeTrustlets
	}
	return Unknown
}

func (h *Header) isABL() bool {
	// ABL specific magic values carry the stage in one byte
	if h.Magic&^MagicABLVariantAMask == MagicABLVariantA {
		return true
	}
	if h.Magic&^MagicABLVariantBMask == MagicABLVariantB {
		return true
	}

	if h.Magic != MagicGeneric {
		return false
	}
	if h.EntryType.IsABL() {
		return true
	}
	// non-zero metadata has only been seen on ABL binaries
	return h.Metadata != 0
}
