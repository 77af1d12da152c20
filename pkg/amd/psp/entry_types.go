// Copyright 2023 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package psp

import (
	"fmt"
)

// EntryType identifies the role of a binary within the PSP directory. The
// header carries the same value as the directory table entry.
type EntryType uint32

const (
	// EntryTypeBootLoader is the on-chip PSP bootloader
	EntryTypeBootLoader EntryType = 0x01
	// EntryTypeTrustedOS is the PSP secure OS
	EntryTypeTrustedOS EntryType = 0x02
	// EntryTypeRecoveryBootLoader is the recovery PSP bootloader
	EntryTypeRecoveryBootLoader EntryType = 0x03
	// EntryTypeBootTimeTrustlets are the trustlets loaded at boot time
	EntryTypeBootTimeTrustlets EntryType = 0x0C
	// EntryTypeABL0 is the first AGESA bootloader stage, stages 1-7 follow it
	EntryTypeABL0 EntryType = 0x30
	// EntryTypeABL7 is the last AGESA bootloader stage
	EntryTypeABL7 EntryType = 0x37
)

// IsABL returns true if the entry type is one of the AGESA bootloader stages.
func (t EntryType) IsABL() bool {
	return t >= EntryTypeABL0 && t <= EntryTypeABL7
}

/*
 * Human-readable names of the entry types encountered in PSP binaries.
 * This is not a complete list.
 */
func (t EntryType) String() string {
	switch t {
	case 0x00:
		return "AMD_PUBLIC_KEYS"
	case EntryTypeBootLoader:
		return "PSP_BOOT_LOADER"
	case EntryTypeTrustedOS:
		return "PSP_SECURE_OS"
	case EntryTypeRecoveryBootLoader:
		return "PSP_RECOVERY_BOOTLOADER"
	case 0x04:
		return "PSP_NON_VOLATILE_DATA"
	case 0x08:
		return "SMU_OFF_CHIP_FIRMWARE"
	case 0x09:
		return "AMD_SECURE_DEBUG_KEY"
	case 0x0A:
		return "ABL_PUBLIC_KEY"
	case 0x0B:
		return "PSP_SOFT_FUSE_CHAIN"
	case EntryTypeBootTimeTrustlets:
		return "PSP_BOOT_LOADED_TRUSTLETS"
	case 0x0D:
		return "PSP_TRUSTLET_PUBLIC_KEY"
	case 0x12:
		return "SMU_OFF_CHIP_FIRMWARE"
	case 0x13:
		return "UNLOCK_DEBUG_IMAGE"
	case 0x24:
		return "SEC_POLICY_BINARY"
	case 0x25:
		return "MP2_FIRMWARE"
	case 0x28:
		return "SYSTEM_DRIVER_IN_SPI"
	case 0x2D:
		return "EXTERNAL_PSP_BOOTLOADER"
	case 0x38:
		return "SEV_DATA"
	case 0x39:
		return "SEV_CODE"
	case 0x45:
		return "SEC_POLICY_BINARY_TOS"
	case 0x46:
		return "EXTERNAL_PSP_BOOTLOADER"
	case 0x47:
		return "DRTM_TA"
	}
	if t.IsABL() {
		return fmt.Sprintf("AGESA_BINARY_%d", t-EntryTypeABL0)
	}
	return "UNKNOWN"
}
