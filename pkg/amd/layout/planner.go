// Copyright 2023 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package layout

import (
	"fmt"

	"github.com/linuxboot/psploader/pkg/amd/psp"
)

// Bases holds the SRAM addresses the binaries are loaded at.
//
// The addresses were found by reversing various firmwares. Builds may
// differ in where things are loaded, so these are best-effort values and
// can be overridden.
type Bases struct {
	Bootloader uint64
	ABL0       uint64
	ABLN       uint64
}

// DefaultBases are the load addresses observed on most firmwares.
var DefaultBases = Bases{
	Bootloader: 0,
	ABL0:       0x15100,
	ABLN:       0x16200,
}

// ErrUnsupportedClassification is returned when no layout is known for a
// kind of binary.
type ErrUnsupportedClassification struct {
	Classification psp.Classification
}

// Error implements error.
func (err *ErrUnsupportedClassification) Error() string {
	return fmt.Sprintf("unsupported classification: no layout is known for %s binaries", err.Classification)
}

// ErrTruncatedInput is returned when the file cannot hold the header.
type ErrTruncatedInput struct {
	FileLength uint64
}

// Error implements error.
func (err *ErrTruncatedInput) Error() string {
	return fmt.Sprintf("file of %d bytes cannot hold a 0x%x byte PSP header", err.FileLength, psp.HeaderSize)
}

// LoadBase returns the address a binary of the given classification is
// loaded at. Only the bootloader and ABL stages with a non-negative stage
// number are supported.
func (b Bases) LoadBase(c psp.Classification) (uint64, error) {
	switch c.Kind {
	case psp.KindBootloader:
		return b.Bootloader, nil
	case psp.KindABL:
		switch {
		case c.Stage == 0:
			return b.ABL0, nil
		case c.Stage > 0:
			return b.ABLN, nil
		}
	}
	return 0, &ErrUnsupportedClassification{Classification: c}
}

// Plan computes the layout of a binary of fileLength bytes.
func (b Bases) Plan(c psp.Classification, fileLength uint64) (*Plan, error) {
	loadBase, err := b.LoadBase(c)
	if err != nil {
		return nil, err
	}
	if fileLength < psp.HeaderSize {
		return nil, &ErrTruncatedInput{FileLength: fileLength}
	}

	return &Plan{
		Classification: c,
		LoadBase:       loadBase,
		HeaderOffset:   loadBase,
		HeaderSize:     psp.HeaderSize,
		CodeOffset:     loadBase + psp.HeaderSize,
		CodeSize:       fileLength - psp.HeaderSize,
		EntryPoint:     loadBase + psp.HeaderSize,
	}, nil
}

// NewPlan computes the layout with DefaultBases.
func NewPlan(c psp.Classification, fileLength uint64) (*Plan, error) {
	return DefaultBases.Plan(c, fileLength)
}
