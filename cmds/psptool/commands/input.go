// Copyright 2023 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package commands

import (
	"fmt"
	"os"
	"strconv"

	"github.com/linuxboot/psploader/pkg/amd/layout"
	"github.com/linuxboot/psploader/pkg/amd/psp"
	"github.com/linuxboot/psploader/pkg/amd/view"
	"github.com/linuxboot/psploader/pkg/compression"
	"github.com/linuxboot/psploader/pkg/disasm"
)

// Address is a flag value accepting decimal, 0x-prefixed hex and 0-prefixed
// octal numbers.
type Address uint64

// UnmarshalFlag implements flags.Unmarshaler.
func (a *Address) UnmarshalFlag(value string) error {
	v, err := strconv.ParseUint(value, 0, 64)
	if err != nil {
		return fmt.Errorf("invalid address '%s': %w", value, err)
	}
	*a = Address(v)
	return nil
}

// Input are the flags selecting the PSP binary a command works on.
type Input struct {
	Path           string   `short:"f" long:"file" description:"path to the PSP binary; .xz, .lzma, .lz4, .zst and .zlib files are decompressed" required:"true"`
	BootloaderBase *Address `long:"bootloader-base" description:"load address of the bootloader (default: 0x0)"`
	ABL0Base       *Address `long:"abl0-base" description:"load address of ABL stage 0 (default: 0x15100)"`
	ABLNBase       *Address `long:"abln-base" description:"load address of the ABL stages above 0 (default: 0x16200)"`
}

// Bases returns the load addresses with the overrides applied.
func (in *Input) Bases() layout.Bases {
	bases := layout.DefaultBases
	if in.BootloaderBase != nil {
		bases.Bootloader = uint64(*in.BootloaderBase)
	}
	if in.ABL0Base != nil {
		bases.ABL0 = uint64(*in.ABL0Base)
	}
	if in.ABLNBase != nil {
		bases.ABLN = uint64(*in.ABLNBase)
	}
	return bases
}

// Read returns the decompressed contents of the input file.
func (in *Input) Read() ([]byte, error) {
	data, err := os.ReadFile(in.Path)
	if err != nil {
		return nil, fmt.Errorf("unable to read the PSP binary '%s': %w", in.Path, err)
	}
	data, err = compression.DecodeFile(in.Path, data)
	if err != nil {
		return nil, fmt.Errorf("unable to decompress '%s': %w", in.Path, err)
	}
	return data, nil
}

// View reads the input and probes it. opts.Bases is set from the flags.
func (in *Input) View(opts view.Options) (*view.View, []byte, error) {
	data, err := in.Read()
	if err != nil {
		return nil, nil, err
	}
	bases := in.Bases()
	opts.Bases = &bases
	v, err := view.Probe(psp.BytesSource(data), uint64(len(data)), opts)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to load '%s': %w", in.Path, err)
	}
	return v, data, nil
}

// Sweep disassembles the code region of a loaded binary.
func Sweep(v *view.View, data []byte) []disasm.Function {
	plan := v.Plan()
	return disasm.Sweep(data[plan.HeaderSize:], plan.CodeOffset, layout.StartSymbol)
}
