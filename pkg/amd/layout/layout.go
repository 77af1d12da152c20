// Copyright 2023 the LinuxBoot Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package layout derives the memory layout of a classified PSP binary:
// where the header and the code are mapped and where execution starts.
package layout

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/linuxboot/psploader/pkg/amd/psp"
	bytes2 "github.com/linuxboot/psploader/pkg/bytes"
)

// Permission is a set of memory access permissions.
type Permission uint8

// Permission bits.
const (
	PermRead Permission = 1 << iota
	PermWrite
	PermExecute
)

func (p Permission) String() string {
	var s strings.Builder
	for _, bit := range []struct {
		perm Permission
		c    byte
	}{{PermRead, 'r'}, {PermWrite, 'w'}, {PermExecute, 'x'}} {
		if p&bit.perm != 0 {
			s.WriteByte(bit.c)
		} else {
			s.WriteByte('-')
		}
	}
	return s.String()
}

// Semantics describes how a host should treat the contents of a region.
type Semantics uint8

const (
	// ReadOnlyData is used for the header
	ReadOnlyData Semantics = iota
	// ReadOnlyCode is used for the code, even though the region is writable
	ReadOnlyCode
)

func (s Semantics) String() string {
	switch s {
	case ReadOnlyData:
		return "read-only data"
	case ReadOnlyCode:
		return "read-only code"
	}
	return fmt.Sprintf("Semantics(%d)", uint8(s))
}

// Region is a range of the address space backed by a range of the file.
type Region struct {
	Name       string
	Start      uint64
	Size       uint64
	FileOffset uint64
	Perm       Permission
	Semantics  Semantics
}

// Memory returns the address range of the region.
func (r Region) Memory() bytes2.Range {
	return bytes2.Range{Offset: r.Start, Length: r.Size}
}

// File returns the file range backing the region.
func (r Region) File() bytes2.Range {
	return bytes2.Range{Offset: r.FileOffset, Length: r.Size}
}

// EntrySymbol is the function execution starts with. It takes no
// parameters and returns nothing.
type EntrySymbol struct {
	Name    string
	Address uint64
}

// Signature returns the C prototype of the entry function.
func (e EntrySymbol) Signature() string {
	return fmt.Sprintf("void %s(void)", e.Name)
}

// StartSymbol is the name of the entry function.
const StartSymbol = "_start"

// Plan is the memory layout of a PSP binary.
//
// HeaderSize is always psp.HeaderSize, CodeOffset is LoadBase+HeaderSize,
// CodeSize is the file length minus HeaderSize and EntryPoint equals
// CodeOffset.
type Plan struct {
	Classification psp.Classification
	LoadBase       uint64
	HeaderOffset   uint64
	HeaderSize     uint64
	CodeOffset     uint64
	CodeSize       uint64
	EntryPoint     uint64
}

// Header returns the header region. It is mapped read-only.
func (p *Plan) Header() Region {
	return Region{
		Name:       "header",
		Start:      p.HeaderOffset,
		Size:       p.HeaderSize,
		FileOffset: 0,
		Perm:       PermRead,
		Semantics:  ReadOnlyData,
	}
}

// Code returns the code region. Data is interleaved with code in PSP
// binaries, so the region is readable, writable and executable.
func (p *Plan) Code() Region {
	return Region{
		Name:       "code",
		Start:      p.CodeOffset,
		Size:       p.CodeSize,
		FileOffset: p.HeaderSize,
		Perm:       PermRead | PermWrite | PermExecute,
		Semantics:  ReadOnlyCode,
	}
}

// Entry returns the entry symbol.
func (p *Plan) Entry() EntrySymbol {
	return EntrySymbol{Name: StartSymbol, Address: p.EntryPoint}
}

// Table returns a table of the regions of the plan.
func (p *Plan) Table() table.Writer {
	t := table.NewWriter()
	t.SetTitle("Layout of %s binary (load base 0x%x)", p.Classification, p.LoadBase)
	t.AppendHeader(table.Row{"Region", "Start", "End", "File Offset", "Size", "Perm", "Semantics"})
	for _, r := range []Region{p.Header(), p.Code()} {
		t.AppendRow(table.Row{
			r.Name,
			fmt.Sprintf("0x%08x", r.Start),
			fmt.Sprintf("0x%08x", r.Start+r.Size),
			fmt.Sprintf("0x%x", r.FileOffset),
			humanize.IBytes(r.Size),
			r.Perm,
			r.Semantics,
		})
	}
	t.AppendRow(table.Row{"entry", fmt.Sprintf("0x%08x", p.EntryPoint), "", "", "", "", p.Entry().Signature()})
	return t
}

func (p *Plan) String() string {
	return p.Table().Render()
}
